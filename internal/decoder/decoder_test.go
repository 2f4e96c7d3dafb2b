package decoder_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tactus/internal/audiotest"
	"github.com/farcloser/tactus/internal/decoder"
)

func TestNativeWAV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := audiotest.WriteWAV(path, audiotest.Sine(441, 0.5, 1, 44100), 44100, 16, 2); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	decoded, err := decoder.Native{}.Decode(context.Background(), path, 22050, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decoded.SampleRate != 22050 || len(decoded.Samples) != 22050 {
		t.Fatalf("expected one second at 22050 Hz, got %d samples at %d", len(decoded.Samples), decoded.SampleRate)
	}

	peak := 0.0
	for _, sample := range decoded.Samples {
		peak = math.Max(peak, math.Abs(sample))
	}

	if math.Abs(peak-0.5) > 0.01 {
		t.Fatalf("expected the amplitude to survive downmix and resampling, got %v", peak)
	}
}

func TestNativeRange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := audiotest.WriteWAV(path, audiotest.Sine(220, 0.5, 2, 22050), 22050, 24, 1); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	testCases := []struct {
		description string
		start       float64
		duration    float64
		expected    int
	}{
		{description: "window", start: 0.5, duration: 1, expected: 22050},
		{description: "to the end", start: 1.5, duration: 0, expected: 11025},
		{description: "past the end", start: 1.5, duration: 10, expected: 11025},
		{description: "start beyond the file", start: 5, duration: 1, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			decoded, err := decoder.Native{}.Decode(context.Background(), path, 22050, tc.start, tc.duration)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(decoded.Samples) != tc.expected {
				t.Fatalf("expected %d samples, got %d", tc.expected, len(decoded.Samples))
			}
		})
	}
}

func TestNativeAIFF(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tone.aiff")
	if err := audiotest.WriteAIFF(path, audiotest.Sine(440, 0.25, 0.5, 22050), 22050, 16, 1); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	decoded, err := decoder.Native{}.Decode(context.Background(), path, 22050, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(decoded.Samples) != 11025 {
		t.Fatalf("expected 11025 samples, got %d", len(decoded.Samples))
	}

	if math.Abs(decoded.Duration()-0.5) > 1e-9 {
		t.Fatalf("expected 0.5s, got %v", decoded.Duration())
	}
}

func TestNativeErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	flac := filepath.Join(dir, "song.flac")
	if err := os.WriteFile(flac, []byte("fLaC"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	garbage := filepath.Join(dir, "garbage.wav")
	if err := os.WriteFile(garbage, []byte("definitely not a riff file"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err := decoder.Native{}.Decode(context.Background(), flac, 22050, 0, 0)
	if !errors.Is(err, decoder.ErrUnsupportedFormat) || !errors.Is(err, decoder.ErrDecode) {
		t.Fatalf("expected an unsupported format decode error, got %v", err)
	}

	if _, err = (decoder.Native{}).Decode(context.Background(), garbage, 22050, 0, 0); !errors.Is(err, decoder.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}

	_, err = decoder.Native{}.Decode(context.Background(), filepath.Join(dir, "missing.wav"), 22050, 0, 0)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}

func TestFFmpegDecoder(t *testing.T) {
	t.Parallel()

	// Two s32le samples: 0.5 and -0.5.
	script := filepath.Join(t.TempDir(), "ffmpeg")
	content := "#!/bin/sh\nprintf '\\000\\000\\000\\100\\000\\000\\000\\300'\n"

	if err := os.WriteFile(script, []byte(content), 0o700); err != nil { //nolint:gosec // test fixture
		t.Fatalf("writing fake ffmpeg: %v", err)
	}

	decoded, err := decoder.FFmpeg{Path: script}.Decode(context.Background(), "any.m4a", 22050, 0, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(decoded.Samples) != 2 || decoded.Samples[0] != 0.5 || decoded.Samples[1] != -0.5 {
		t.Fatalf("unexpected samples %v", decoded.Samples)
	}
}

func TestFFmpegDecoderMissingBinary(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "ffmpeg")

	_, err := decoder.FFmpeg{Path: missing}.Decode(context.Background(), "any.mp3", 22050, 0, 0)
	if !errors.Is(err, decoder.ErrDecode) || !errors.Is(err, fault.ErrMissingRequirements) {
		t.Fatalf("expected a missing requirements decode error, got %v", err)
	}
}

type stubDecoder struct {
	audio *decoder.Audio
	err   error
	calls *int
}

func (s stubDecoder) Decode(context.Context, string, int, float64, float64) (*decoder.Audio, error) {
	*s.calls++

	return s.audio, s.err
}

func TestFallback(t *testing.T) {
	t.Parallel()

	expected := &decoder.Audio{Samples: []float64{1}, SampleRate: 1}
	failure := errors.New("primary failed")

	var primaryCalls, secondaryCalls int

	chain := decoder.Fallback{
		Primary:   stubDecoder{err: failure, calls: &primaryCalls},
		Secondary: stubDecoder{audio: expected, calls: &secondaryCalls},
	}

	got, err := chain.Decode(context.Background(), "x.wav", 1, 0, 0)
	if err != nil || got != expected {
		t.Fatalf("expected the secondary result, got %v (%v)", got, err)
	}

	if primaryCalls != 1 || secondaryCalls != 1 {
		t.Fatalf("expected one call each, got %d and %d", primaryCalls, secondaryCalls)
	}

	secondaryFailure := errors.New("secondary failed")
	chain.Secondary = stubDecoder{err: secondaryFailure, calls: &secondaryCalls}

	_, err = chain.Decode(context.Background(), "x.wav", 1, 0, 0)
	if !errors.Is(err, failure) || !errors.Is(err, secondaryFailure) {
		t.Fatalf("expected both failures, got %v", err)
	}
}

func TestFallbackSkippedWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	var primaryCalls, secondaryCalls int

	chain := decoder.Fallback{
		Primary:   stubDecoder{audio: &decoder.Audio{}, calls: &primaryCalls},
		Secondary: stubDecoder{audio: &decoder.Audio{}, calls: &secondaryCalls},
	}

	if _, err := chain.Decode(context.Background(), "x.wav", 1, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if secondaryCalls != 0 {
		t.Fatal("expected the secondary decoder not to run")
	}
}

func TestFallbackStopsOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var primaryCalls, secondaryCalls int

	chain := decoder.Fallback{
		Primary:   stubDecoder{err: context.Canceled, calls: &primaryCalls},
		Secondary: stubDecoder{audio: &decoder.Audio{}, calls: &secondaryCalls},
	}

	if _, err := chain.Decode(ctx, "x.wav", 1, 0, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}

	if secondaryCalls != 0 {
		t.Fatal("expected the secondary decoder not to run after cancellation")
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"auto", "", "ffmpeg", "Native"} {
		if _, err := decoder.New(name, ""); err != nil {
			t.Fatalf("%q: unexpected error: %v", name, err)
		}
	}

	if _, err := decoder.New("gstreamer", ""); !errors.Is(err, decoder.ErrUnknownDecoder) {
		t.Fatalf("expected ErrUnknownDecoder, got %v", err)
	}
}

func TestResample(t *testing.T) {
	t.Parallel()

	constant := make([]float64, 1000)
	for i := range constant {
		constant[i] = 0.3
	}

	down := decoder.Resample(constant, 44100, 22050)
	if len(down) != 500 {
		t.Fatalf("expected 500 samples, got %d", len(down))
	}

	for i, v := range down {
		if math.Abs(v-0.3) > 1e-12 {
			t.Fatalf("sample %d: expected a constant signal, got %v", i, v)
		}
	}

	ramp := []float64{0, 1, 2, 3, 4, 5, 6, 7}

	up := decoder.Resample(ramp, 1, 2)
	if len(up) != 16 || math.Abs(up[5]-2.5) > 1e-12 {
		t.Fatalf("expected interior interpolation to be linear on a ramp, got %v", up)
	}

	same := decoder.Resample(ramp, 8000, 8000)
	if len(same) != len(ramp) {
		t.Fatal("expected the signal untouched at equal rates")
	}
}
