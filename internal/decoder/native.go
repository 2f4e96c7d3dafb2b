package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

var errInvalidNativeRate = errors.New("container reports an invalid sample rate")

// Native decodes WAV, AIFF, MP3 and Ogg Vorbis files without external tools.
type Native struct{}

// Decode implements Decoder.
func (Native) Decode(ctx context.Context, path string, sampleRate int, start, duration float64) (*Audio, error) {
	slog.Debug("decoder.Native", "file path", path, "stage", "start")

	var decode func(io.ReadSeeker) ([]float64, int, error)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		decode = decodeWAV
	case ".aif", ".aiff", ".aifc":
		decode = decodeAIFF
	case ".mp3":
		decode = decodeMP3
	case ".ogg", ".oga":
		decode = decodeOgg
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrDecode, ErrUnsupportedFormat, ext)
	}

	file, err := os.Open(path) //nolint:gosec // decoding user-provided audio files is the point
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer file.Close()

	samples, nativeRate, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	slog.Debug("decoder.Native", "file path", path, "native rate", nativeRate, "stage", "resample")

	decoded, err := toAudio(samples, nativeRate, sampleRate, start, duration)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	return decoded, nil
}

// toAudio slices the decoding window and resamples it to sampleRate, or keeps the native rate when sampleRate is
// not positive.
func toAudio(samples []float64, nativeRate, sampleRate int, start, duration float64) (*Audio, error) {
	if nativeRate <= 0 {
		return nil, fmt.Errorf("%w: %d Hz", errInvalidNativeRate, nativeRate)
	}

	if sampleRate <= 0 {
		sampleRate = nativeRate
	}

	samples = slice(samples, nativeRate, start, duration)

	return &Audio{Samples: Resample(samples, nativeRate, sampleRate), SampleRate: sampleRate}, nil
}

func decodeWAV(reader io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(reader)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: not a valid WAV file", ErrUnsupportedFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}

	depth := int(dec.BitDepth)

	// 8 bit WAV is unsigned.
	var bias int
	if depth == 8 {
		bias = 128
	}

	return intBufferToMono(buf, depth, bias), buf.Format.SampleRate, nil
}

func decodeAIFF(reader io.ReadSeeker) ([]float64, int, error) {
	dec := aiff.NewDecoder(reader)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: not a valid AIFF file", ErrUnsupportedFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}

	return intBufferToMono(buf, int(dec.BitDepth), 0), buf.Format.SampleRate, nil
}

func decodeMP3(reader io.ReadSeeker) ([]float64, int, error) {
	dec, err := gomp3.NewDecoder(reader)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}

	// go-mp3 always yields 16 bit little-endian stereo.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}

	samples := make([]float64, len(raw)/4)
	for i := range samples {
		left := int16(uint16(raw[4*i]) | uint16(raw[4*i+1])<<8)   //nolint:gosec // two's complement conversion for signed PCM samples
		right := int16(uint16(raw[4*i+2]) | uint16(raw[4*i+3])<<8) //nolint:gosec // two's complement conversion for signed PCM samples
		samples[i] = (float64(left) + float64(right)) / (2 * 32768)
	}

	return samples, dec.SampleRate(), nil
}

func decodeOgg(reader io.ReadSeeker) ([]float64, int, error) {
	data, format, err := oggvorbis.ReadAll(reader)
	if err != nil {
		return nil, 0, err //nolint:wrapcheck
	}

	channels := max(format.Channels, 1)
	samples := make([]float64, len(data)/channels)

	for i := range samples {
		var sum float64
		for ch := range channels {
			sum += float64(data[i*channels+ch])
		}

		samples[i] = sum / float64(channels)
	}

	return samples, format.SampleRate, nil
}

// intBufferToMono averages the channels of an integer PCM buffer into [-1, 1) samples.
func intBufferToMono(buf *audio.IntBuffer, bitDepth, bias int) []float64 {
	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}

	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}

	scale := math.Ldexp(1, bitDepth-1) * float64(channels)
	samples := make([]float64, len(buf.Data)/channels)

	for i := range samples {
		var sum int
		for ch := range channels {
			sum += buf.Data[i*channels+ch] - bias
		}

		samples[i] = float64(sum) / scale
	}

	return samples
}

// slice keeps duration seconds from start. A zero duration keeps everything after start.
func slice(samples []float64, sampleRate int, start, duration float64) []float64 {
	from := 0
	if start > 0 {
		from = min(int(math.Round(start*float64(sampleRate))), len(samples))
	}

	to := len(samples)
	if duration > 0 {
		to = min(from+int(math.Round(duration*float64(sampleRate))), len(samples))
	}

	return samples[from:to]
}
