// Package decoder turns audio files into mono sample buffers at a requested rate.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrDecode wraps every decoding failure.
	ErrDecode = errors.New("decoding failed")
	// ErrUnsupportedFormat is returned when no decoder handles the file type.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrUnknownDecoder is returned by New for an unknown decoder name.
	ErrUnknownDecoder = errors.New("unknown decoder")
)

// Decoder names accepted by New.
const (
	NameAuto   = "auto"
	NameFFmpeg = "ffmpeg"
	NameNative = "native"
)

// Audio is a decoded mono signal.
type Audio struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the signal length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}

	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Decoder decodes duration seconds of path, starting at start, to mono at sampleRate.
// A zero duration reads to the end of the file.
type Decoder interface {
	Decode(ctx context.Context, path string, sampleRate int, start, duration float64) (*Audio, error)
}

// Fallback tries Primary, then Secondary when Primary fails.
type Fallback struct {
	Primary   Decoder
	Secondary Decoder
}

// Decode implements Decoder.
func (f Fallback) Decode(ctx context.Context, path string, sampleRate int, start, duration float64) (*Audio, error) {
	decoded, err := f.Primary.Decode(ctx, path, sampleRate, start, duration)
	if err == nil {
		return decoded, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, err
	}

	slog.Debug("decoder.Fallback", "file path", path, "error", err, "stage", "fallback")

	decoded, fallbackErr := f.Secondary.Decode(ctx, path, sampleRate, start, duration)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w (fallback: %w)", err, fallbackErr)
	}

	return decoded, nil
}

// New returns the decoder for name: ffmpeg, native, or auto (ffmpeg falling back to native).
// ffmpegPath overrides the ffmpeg lookup when set.
func New(name, ffmpegPath string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameAuto, "":
		return Fallback{Primary: FFmpeg{Path: ffmpegPath}, Secondary: Native{}}, nil
	case NameFFmpeg:
		return FFmpeg{Path: ffmpegPath}, nil
	case NameNative:
		return Native{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDecoder, name)
	}
}
