package decoder

import (
	"bytes"
	"context"
	"fmt"

	"github.com/farcloser/tactus/internal/integration/ffmpeg"
	"github.com/farcloser/tactus/internal/pcm"
	"github.com/farcloser/tactus/internal/types"
)

// FFmpeg decodes through an ffmpeg binary, which handles every format ffmpeg knows.
// An empty Path looks ffmpeg up through the environment, the executable directory and PATH.
type FFmpeg struct {
	Path string
}

// Decode implements Decoder.
func (f FFmpeg) Decode(ctx context.Context, path string, sampleRate int, start, duration float64) (*Audio, error) {
	ffmpegPath, err := ffmpeg.Locate(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	format := &types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   types.Depth32,
		Channels:   1,
	}

	var raw bytes.Buffer

	err = ffmpeg.Decode(ctx, ffmpegPath, path, &raw, format, ffmpeg.Range{Start: start, Duration: duration})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	samples, err := pcm.ReadMono(&raw, *format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return &Audio{Samples: samples, SampleRate: sampleRate}, nil
}
