// Package pcm reads raw interleaved little-endian signed PCM into normalized mono samples.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tactus/internal/types"
)

// ErrInvalidFormat is returned for unsupported bit depths or a zero channel count.
var ErrInvalidFormat = errors.New("invalid PCM format")

// ReadMono reads reader to EOF and returns the channel average of every frame, scaled to [-1, 1).
// A trailing partial frame is ignored.
func ReadMono(reader io.Reader, format types.PCMFormat) ([]float64, error) {
	maxVal, err := normalization(format.BitDepth)
	if err != nil {
		return nil, err
	}

	if format.Channels == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidFormat)
	}

	bytesPerSample := int(format.BitDepth / 8)         //nolint:gosec // bit depth and channel count are small constants
	numChannels := int(format.Channels)                //nolint:gosec // channel count is small
	frameSize := bytesPerSample * numChannels
	buf := make([]byte, frameSize*4096)
	scale := maxVal * float64(numChannels)

	samples := make([]float64, 0, 1<<16)

	var pending int

	for {
		n, readErr := reader.Read(buf[pending:])
		n += pending

		completeFrames := (n / frameSize) * frameSize
		data := buf[:completeFrames]

		for i := 0; i < len(data); i += frameSize {
			var sum float64

			for ch := range numChannels {
				sum += decodeSample(data[i+ch*bytesPerSample:], format.BitDepth)
			}

			samples = append(samples, sum/scale)
		}

		// Keep a split frame for the next read.
		pending = copy(buf, buf[completeFrames:n])

		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, readErr)
		}
	}

	return samples, nil
}

func normalization(depth types.BitDepth) (float64, error) {
	switch depth {
	case types.Depth16:
		return MaxValue16, nil
	case types.Depth24:
		return MaxValue24, nil
	case types.Depth32:
		return MaxValue32, nil
	default:
		return 0, fmt.Errorf("%w: %d bit", ErrInvalidFormat, depth)
	}
}

func decodeSample(data []byte, depth types.BitDepth) float64 {
	switch depth {
	case types.Depth16:
		return float64(int16(binary.LittleEndian.Uint16(data))) //nolint:gosec // two's complement conversion for signed PCM samples
	case types.Depth24:
		raw := int32(data[0]) | int32(data[1])<<8 | int32(data[2])<<16
		if raw&0x800000 != 0 {
			raw |= ^0xFFFFFF
		}

		return float64(raw)
	case types.Depth32:
		return float64(int32(binary.LittleEndian.Uint32(data))) //nolint:gosec // two's complement conversion for signed PCM samples
	default:
		return 0
	}
}
