package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tactus/internal/integration/binary"
	"github.com/farcloser/tactus/internal/types"
)

// Range selects part of the input, in seconds. A zero Duration reads to the end.
type Range struct {
	Start    float64
	Duration float64
}

// Locate returns the ffmpeg binary to use: explicit when set, otherwise the first found through FFMPEG_PATH,
// FFMPEG_BINARY, the directories next to the executable and the system PATH.
func Locate(explicit string) (string, error) {
	if explicit != "" {
		if path, found := binary.Available(explicit); found {
			return path, nil
		}

		return "", fmt.Errorf("%w: %s", fault.ErrMissingRequirements, explicit)
	}

	path, found := binary.Locate(name, EnvPath, EnvBinary)
	if !found {
		return "", fmt.Errorf("%w: %s", fault.ErrMissingRequirements, name)
	}

	return path, nil
}

// Decode converts a range of an audio file to raw little-endian PCM in the requested format, written to output.
func Decode(
	ctx context.Context,
	ffmpegPath string,
	filePath string,
	output io.Writer,
	format *types.PCMFormat,
	window Range,
) error {
	slog.Debug("ffmpeg.Decode", "file path", filePath, "stage", "start")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"-v", "error", "-nostdin"}
	if window.Start > 0 {
		args = append(args, "-ss", seconds(window.Start))
	}

	args = append(args, "-i", filePath)
	if window.Duration > 0 {
		args = append(args, "-t", seconds(window.Duration))
	}

	args = append(args,
		"-vn",
		"-ac", strconv.FormatUint(uint64(format.Channels), 10),
		"-ar", strconv.Itoa(format.SampleRate),
		"-f", bitDepthToSpec(format.BitDepth),
		"-acodec", bitDepthToCodec(format.BitDepth),
		"-",
	)

	cmd := exec.CommandContext(ctx, ffmpegPath, args...) //nolint:gosec // filePath is intentionally user-provided input

	cmd.Stdout = output

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.Decode", "file path", filePath, "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.Decode", "file path", filePath, "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	slog.Debug("ffmpeg.Decode", "file path", filePath, "stage", "done")

	return nil
}
