//nolint:tagliatelle
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tactus/internal/integration/binary"
)

// ErrNoAudioStream is returned by Info when the file carries no audio.
var ErrNoAudioStream = errors.New("no audio stream")

// Result contains the marshalled output of ffprobe.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream holds the stream fields of interest for tempo reports.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`            // flac
	CodecType  string `json:"codec_type"`            // audio
	SampleRate string `json:"sample_rate,omitempty"` // 44100
	Channels   int    `json:"channels,omitempty"`    // 2
	Duration   string `json:"duration,omitempty"`    // 310.666667
	BitRate    string `json:"bit_rate,omitempty"`    // 956821
}

// Format holds the container fields of interest.
type Format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`        // Short container name(s), e.g. "flac", "mov,mp4,m4a,3gp,3g2,mj2"
	Duration   string `json:"duration,omitempty"` // Total duration in seconds as float string, e.g. "310.666667"
	BitRate    string `json:"bit_rate,omitempty"` // Overall bitrate in bits/sec (all streams combined)
}

// Info is the parsed summary of the first audio stream.
type Info struct {
	Codec      string  `json:"codec"`
	Container  string  `json:"container"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Duration   float64 `json:"duration"`
	BitRate    int     `json:"bit_rate"`
}

// Info summarizes the first audio stream. Missing numeric fields fall back to the container values, or stay zero.
func (r *Result) Info() (Info, error) {
	for _, stream := range r.Streams {
		if stream.CodecType != "audio" {
			continue
		}

		info := Info{
			Codec:      stream.CodecName,
			Container:  r.Format.FormatName,
			SampleRate: atoi(stream.SampleRate),
			Channels:   stream.Channels,
			Duration:   atof(stream.Duration),
			BitRate:    atoi(stream.BitRate),
		}

		if info.Duration == 0 {
			info.Duration = atof(r.Format.Duration)
		}

		if info.BitRate == 0 {
			info.BitRate = atoi(r.Format.BitRate)
		}

		return info, nil
	}

	return Info{}, ErrNoAudioStream
}

// Probe runs ffprobe on the given file path and returns parsed metadata.
// ffprobe is looked up through FFPROBE_PATH, next to the executable, then in the system PATH.
func Probe(ctx context.Context, filePath string) (*Result, error) {
	slog.Debug("ffprobe.Probe", "file path", filePath)

	ffprobePath, found := binary.Locate(name, EnvPath)
	if !found {
		return nil, fmt.Errorf("%w: %s", fault.ErrMissingRequirements, name)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // filePath is intentionally user-provided input for probing media files
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return Parse(output)
}

// Parse decodes ffprobe JSON output.
func Parse(output []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	return &result, nil
}

func atoi(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}

	return parsed
}

func atof(value string) float64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}

	return parsed
}
