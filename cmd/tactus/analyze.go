//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/decoder"
	"github.com/farcloser/tactus/internal/pcm"
	"github.com/farcloser/tactus/internal/types"
)

var (
	errInvalidArgCount = errors.New("expected exactly one argument: file path or \"-\" for stdin")
	errInvalidBitDepth = errors.New("must be 16, 24, or 32")
	errInvalidChannels = errors.New("must be at least 1")
	errInvalidRate     = errors.New("must be positive")
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Estimate the tempo of raw PCM audio",
		ArgsUsage: "<file | ->",
		Flags: withFlags([]cli.Flag{
			// PCMFormat flags.
			&cli.IntFlag{
				Name:     "sample-rate",
				Aliases:  []string{"s"},
				Usage:    "Sample rate in Hz (e.g., 44100, 48000, 96000)",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "bit-depth",
				Aliases: []string{"b"},
				Usage:   "Bit depth (16, 24, or 32)",
				Value:   32,
			},
			&cli.IntFlag{
				Name:    "channels",
				Aliases: []string{"c"},
				Usage:   "Number of interleaved channels, downmixed to mono",
				Value:   2,
			},
		}, tempoFlags(), []cli.Flag{formatFlag(), progressFlag()}),
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			format, err := parsePCMFormat(cmd)
			if err != nil {
				return err
			}

			opts, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}

			inputPath := cmd.Args().First()

			if cmd.Bool("progress") {
				opts.Progress = stderrProgress(inputPath)
			}

			samples, err := readSamples(inputPath, format)
			if err != nil {
				return err
			}

			// Tempo constants are tuned for the analysis rate, not the source one.
			samples = decoder.Resample(samples, format.SampleRate, opts.SampleRate)

			result, err := tactus.DetectSamples(samples, opts.SampleRate, opts)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}

			return outputResult(inputPath, result, cmd.String("format"), cmd.Bool("debug"))
		},
	}
}

func parsePCMFormat(cmd *cli.Command) (types.PCMFormat, error) {
	sampleRate := cmd.Int("sample-rate")
	channels := cmd.Int("channels")

	if sampleRate <= 0 {
		return types.PCMFormat{}, fmt.Errorf("--sample-rate: %w", errInvalidRate)
	}

	if channels <= 0 {
		return types.PCMFormat{}, fmt.Errorf("--channels: %w", errInvalidChannels)
	}

	bitDepth, err := toBitDepth(cmd.Int("bit-depth"))
	if err != nil {
		return types.PCMFormat{}, fmt.Errorf("--bit-depth: %w", err)
	}

	return types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		Channels:   uint(channels), //nolint:gosec // validated positive value
	}, nil
}

func toBitDepth(v int) (types.BitDepth, error) {
	switch v {
	case 16:
		return types.Depth16, nil
	case 24:
		return types.Depth24, nil
	case 32:
		return types.Depth32, nil
	default:
		return 0, errInvalidBitDepth
	}
}

// readSamples decodes the whole input, a file or stdin, to mono.
func readSamples(source string, format types.PCMFormat) ([]float64, error) {
	var reader io.Reader = os.Stdin

	if source != "-" {
		file, err := os.Open(source) //nolint:gosec // CLI tool opens user-specified audio files
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", source, err)
		}
		defer file.Close()

		reader = file
	}

	samples, err := pcm.ReadMono(reader, format)
	if err != nil {
		return nil, fmt.Errorf("reading PCM: %w", err)
	}

	return samples, nil
}
