package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/decoder"
	"github.com/farcloser/tactus/internal/integration/ffmpeg"
)

var errNegativeWindow = errors.New("decoding window must not be negative")

// tempoFlags are the detection flags shared by every command.
func tempoFlags() []cli.Flag {
	defaults := tactus.DefaultOptions()

	return []cli.Flag{
		&cli.IntFlag{
			Name:  "hop",
			Usage: "Samples between analysis frames",
			Value: defaults.HopLength,
		},
		&cli.FloatFlag{
			Name:  "min-bpm",
			Usage: "Lowest tempo considered (negative for no lower bound)",
			Value: defaults.MinBPM,
		},
		&cli.FloatFlag{
			Name:  "max-bpm",
			Usage: "Highest tempo considered (negative for no upper bound)",
			Value: defaults.MaxBPM,
		},
		&cli.FloatFlag{
			Name:  "change-threshold",
			Usage: "BPM jump between frames that starts a new segment",
			Value: defaults.ChangeThreshold,
		},
		&cli.FloatFlag{
			Name:  "min-segment-duration",
			Usage: "Shortest segment kept, in seconds",
			Value: defaults.MinSegmentDuration,
		},
		&cli.FloatFlag{
			Name:  "merge-tolerance",
			Usage: "Adjacent segments closer than this many BPM are merged (negative for zero)",
			Value: defaults.MergeTolerance,
		},
		&cli.FloatFlag{
			Name:  "snap-step",
			Usage: "Grid step for snapping, in BPM",
			Value: defaults.SnapStep,
		},
		&cli.FloatFlag{
			Name:  "snap-tolerance",
			Usage: "Maximum distance to a grid value for snapping, in BPM (negative for zero)",
			Value: defaults.SnapTolerance,
		},
		&cli.BoolFlag{
			Name:  "no-snap",
			Usage: "Report raw tempo values",
		},
		&cli.BoolFlag{
			Name:  "single-segment",
			Usage: "Skip the tempo curve and report the whole track as one segment",
		},
	}
}

// decodeFlags select the decoding window and backend.
func decodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "sample-rate",
			Aliases: []string{"s"},
			Usage:   "Analysis sample rate in Hz",
			Value:   tactus.DefaultSampleRate,
		},
		&cli.FloatFlag{
			Name:  "start",
			Usage: "Offset of the analyzed window, in seconds",
		},
		&cli.FloatFlag{
			Name:  "duration",
			Usage: "Length of the analyzed window in seconds (0 analyzes the whole file)",
			Value: tactus.DefaultDuration,
		},
		&cli.StringFlag{
			Name:  "decoder",
			Usage: "Decoding backend: auto, ffmpeg, native",
			Value: decoder.NameAuto,
		},
		&cli.StringFlag{
			Name:    "ffmpeg",
			Usage:   "Path to the ffmpeg binary",
			Sources: cli.EnvVars(ffmpeg.EnvPath, ffmpeg.EnvBinary),
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: console, json, markdown",
		Value:   "console",
	}
}

func progressFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "progress",
		Aliases: []string{"p"},
		Usage:   "Report pipeline milestones on stderr",
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, group := range groups {
		flags = append(flags, group...)
	}

	return flags
}

// optionsFromFlags maps the tempo flags onto detection options.
func optionsFromFlags(cmd *cli.Command) (tactus.Options, error) {
	opts := tactus.DefaultOptions()

	opts.HopLength = cmd.Int("hop")
	opts.MinBPM = cmd.Float("min-bpm")
	opts.MaxBPM = cmd.Float("max-bpm")
	opts.ChangeThreshold = cmd.Float("change-threshold")
	opts.MinSegmentDuration = cmd.Float("min-segment-duration")
	opts.MergeTolerance = cmd.Float("merge-tolerance")
	opts.SnapStep = cmd.Float("snap-step")
	opts.SnapTolerance = cmd.Float("snap-tolerance")
	opts.NoSnap = cmd.Bool("no-snap")
	opts.SingleSegment = cmd.Bool("single-segment")

	if opts.MinBPM > 0 && opts.MaxBPM > 0 && opts.MinBPM >= opts.MaxBPM {
		return opts, fmt.Errorf("--min-bpm %g, --max-bpm %g: %w", opts.MinBPM, opts.MaxBPM, tactus.ErrInvalidBPMRange)
	}

	return opts, nil
}

// applyDecodeFlags maps the decode flags onto opts.
func applyDecodeFlags(cmd *cli.Command, opts *tactus.Options) error {
	opts.SampleRate = cmd.Int("sample-rate")
	opts.Start = cmd.Float("start")
	opts.Duration = cmd.Float("duration")

	if opts.Start < 0 || opts.Duration < 0 {
		return fmt.Errorf("--start %g, --duration %g: %w", opts.Start, opts.Duration, errNegativeWindow)
	}

	dec, err := decoder.New(cmd.String("decoder"), cmd.String("ffmpeg"))
	if err != nil {
		return err //nolint:wrapcheck // sentinel already names the decoder
	}

	opts.Decoder = dec

	return nil
}

// stderrProgress prints milestones for one file.
func stderrProgress(label string) tactus.ProgressFunc {
	return func(percent int, stage string) {
		fmt.Fprintf(os.Stderr, "[%3d%%] %s: %s\n", percent, label, stage)
	}
}
