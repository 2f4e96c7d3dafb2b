//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tactus"
)

var errDetectArgs = errors.New("expected exactly one argument: file path")

func detectCommand() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Decode an audio file and estimate its tempo and tempo changes",
		ArgsUsage: "<file>",
		Flags:     withFlags(decodeFlags(), tempoFlags(), []cli.Flag{formatFlag(), progressFlag()}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errDetectArgs, cmd.NArg())
			}

			filePath := cmd.Args().First()

			opts, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}

			if err = applyDecodeFlags(cmd, &opts); err != nil {
				return err
			}

			if cmd.Bool("progress") {
				opts.Progress = stderrProgress(filePath)
			}

			result, err := tactus.Detect(ctx, filePath, opts)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}

			return outputResult(filePath, result, cmd.String("format"), cmd.Bool("debug"))
		},
	}
}
