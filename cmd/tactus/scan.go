//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/batch"
	"github.com/farcloser/tactus/internal/integration/ffprobe"
	"github.com/farcloser/tactus/internal/output"
)

const outputFile = "tactus-report.jsonl"

var (
	errScanArgs     = errors.New("expected exactly one argument: folder path")
	errNotDirectory = errors.New("not a directory")
	errNoAudioFiles = errors.New("no audio files found")
)

//nolint:gochecknoglobals // configuration data, effectively const
var audioExtensions = []string{".wav", ".aif", ".aiff", ".mp3", ".ogg", ".oga", ".flac", ".m4a", ".opus"}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Detect the tempo of every audio file in a folder and write a JSONL report",
		ArgsUsage: "<folder>",
		Flags: withFlags([]cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   batch.DefaultWorkers,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report path (a gzip copy is written next to it)",
				Value:   outputFile,
			},
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
		}, decodeFlags(), tempoFlags()),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errScanArgs
			}

			opts, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}

			if err = applyDecodeFlags(cmd, &opts); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			return runScan(ctx, cmd.Args().First(), cmd.String("output"), cmd.Bool("redact-path"),
				max(cmd.Int("workers"), 1), opts)
		},
	}
}

func runScan(ctx context.Context, folder, reportPath string, redact bool, workers int, opts tactus.Options) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", folder, errNotDirectory)
	}

	files, err := collectAudioFiles(folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", folder, errNoAudioFiles)
	}

	fmt.Fprintf(os.Stderr, "Found %d files to analyze (%d workers)\n", len(files), workers)

	startTime := time.Now()
	results := make([]Record, len(files))
	done := 0

	task := func(ctx context.Context, path string, progress batch.Progress) (Record, error) {
		fileOpts := opts
		fileOpts.Progress = tactus.ProgressFunc(progress)

		return processFile(ctx, path, fileOpts), nil
	}

	for update := range batch.Run(ctx, files, batch.Options{Workers: workers}, task) {
		if !update.Done {
			slog.Debug("scan", "file", update.Path, "stage", update.Label, "percent", update.Percent)

			continue
		}

		done++

		if update.Err != nil {
			results[update.Index] = Record{File: update.Path, Error: update.Err.Error()}
		} else {
			results[update.Index] = update.Result
		}

		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(files), update.Path)
	}

	failed, totalProbe, totalDetect, err := writeReport(reportPath, results, redact)
	if err != nil {
		return err
	}

	if err := compressFile(reportPath); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)

	fmt.Fprintf(os.Stderr, "\nDone: %d files in %s (%d failed)\n", len(files), elapsed.Truncate(time.Second), failed)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n", reportPath, reportPath)

	fmt.Fprintf(os.Stderr, "\n--- Timing ---\n")
	fmt.Fprintf(os.Stderr, "  Wall clock:  %s\n", elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  ffprobe:     %s (cumulative)\n", totalProbe.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  detection:   %s (cumulative)\n", totalDetect.Truncate(time.Millisecond))

	if analyzed := len(files) - failed; analyzed > 0 {
		fmt.Fprintf(os.Stderr, "  avg/file:    %s\n", (totalProbe+totalDetect)/time.Duration(analyzed))
	}

	fmt.Fprintln(os.Stderr)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}

	return runDigest(reportPath, false)
}

// writeReport writes results in file order and returns the failure count and cumulative timings.
func writeReport(path string, results []Record, redact bool) (int, time.Duration, time.Duration, error) {
	out, err := os.Create(path) //nolint:gosec // user-chosen report path
	if err != nil {
		return 0, 0, 0, fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	failed := 0

	var totalProbe, totalDetect time.Duration

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if record.Timing != nil {
			totalProbe += millisToDuration(record.Timing.ProbeMs)
			totalDetect += millisToDuration(record.Timing.DetectMs)
		}

		file := record.File
		if redact {
			record.File = ""
		}

		if err := enc.Encode(record); err != nil {
			slog.Error("writing record", "file", file, "error", err)
		}
	}

	return failed, totalProbe, totalDetect, out.Close()
}

func processFile(ctx context.Context, filePath string, opts tactus.Options) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}
	record := Record{File: filePath, Timing: timing}

	// Probing is informational: files ffprobe cannot read may still decode natively.
	probeStart := time.Now()

	if probeResult, err := ffprobe.Probe(ctx, filePath); err != nil {
		record.ProbeError = err.Error()
	} else if probed, infoErr := probeResult.Info(); infoErr != nil {
		record.ProbeError = infoErr.Error()
	} else {
		record.Probe = &probed
	}

	timing.ProbeMs = durationMs(time.Since(probeStart))

	detectStart := time.Now()

	result, err := tactus.Detect(ctx, filePath, opts)

	timing.DetectMs = durationMs(time.Since(detectStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	if err != nil {
		record.Error = fmt.Sprintf("detection failed: %v", err)

		return record
	}

	record.Detection = output.ResultToMap(result)

	return record
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func millisToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func collectAudioFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}

	gzFile, err := os.Create(path + ".gz") //nolint:gosec // next to our own output file
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := gzWriter.Write(data); err != nil {
		return err
	}

	return gzWriter.Close()
}
