package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/urfave/cli/v3"
)

const bucketWidth = 10

var errDigestArgs = errors.New("expected exactly one argument: path to report.jsonl")

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a tactus JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "changes",
				Usage: "List the files whose tempo changes",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errDigestArgs
			}

			return runDigest(cmd.Args().First(), cmd.Bool("changes"))
		},
	}
}

func runDigest(reportPath string, listChanges bool) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(records)

	if listChanges {
		printChanges(records)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

func printDigest(records []digestRecord) {
	total := len(records)
	failed := 0
	changing := 0
	buckets := map[int]int{}

	for _, rec := range records {
		if rec.Error != "" || rec.Detection == nil {
			failed++

			continue
		}

		if len(rec.Detection.Segments) > 1 {
			changing++
		}

		buckets[int(math.Floor(rec.Detection.BPM/bucketWidth))*bucketWidth]++
	}

	fmt.Println("=== Tactus Report Digest ===")
	fmt.Println()
	fmt.Printf("Total tracks:    %d\n", total)
	fmt.Printf("Failed:          %d\n", failed)
	fmt.Printf("Analyzed:        %d\n", total-failed)
	fmt.Printf("Tempo changes:   %d\n", changing)
	fmt.Println()

	fmt.Println("--- Tempo Distribution ---")

	keys := make([]int, 0, len(buckets))
	for low := range buckets {
		keys = append(keys, low)
	}

	slices.Sort(keys)

	for _, low := range keys {
		fmt.Printf("  %3d-%3d BPM:  %d tracks\n", low, low+bucketWidth-1, buckets[low])
	}
}

func printChanges(records []digestRecord) {
	fmt.Println()
	fmt.Println("--- Tracks With Tempo Changes ---")

	for _, rec := range records {
		if rec.Detection == nil || len(rec.Detection.Segments) < 2 {
			continue
		}

		file := rec.File
		if file == "" {
			file = "(redacted)"
		}

		fmt.Printf("  %s\n", file)

		for _, seg := range rec.Detection.Segments {
			fmt.Printf("    %7.1fs - %7.1fs: %s BPM\n", seg.Start, seg.End, formatBPM(seg.BPM))
		}
	}
}
