//nolint:wrapcheck
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/output"
)

func outputResult(filePath string, result *tactus.Result, formatName string, debug bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	var meta map[string]any
	if debug {
		meta = output.ResultToMap(result)
	} else {
		meta = buildFriendlyOutput(result)
	}

	data := &format.Data{
		Object: filePath,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

// buildFriendlyOutput creates a readable summary of the detection.
func buildFriendlyOutput(result *tactus.Result) map[string]any {
	meta := map[string]any{
		"bpm":      formatBPM(result.BPM),
		"duration": fmt.Sprintf("%.1f s", result.Duration),
	}

	if len(result.Segments) > 1 {
		meta["summary"] = fmt.Sprintf("%d tempo changes", len(result.Segments)-1)
	} else {
		meta["summary"] = "steady tempo"
	}

	segments := make([]any, 0, len(result.Segments))
	for _, seg := range result.Segments {
		segments = append(segments, fmt.Sprintf("%7.1fs - %7.1fs: %s BPM", seg.Start, seg.End, formatBPM(seg.BPM)))
	}

	meta["segments"] = segments

	return meta
}

// formatBPM prints snapped values without trailing zeros and raw ones with two decimals.
func formatBPM(bpm float64) string {
	if rounded := strconv.FormatFloat(bpm, 'f', -1, 64); len(rounded) <= len("000.00") {
		return rounded
	}

	return strconv.FormatFloat(bpm, 'f', 2, 64)
}
