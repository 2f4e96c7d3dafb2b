// Package output provides shared result serialization for tactus JSON output.
package output

import (
	"github.com/farcloser/tactus"
)

// ResultToMap converts a detection result into the canonical map structure
// used for JSON and JSONL serialization.
func ResultToMap(result *tactus.Result) map[string]any {
	return map[string]any{
		"bpm":         result.BPM,
		"sample_rate": result.SampleRate,
		"duration":    result.Duration,
		"segments":    SegmentsToList(result.Segments),
		"estimates":   EstimatesToMap(&result.Estimates),
	}
}

// SegmentsToList converts tempo segments to a list of maps.
func SegmentsToList(segments []tactus.Segment) []any {
	list := make([]any, 0, len(segments))
	for _, seg := range segments {
		list = append(list, map[string]any{
			"start": seg.Start,
			"end":   seg.End,
			"bpm":   seg.BPM,
		})
	}

	return list
}

// EstimatesToMap converts the intermediate estimates to a map.
// The beat estimate is omitted when the tracker found no usable beats.
func EstimatesToMap(estimates *tactus.Estimates) map[string]any {
	meta := map[string]any{
		"autocorrelation_bpm": estimates.Autocorrelation,
		"tracker_bpm":         estimates.Tracker,
		"beat_count":          estimates.BeatCount,
		"fused_bpm":           estimates.Fused,
	}

	if estimates.HasBeats {
		meta["beats_bpm"] = estimates.Beats
	}

	return meta
}
