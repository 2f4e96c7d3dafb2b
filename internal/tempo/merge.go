package tempo

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/tactus/internal/types"
)

// MergeSimilar coalesces adjacent segments whose BPM differs by at most tolerance, in a single left to right pass.
// Merged segments take the duration-weighted BPM of their parts. The input is left untouched.
func MergeSimilar(segments []types.Segment, tolerance float64) []types.Segment {
	merged := make([]types.Segment, 0, len(segments))

	for _, seg := range segments {
		if len(merged) > 0 && math.Abs(seg.BPM-merged[len(merged)-1].BPM) <= tolerance {
			merged[len(merged)-1] = absorb(merged[len(merged)-1], seg)

			continue
		}

		merged = append(merged, seg)
	}

	return merged
}

// ClampEnd trims or extends the last segment so the list ends exactly at duration.
// A last segment left empty by the trim is dropped and its predecessor takes over the end.
func ClampEnd(segments []types.Segment, duration float64) []types.Segment {
	clamped := make([]types.Segment, len(segments))
	copy(clamped, segments)

	for len(clamped) > 1 && clamped[len(clamped)-1].Start >= duration {
		clamped = clamped[:len(clamped)-1]
	}

	if len(clamped) > 0 {
		clamped[len(clamped)-1].End = duration
	}

	return clamped
}

// absorb extends prev over next, weighting their BPM by duration.
func absorb(prev, next types.Segment) types.Segment {
	prev.BPM = weightedBPM(prev, next)
	prev.End = next.End

	return prev
}

func weightedBPM(a, b types.Segment) float64 {
	da, db := a.Duration(), b.Duration()
	if da+db <= 0 {
		return b.BPM
	}

	return stat.Mean([]float64{a.BPM, b.BPM}, []float64{da, db})
}
