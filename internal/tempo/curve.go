package tempo

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/tactus/internal/dsp"
	"github.com/farcloser/tactus/internal/types"
)

// BuildTempoCurveSegments derives the per-frame tempo curve from a tempogram and partitions it into segments
// covering [0, frames*frameDuration].
func BuildTempoCurveSegments(
	tempogram types.Tempogram,
	envelope []float64,
	bounds types.Bounds,
	changeThreshold float64,
	minSegmentDuration float64,
	frameDuration float64,
	tuning Tuning,
) ([]types.Segment, error) {
	curve, err := Curve(tempogram, envelope, bounds, tuning)
	if err != nil {
		return nil, err
	}

	return BuildSegments(curve, frameDuration, changeThreshold, minSegmentDuration), nil
}

// Curve returns the local BPM of every frame: the strongest tempo bin within bounds, with low-energy frames
// replaced by interpolation between their valid neighbours.
// The frame count is the smaller of the shortest tempogram row and the envelope length.
func Curve(tempogram types.Tempogram, envelope []float64, bounds types.Bounds, tuning Tuning) ([]float64, error) {
	tuning = tuning.withDefaults()

	if len(envelope) == 0 || len(tempogram.Bins) <= 1 || len(tempogram.Data) != len(tempogram.Bins) {
		return nil, ErrEmptyEnvelope
	}

	rows, err := selectBins(tempogram.Bins, bounds)
	if err != nil {
		return nil, err
	}

	frames := len(envelope)
	for _, row := range tempogram.Data {
		frames = min(frames, len(row))
	}

	if frames == 0 {
		return nil, ErrEmptyEnvelope
	}

	gate := math.Max(tuning.EnergyFloor, tuning.EnergyGate*floats.Max(envelope))
	curve := make([]float64, frames)

	for frame := range frames {
		best := rows[0]

		for _, row := range rows[1:] {
			if tempogram.Data[row][frame] > tempogram.Data[best][frame] {
				best = row
			}
		}

		bpm := tempogram.Bins[best]
		if envelope[frame] < gate || !isFinite(bpm) {
			bpm = math.NaN()
		}

		curve[frame] = bpm
	}

	if !dsp.FillGaps(curve) {
		return nil, ErrSilentAudio
	}

	return curve, nil
}

// selectBins returns the tempogram rows eligible for the arg-max: every row but the zero-lag one, restricted to
// bounds when any is set.
func selectBins(bins []float64, bounds types.Bounds) ([]int, error) {
	filtered := bounds.HasMin() || bounds.HasMax()

	if bounds.HasMin() && bounds.HasMax() && bounds.Min >= bounds.Max {
		return nil, ErrInvalidBPMRange
	}

	rows := make([]int, 0, len(bins)-1)

	for row := 1; row < len(bins); row++ {
		if filtered && !bounds.Contains(bins[row]) {
			continue
		}

		rows = append(rows, row)
	}

	if filtered && len(rows) < 2 {
		return nil, ErrNarrowBPMRange
	}

	if len(rows) == 0 {
		return nil, ErrEmptyEnvelope
	}

	return rows, nil
}

// BuildSegments partitions a per-frame tempo curve wherever consecutive frames jump by changeThreshold or more.
// Each segment takes the median BPM of its frames. Segments shorter than minSegmentDuration are then folded into a
// neighbour: a short first segment forward (count-ins, quiet intros), any other one backward.
func BuildSegments(curve []float64, frameDuration, changeThreshold, minSegmentDuration float64) []types.Segment {
	if len(curve) == 0 {
		return []types.Segment{}
	}

	segments := make([]types.Segment, 0, 8)
	start := 0

	closeSegment := func(from, to int) {
		segments = append(segments, types.Segment{
			Start: float64(from) * frameDuration,
			End:   float64(to+1) * frameDuration,
			BPM:   dsp.Median(curve[from : to+1]),
		})
	}

	for i := 1; i < len(curve); i++ {
		if math.Abs(curve[i]-curve[i-1]) >= changeThreshold {
			closeSegment(start, i-1)
			start = i
		}
	}

	closeSegment(start, len(curve)-1)

	segments = absorbLeading(segments, minSegmentDuration)

	return mergeShort(segments, minSegmentDuration)
}

func absorbLeading(segments []types.Segment, minDuration float64) []types.Segment {
	if len(segments) < 2 || segments[0].Duration() >= minDuration {
		return segments
	}

	next := segments[1]
	next.BPM = weightedBPM(segments[0], next)
	next.Start = segments[0].Start

	out := make([]types.Segment, 0, len(segments)-1)
	out = append(out, next)

	return append(out, segments[2:]...)
}

func mergeShort(segments []types.Segment, minDuration float64) []types.Segment {
	merged := make([]types.Segment, 0, len(segments))

	for _, seg := range segments {
		if len(merged) == 0 || seg.Duration() >= minDuration {
			merged = append(merged, seg)

			continue
		}

		merged[len(merged)-1] = absorb(merged[len(merged)-1], seg)
	}

	return merged
}

// RefineSegments replaces each segment's BPM by the median of the beat-interval tempos whose interval midpoint
// falls inside the segment and within bounds. Segments without qualifying intervals keep their BPM.
func RefineSegments(segments []types.Segment, beatTimes []float64, bounds types.Bounds) []types.Segment {
	refined := make([]types.Segment, len(segments))
	copy(refined, segments)

	if len(beatTimes) < 2 {
		return refined
	}

	for i := range refined {
		seg := &refined[i]
		bpms := make([]float64, 0)

		for j := 1; j < len(beatTimes); j++ {
			interval := beatTimes[j] - beatTimes[j-1]
			if interval <= 0 {
				continue
			}

			midpoint := (beatTimes[j] + beatTimes[j-1]) / 2
			if midpoint < seg.Start || midpoint >= seg.End {
				continue
			}

			bpm := 60 / interval
			if bounds.Contains(bpm) {
				bpms = append(bpms, bpm)
			}
		}

		if len(bpms) > 0 {
			seg.BPM = dsp.Median(bpms)
		}
	}

	return refined
}
