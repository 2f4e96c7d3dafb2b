package tempo

import (
	"math"

	"github.com/farcloser/tactus/internal/dsp"
	"github.com/farcloser/tactus/internal/types"
)

// BeatsToBPM returns the median per-interval tempo of a beat sequence, restricted to bounds.
// It reports false when there are fewer than two beats or no interval survives filtering.
func BeatsToBPM(beatTimes []float64, bounds types.Bounds) (float64, bool) {
	bpms := intervalBPMs(beatTimes, bounds)
	if len(bpms) == 0 {
		return 0, false
	}

	return dsp.Median(bpms), true
}

// RefineWithBeats is BeatsToBPM falling back to the beat tracker's own tempo estimate when the intervals are
// unusable. It reports false when neither source yields a positive finite tempo.
func RefineWithBeats(beatTimes []float64, bounds types.Bounds, trackerTempo float64) (float64, bool) {
	if bpm, ok := BeatsToBPM(beatTimes, bounds); ok {
		return bpm, true
	}

	if isFinite(trackerTempo) && trackerTempo > 0 {
		return trackerTempo, true
	}

	return 0, false
}

// Fuse combines the autocorrelation estimate with the beat-interval estimate.
// Close estimates are averaged to cancel their small systematic biases. A larger gap is read as an octave error of
// the autocorrelation, and the beat estimate wins.
func Fuse(autocorrelationBPM, beatBPM float64, hasBeatBPM bool, tuning Tuning) float64 {
	if !hasBeatBPM || !isFinite(beatBPM) {
		return autocorrelationBPM
	}

	tuning = tuning.withDefaults()

	if math.Abs(autocorrelationBPM-beatBPM) < tuning.FusionWindow {
		return (autocorrelationBPM + beatBPM) / 2
	}

	return beatBPM
}

func intervalBPMs(beatTimes []float64, bounds types.Bounds) []float64 {
	if len(beatTimes) < 2 {
		return nil
	}

	bpms := make([]float64, 0, len(beatTimes)-1)

	for i := 1; i < len(beatTimes); i++ {
		interval := beatTimes[i] - beatTimes[i-1]
		if interval <= 0 {
			continue
		}

		bpm := 60 / interval
		if !bounds.Contains(bpm) {
			continue
		}

		bpms = append(bpms, bpm)
	}

	return bpms
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
