package tempo

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/tactus/internal/dsp"
	"github.com/farcloser/tactus/internal/types"
)

// EstimateGlobal returns a single best-guess BPM from the autocorrelation of an onset envelope.
// An empty search range is not an error: the lower bound is returned instead.
func EstimateGlobal(envelope []float64, sampleRate, hopLength int, bounds types.Bounds, tuning Tuning) (float64, error) {
	if len(envelope) == 0 {
		return 0, ErrEmptyEnvelope
	}

	return EstimateFromAutocorrelation(dsp.Autocorrelate(envelope), sampleRate, hopLength, bounds, tuning), nil
}

// EstimateFromAutocorrelation picks the tempo from a precomputed autocorrelation indexed by lag in frames.
func EstimateFromAutocorrelation(ac []float64, sampleRate, hopLength int, bounds types.Bounds, tuning Tuning) float64 {
	tuning = tuning.withDefaults()

	low := bounds.Low(DefaultMinBPM)
	high := bounds.High(DefaultMaxBPM)

	framesPerMinute := LagToBPM(1, sampleRate, hopLength)

	minLag := int(framesPerMinute / high)
	maxLag := int(framesPerMinute / low)

	if minLag >= len(ac) {
		return low
	}

	// Lag 0 is the signal energy, not a period.
	minLag = max(minLag, 1)
	maxLag = min(maxLag, len(ac)-1)

	if minLag > maxLag {
		return low
	}

	peak := minLag + floats.MaxIdx(ac[minLag:maxLag+1])
	peak = harmonicPeak(ac, peak, minLag, tuning)

	return framesPerMinute / refineLag(ac, peak, tuning.ParabolaEpsilon)
}

// LagToBPM converts an autocorrelation lag, in frames, to beats per minute.
func LagToBPM(lag float64, sampleRate, hopLength int) float64 {
	return 60 * float64(sampleRate) / (float64(hopLength) * lag)
}

// harmonicPeak prefers the peak near half the lag (double tempo) when it is nearly as strong.
// Dense rhythms put most of their periodicity on the subdivision, and the main peak lands an octave low.
func harmonicPeak(ac []float64, peak, minLag int, tuning Tuning) int {
	half := peak / 2
	if half < minLag {
		return peak
	}

	from := max(half-tuning.HarmonicWindow, 0)
	to := min(half+tuning.HarmonicWindow, len(ac)-1)
	local := from + floats.MaxIdx(ac[from:to+1])

	if ac[local] > ac[peak]*tuning.HarmonicRatio {
		return local
	}

	return peak
}

// refineLag fits a parabola through the peak and its neighbours for sub-frame precision.
func refineLag(ac []float64, idx int, epsilon float64) float64 {
	lag := float64(idx)

	if idx <= 0 || idx >= len(ac)-1 {
		return lag
	}

	y0, y1, y2 := ac[idx-1], ac[idx], ac[idx+1]

	denom := y0 - 2*y1 + y2
	if math.Abs(denom) <= epsilon {
		return lag
	}

	refined := lag + 0.5*(y0-y2)/denom
	if refined <= 0 {
		return lag
	}

	return refined
}
