package tactus

import (
	"github.com/farcloser/tactus/internal/tempo"
)

// EstimateGlobalBPM returns the autocorrelation tempo of an onset envelope, with harmonic correction and sub-frame
// interpolation. When no lag fits the bounds the lower bound is returned.
func EstimateGlobalBPM(envelope []float64, sampleRate, hopLength int, bounds Bounds) (float64, error) {
	//nolint:wrapcheck // sentinel from the tempo package
	return tempo.EstimateGlobal(envelope, sampleRate, hopLength, bounds, tempo.Tuning{})
}

// RefineWithBeats returns the median tempo of the inter-beat intervals within bounds.
// It reports false when fewer than two beats or no usable interval remain.
func RefineWithBeats(beatTimes []float64, bounds Bounds) (float64, bool) {
	return tempo.BeatsToBPM(beatTimes, bounds)
}

// FuseEstimates combines an autocorrelation tempo with a beat-interval tempo.
func FuseEstimates(autocorrelationBPM, beatBPM float64, hasBeatBPM bool) float64 {
	return tempo.Fuse(autocorrelationBPM, beatBPM, hasBeatBPM, tempo.Tuning{})
}

// BuildTempoCurveSegments partitions a tempogram into segments of stable tempo covering its frames.
func BuildTempoCurveSegments(
	tempogram Tempogram,
	envelope []float64,
	bounds Bounds,
	changeThreshold float64,
	minSegmentDuration float64,
	frameDuration float64,
) ([]Segment, error) {
	//nolint:wrapcheck // sentinel from the tempo package
	return tempo.BuildTempoCurveSegments(
		tempogram, envelope, bounds, changeThreshold, minSegmentDuration, frameDuration, tempo.Tuning{},
	)
}

// MergeSimilarSegments coalesces adjacent segments whose BPM differs by at most tolerance.
func MergeSimilarSegments(segments []Segment, tolerance float64) []Segment {
	return tempo.MergeSimilar(segments, tolerance)
}

// SnapBPM quantizes bpm toward integers, halves, then multiples of step.
func SnapBPM(bpm, step, tolerance float64) float64 {
	return tempo.Snap(bpm, step, tolerance, tempo.Tuning{})
}
