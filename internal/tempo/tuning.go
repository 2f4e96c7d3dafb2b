// Package tempo turns onset envelopes, tempograms and beat times into a global BPM and a list of tempo segments.
//
// Every function in this package is pure: inputs are never modified, nothing is logged, and nothing is retained
// between calls.
package tempo

const (
	// DefaultMinBPM is the lower search bound when none is given.
	DefaultMinBPM = 60.0
	// DefaultMaxBPM is the upper search bound when none is given.
	DefaultMaxBPM = 200.0
	// DefaultChangeThreshold is the frame-to-frame BPM jump that starts a new segment.
	DefaultChangeThreshold = 3.0
	// DefaultMinSegmentDuration is the shortest segment, in seconds, kept on its own.
	DefaultMinSegmentDuration = 6.0
	// DefaultMergeTolerance is the BPM difference under which adjacent segments are coalesced.
	DefaultMergeTolerance = 0.75
	// DefaultSnapStep is the quantization step for snapping.
	DefaultSnapStep = 1.0
	// DefaultSnapTolerance is the per-segment snapping tolerance.
	DefaultSnapTolerance = 0.5
)

// Tuning holds the empirically tuned constants of the estimators.
// Zero fields are replaced by their default.
type Tuning struct {
	// HarmonicRatio is the fraction of the main autocorrelation peak a half-lag peak must exceed to win (0.6).
	HarmonicRatio float64
	// HarmonicWindow is the search radius, in frames, around the half lag (2).
	HarmonicWindow int
	// ParabolaEpsilon is the smallest parabola curvature used for sub-frame interpolation (1e-10).
	ParabolaEpsilon float64
	// FusionWindow is the BPM distance under which autocorrelation and beat estimates are averaged (5).
	FusionWindow float64
	// EnergyGate is the fraction of the envelope maximum below which a curve frame is discarded (0.1).
	EnergyGate float64
	// EnergyFloor is the absolute minimum energy gate (1e-6).
	EnergyFloor float64
	// RoundUpThreshold is the fractional part from which integer snapping rounds up (0.495).
	RoundUpThreshold float64
	// HalfStepFactor scales the tolerance for half-BPM snapping (0.3).
	HalfStepFactor float64
	// GlobalSnapTolerance is the minimum tolerance used when snapping the global BPM (1.1).
	GlobalSnapTolerance float64
}

// DefaultTuning returns the reference constants.
func DefaultTuning() Tuning {
	return Tuning{
		HarmonicRatio:       0.6,
		HarmonicWindow:      2,
		ParabolaEpsilon:     1e-10,
		FusionWindow:        5.0,
		EnergyGate:          0.1,
		EnergyFloor:         1e-6,
		RoundUpThreshold:    0.495,
		HalfStepFactor:      0.3,
		GlobalSnapTolerance: 1.1,
	}
}

func (t Tuning) withDefaults() Tuning {
	defaults := DefaultTuning()

	if t.HarmonicRatio == 0 {
		t.HarmonicRatio = defaults.HarmonicRatio
	}

	if t.HarmonicWindow == 0 {
		t.HarmonicWindow = defaults.HarmonicWindow
	}

	if t.ParabolaEpsilon == 0 {
		t.ParabolaEpsilon = defaults.ParabolaEpsilon
	}

	if t.FusionWindow == 0 {
		t.FusionWindow = defaults.FusionWindow
	}

	if t.EnergyGate == 0 {
		t.EnergyGate = defaults.EnergyGate
	}

	if t.EnergyFloor == 0 {
		t.EnergyFloor = defaults.EnergyFloor
	}

	if t.RoundUpThreshold == 0 {
		t.RoundUpThreshold = defaults.RoundUpThreshold
	}

	if t.HalfStepFactor == 0 {
		t.HalfStepFactor = defaults.HalfStepFactor
	}

	if t.GlobalSnapTolerance == 0 {
		t.GlobalSnapTolerance = defaults.GlobalSnapTolerance
	}

	return t
}
