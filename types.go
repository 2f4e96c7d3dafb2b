package tactus

import (
	"github.com/farcloser/tactus/internal/decoder"
	"github.com/farcloser/tactus/internal/features"
	"github.com/farcloser/tactus/internal/tempo"
	"github.com/farcloser/tactus/internal/types"
)

type (
	// Segment is a time range, in seconds, of locally stable tempo.
	Segment = types.Segment
	// Bounds restricts the tempo search range. A zero field leaves that side open.
	Bounds = types.Bounds
	// Tempogram is a tempo-bin by frame periodicity matrix.
	Tempogram = types.Tempogram
	// Tuning holds the empirically tuned constants of the estimators.
	Tuning = tempo.Tuning
	// FeatureExtractor produces onset envelopes, tempograms and beats.
	FeatureExtractor = features.Extractor
	// Decoder turns a file into mono samples.
	Decoder = decoder.Decoder
	// Audio is a decoded mono signal.
	Audio = decoder.Audio
)

// ProgressFunc receives coarse pipeline milestones.
type ProgressFunc func(percent int, label string)

// Progress milestones.
const (
	StageDecoding   = "decoding"
	StageExtracting = "extracting features"
	StageScanning   = "scanning"
	StageRefining   = "refining"
	StageDone       = "done"
)

// Options configures tempo detection. Zero fields take their default value, except Start, Duration and the
// boolean switches, whose zero value is meaningful.
// A negative MinBPM or MaxBPM leaves that side of the range open, and a negative MergeTolerance or SnapTolerance
// stands for an explicit zero: only identical tempos merge, only exact grid values are kept.
type Options struct {
	SampleRate int // analysis sample rate in Hz (default: 22050)
	HopLength  int // samples between analysis frames (default: 128)

	// Decoding window, in seconds. A zero Duration analyzes the whole file.
	Start    float64
	Duration float64

	MinBPM float64 // default 60, negative for no lower bound
	MaxBPM float64 // default 200, negative for no upper bound

	ChangeThreshold    float64 // BPM jump between frames that starts a new segment (default: 3)
	MinSegmentDuration float64 // seconds (default: 6)
	MergeTolerance     float64 // BPM (default: 0.75, negative for zero)

	SnapStep      float64 // default 1
	SnapTolerance float64 // default 0.5, negative for zero
	NoSnap        bool    // report raw values

	// SingleSegment skips the tempo curve: the whole track is one segment refined from the beats.
	SingleSegment bool

	Tightness float64 // beat tracker adherence to the estimated tempo (default: 400)

	Tuning    Tuning
	Extractor FeatureExtractor // default: the built-in extractor
	Decoder   Decoder          // default: ffmpeg, falling back to native decoding
	Progress  ProgressFunc     // optional
}

// DefaultOptions returns the reference configuration: 60 seconds at 22050 Hz, 60 to 200 BPM.
func DefaultOptions() Options {
	return Options{
		SampleRate:         DefaultSampleRate,
		HopLength:          DefaultHopLength,
		Duration:           DefaultDuration,
		MinBPM:             tempo.DefaultMinBPM,
		MaxBPM:             tempo.DefaultMaxBPM,
		ChangeThreshold:    tempo.DefaultChangeThreshold,
		MinSegmentDuration: tempo.DefaultMinSegmentDuration,
		MergeTolerance:     tempo.DefaultMergeTolerance,
		SnapStep:           tempo.DefaultSnapStep,
		SnapTolerance:      tempo.DefaultSnapTolerance,
		Tightness:          DefaultTightness,
		Tuning:             tempo.DefaultTuning(),
		Extractor:          features.Default{},
		Decoder:            decoder.Fallback{Primary: decoder.FFmpeg{}, Secondary: decoder.Native{}},
	}
}

// Defaults not owned by the tempo package.
const (
	DefaultSampleRate = 22050
	DefaultHopLength  = 128
	DefaultDuration   = 60.0
	DefaultTightness  = 400.0
)

// Result is the outcome of a detection.
type Result struct {
	BPM        float64   `json:"bpm"`
	SampleRate int       `json:"sample_rate"`
	Duration   float64   `json:"duration"`
	Segments   []Segment `json:"segments"`
	Estimates  Estimates `json:"estimates"`
}

// Estimates exposes the intermediate values behind Result.BPM.
type Estimates struct {
	Autocorrelation float64 `json:"autocorrelation_bpm"`
	Tracker         float64 `json:"tracker_bpm"`
	Beats           float64 `json:"beats_bpm"`
	HasBeats        bool    `json:"has_beats"`
	BeatCount       int     `json:"beat_count"`
	Fused           float64 `json:"fused_bpm"`
}

func (o Options) bounds() Bounds {
	return Bounds{Min: o.MinBPM, Max: o.MaxBPM}
}

func (o Options) progress(percent int, label string) {
	if o.Progress != nil {
		o.Progress(percent, label)
	}
}

func applyDefaults(opts *Options) {
	defaults := DefaultOptions()

	if opts.SampleRate <= 0 {
		opts.SampleRate = defaults.SampleRate
	}

	if opts.HopLength <= 0 {
		opts.HopLength = defaults.HopLength
	}

	if opts.MinBPM == 0 {
		opts.MinBPM = defaults.MinBPM
	}

	if opts.MaxBPM == 0 {
		opts.MaxBPM = defaults.MaxBPM
	}

	if opts.ChangeThreshold == 0 {
		opts.ChangeThreshold = defaults.ChangeThreshold
	}

	if opts.MinSegmentDuration == 0 {
		opts.MinSegmentDuration = defaults.MinSegmentDuration
	}

	if opts.MergeTolerance == 0 {
		opts.MergeTolerance = defaults.MergeTolerance
	}

	if opts.SnapStep == 0 {
		opts.SnapStep = defaults.SnapStep
	}

	if opts.SnapTolerance == 0 {
		opts.SnapTolerance = defaults.SnapTolerance
	}

	explicit := func(value *float64) {
		if *value < 0 {
			*value = 0
		}
	}

	explicit(&opts.MinBPM)
	explicit(&opts.MaxBPM)
	explicit(&opts.MergeTolerance)
	explicit(&opts.SnapTolerance)

	if opts.Tightness == 0 {
		opts.Tightness = defaults.Tightness
	}

	if opts.Extractor == nil {
		opts.Extractor = defaults.Extractor
	}

	if opts.Decoder == nil {
		opts.Decoder = defaults.Decoder
	}
}
