// Package features extracts the rhythm features the tempo estimators work from: onset strength envelopes,
// autocorrelation tempograms and beat positions.
package features

import (
	"errors"

	"github.com/farcloser/tactus/internal/types"
)

var (
	// ErrNoSamples is returned when there is no audio to analyze.
	ErrNoSamples = errors.New("no samples")
	// ErrInvalidGeometry is returned for non-positive sample rates or hop lengths.
	ErrInvalidGeometry = errors.New("sample rate and hop length must be positive")
)

const (
	// DefaultFFTSize is the STFT size used for onset detection.
	DefaultFFTSize = 2048
	// DefaultMaxFrequency caps the spectral bins contributing to onset strength, in Hz.
	DefaultMaxFrequency = 8000.0
	// DefaultTopDB is the dynamic range kept below the loudest bin, in dB.
	DefaultTopDB = 80.0
	// DefaultTempogramWindow is the autocorrelation window of the tempogram, in frames.
	DefaultTempogramWindow = 384
	// DefaultMaxTempo is the fastest tempo the beat tracker will consider.
	DefaultMaxTempo = 320.0
)

// Extractor produces the rhythm features of a mono signal.
type Extractor interface {
	// OnsetStrength returns one onset strength value per frame of hopLength samples.
	OnsetStrength(samples []float64, sampleRate, hopLength int) ([]float64, error)
	// Tempogram returns the local autocorrelation of the onset envelope for every frame.
	Tempogram(envelope []float64, sampleRate, hopLength int) (types.Tempogram, error)
	// BeatTrack returns the tracker's tempo and the frame index of every beat, seeded with startBPM.
	BeatTrack(envelope []float64, sampleRate, hopLength int, startBPM, tightness float64) (float64, []int, error)
	// FramesToTime converts frame indices to seconds.
	FramesToTime(frames []int, sampleRate, hopLength int) []float64
}

// Default is the built-in Extractor. Zero fields take their default value.
type Default struct {
	FFTSize         int
	MaxFrequency    float64
	TopDB           float64
	TempogramWindow int
	MaxTempo        float64
}

var _ Extractor = Default{}

func (d Default) withDefaults() Default {
	if d.FFTSize <= 0 {
		d.FFTSize = DefaultFFTSize
	}

	if d.MaxFrequency <= 0 {
		d.MaxFrequency = DefaultMaxFrequency
	}

	if d.TopDB <= 0 {
		d.TopDB = DefaultTopDB
	}

	if d.TempogramWindow <= 0 {
		d.TempogramWindow = DefaultTempogramWindow
	}

	if d.MaxTempo <= 0 {
		d.MaxTempo = DefaultMaxTempo
	}

	return d
}

// FramesToTime converts frame indices to seconds: frame * hopLength / sampleRate.
func (Default) FramesToTime(frames []int, sampleRate, hopLength int) []float64 {
	times := make([]float64, len(frames))
	if sampleRate <= 0 {
		return times
	}

	for i, frame := range frames {
		times[i] = float64(frame) * float64(hopLength) / float64(sampleRate)
	}

	return times
}
