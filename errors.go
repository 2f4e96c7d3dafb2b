package tactus

import (
	"errors"

	"github.com/farcloser/tactus/internal/decoder"
	"github.com/farcloser/tactus/internal/features"
	"github.com/farcloser/tactus/internal/tempo"
)

var (
	// ErrEmptyEnvelope means feature extraction produced no frames.
	ErrEmptyEnvelope = tempo.ErrEmptyEnvelope
	// ErrInvalidBPMRange means the minimum BPM is not below the maximum.
	ErrInvalidBPMRange = tempo.ErrInvalidBPMRange
	// ErrNarrowBPMRange means fewer than two tempogram bins fall within the BPM range.
	ErrNarrowBPMRange = tempo.ErrNarrowBPMRange
	// ErrSilentAudio means the track is too quiet or too short to analyze.
	ErrSilentAudio = tempo.ErrSilentAudio
	// ErrNonFiniteResult means detection ended on a NaN or infinite tempo.
	ErrNonFiniteResult = tempo.ErrNonFiniteResult
	// ErrDecode wraps every decoding failure.
	ErrDecode = decoder.ErrDecode
	// ErrUnsupportedFormat means no decoder handles the file type.
	ErrUnsupportedFormat = decoder.ErrUnsupportedFormat
	// ErrNoSamples means there is no audio to analyze.
	ErrNoSamples = features.ErrNoSamples
	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)
