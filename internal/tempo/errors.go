package tempo

import "errors"

var (
	// ErrEmptyEnvelope is returned when feature extraction produced no frames.
	ErrEmptyEnvelope = errors.New("tempo could not be estimated: empty onset envelope")
	// ErrInvalidBPMRange is returned when the minimum BPM is not lower than the maximum.
	ErrInvalidBPMRange = errors.New("invalid BPM range: minimum must be lower than maximum")
	// ErrNarrowBPMRange is returned when fewer than two tempo bins survive range filtering.
	ErrNarrowBPMRange = errors.New("BPM range too narrow: fewer than 2 tempo bins")
	// ErrSilentAudio is returned when every curve frame falls below the energy gate.
	ErrSilentAudio = errors.New("track too quiet or too short to analyze")
	// ErrNonFiniteResult is returned when the global BPM is NaN or infinite after all stages.
	ErrNonFiniteResult = errors.New("tempo detection produced a non-finite result")
)
