package dsp

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// STFT computes centred short-time power spectra.
// Frame t is centred on sample t*hop, zero padded at both ends, so a signal of n samples yields 1 + n/hop frames.
type STFT struct {
	size   int
	hop    int
	window []float64
	fft    *fourier.FFT
	frame  []float64
	coeffs []complex128
	power  []float64
}

// NewSTFT prepares a transform of the given size and hop.
func NewSTFT(size, hop int) *STFT {
	return &STFT{
		size:   size,
		hop:    hop,
		window: PeriodicHann(size),
		fft:    fourier.NewFFT(size),
		frame:  make([]float64, size),
		coeffs: make([]complex128, size/2+1),
		power:  make([]float64, size/2+1),
	}
}

// Frames returns the number of frames produced for a signal of length n.
func (s *STFT) Frames(n int) int {
	if n <= 0 || s.hop <= 0 {
		return 0
	}

	return 1 + n/s.hop
}

// Bins returns the number of non-negative frequency bins.
func (s *STFT) Bins() int {
	return s.size/2 + 1
}

// Each calls fn with the power spectrum of every frame. The slice passed to fn is reused between calls.
func (s *STFT) Each(signal []float64, fn func(frame int, power []float64)) {
	frames := s.Frames(len(signal))
	half := s.size / 2

	for t := range frames {
		start := t*s.hop - half

		for i := range s.frame {
			idx := start + i
			if idx < 0 || idx >= len(signal) {
				s.frame[i] = 0

				continue
			}

			s.frame[i] = signal[idx] * s.window[i]
		}

		s.coeffs = s.fft.Coefficients(s.coeffs, s.frame)

		for i, c := range s.coeffs {
			s.power[i] = real(c)*real(c) + imag(c)*imag(c)
		}

		fn(t, s.power)
	}
}
