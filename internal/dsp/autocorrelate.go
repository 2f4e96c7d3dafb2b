// Package dsp holds the numeric building blocks shared by the feature extractor and the tempo estimators.
package dsp

import (
	"math/bits"

	"github.com/mjibson/go-dsp/fft"
)

// Autocorrelate returns the full-lag autocorrelation of signal: out[lag] = sum(signal[i] * signal[i+lag]).
// The result has the same length as the input, out[0] being the energy of the signal.
func Autocorrelate(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return []float64{}
	}

	// Zero pad past 2n-1 so the circular correlation does not wrap.
	padded := make([]float64, nextPowerOfTwo(2*n-1))
	copy(padded, signal)

	spectrum := fft.FFTReal(padded)
	for i, c := range spectrum {
		spectrum[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}

	inverse := fft.IFFT(spectrum)

	out := make([]float64, n)
	for i := range out {
		out[i] = real(inverse[i])
	}

	return out
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1)) //nolint:gosec // n is a positive slice length
}
