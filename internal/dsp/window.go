package dsp

import (
	"math"

	"github.com/mjibson/go-dsp/window"
)

// Hann returns a symmetric Hann window of the given size.
func Hann(size int) []float64 {
	if size <= 0 {
		return []float64{}
	}

	return window.Hann(size)
}

// PeriodicHann returns a periodic Hann window (the DFT-even variant used for spectral analysis).
func PeriodicHann(size int) []float64 {
	if size <= 0 {
		return []float64{}
	}

	return window.Hann(size + 1)[:size]
}

// Gaussian returns a Gaussian kernel of the given half width, exp(-0.5 * (k * scale / halfWidth)^2)
// for k in [-halfWidth, halfWidth].
func Gaussian(halfWidth int, scale float64) []float64 {
	if halfWidth <= 0 {
		return []float64{1}
	}

	kernel := make([]float64, 2*halfWidth+1)
	for i := range kernel {
		x := float64(i-halfWidth) * scale / float64(halfWidth)
		kernel[i] = gaussian(x)
	}

	return kernel
}

// ConvolveSame convolves signal with kernel and returns the centred part, the same length as signal.
func ConvolveSame(signal, kernel []float64) []float64 {
	out := make([]float64, len(signal))
	if len(kernel) == 0 {
		return out
	}

	half := (len(kernel) - 1) / 2

	for i := range signal {
		var sum float64

		for k, w := range kernel {
			j := i + half - k
			if j < 0 || j >= len(signal) {
				continue
			}

			sum += signal[j] * w
		}

		out[i] = sum
	}

	return out
}

func gaussian(x float64) float64 {
	return math.Exp(-0.5 * x * x)
}
