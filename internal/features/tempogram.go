package features

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/farcloser/tactus/internal/dsp"
	"github.com/farcloser/tactus/internal/tempo"
	"github.com/farcloser/tactus/internal/types"
)

// Tempogram computes an autocorrelation tempogram.
// The envelope is padded with linear ramps down to zero, and every frame gets the autocorrelation of the
// Hann-windowed TempogramWindow frames centred on it, normalized by its largest value.
// Row r holds lag r, whose tempo is Bins[r]; Bins[0] is +Inf.
func (d Default) Tempogram(envelope []float64, sampleRate, hopLength int) (types.Tempogram, error) {
	if len(envelope) == 0 {
		return types.Tempogram{}, ErrNoSamples
	}

	if sampleRate <= 0 || hopLength <= 0 {
		return types.Tempogram{}, ErrInvalidGeometry
	}

	d = d.withDefaults()
	size := d.TempogramWindow
	frames := len(envelope)

	padded := rampPad(envelope, size/2)
	win := dsp.PeriodicHann(size)

	fftSize := 1
	for fftSize < 2*size-1 {
		fftSize <<= 1
	}

	fft := fourier.NewFFT(fftSize)
	segment := make([]float64, fftSize)
	coeffs := make([]complex128, fftSize/2+1)
	lags := make([]float64, fftSize)

	data := make([][]float64, size)
	for row := range data {
		data[row] = make([]float64, frames)
	}

	for frame := range frames {
		clear(segment)

		for i := range size {
			segment[i] = padded[frame+i] * win[i]
		}

		coeffs = fft.Coefficients(coeffs, segment)
		for i, c := range coeffs {
			coeffs[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
		}

		lags = fft.Sequence(lags, coeffs)

		var norm float64
		for lag := range size {
			norm = math.Max(norm, math.Abs(lags[lag]))
		}

		if norm < math.SmallestNonzeroFloat64 {
			norm = 1
		}

		for lag := range size {
			data[lag][frame] = lags[lag] / norm
		}
	}

	return types.Tempogram{Data: data, Bins: Frequencies(size, sampleRate, hopLength)}, nil
}

// Frequencies returns the tempo of every tempogram lag, +Inf for lag 0.
func Frequencies(size, sampleRate, hopLength int) []float64 {
	bins := make([]float64, size)
	if size == 0 {
		return bins
	}

	bins[0] = types.InfiniteBin
	for lag := 1; lag < size; lag++ {
		bins[lag] = tempo.LagToBPM(float64(lag), sampleRate, hopLength)
	}

	return bins
}

// rampPad pads values on both sides with width samples ramping linearly from zero to the edge values.
func rampPad(values []float64, width int) []float64 {
	padded := make([]float64, len(values)+2*width)
	copy(padded[width:], values)

	first, last := values[0], values[len(values)-1]

	for i := range width {
		ramp := float64(i) / float64(width)
		padded[i] = first * ramp
		padded[len(padded)-1-i] = last * ramp
	}

	return padded
}
