package features

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/tactus/internal/dsp"
)

// amin keeps the logarithm finite on silent bins.
const amin = 1e-10

// OnsetStrength computes a spectral flux envelope: the STFT power is converted to dB relative to the loudest bin
// (floored TopDB below it), and each frame gets the mean positive increase over the previous frame across the bins
// up to MaxFrequency. Frame t is centred on sample t*hopLength; the first frame is always 0.
func (d Default) OnsetStrength(samples []float64, sampleRate, hopLength int) ([]float64, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	if sampleRate <= 0 || hopLength <= 0 {
		return nil, ErrInvalidGeometry
	}

	d = d.withDefaults()

	stft := dsp.NewSTFT(d.FFTSize, hopLength)
	bins := min(stft.Bins(), int(d.MaxFrequency*float64(d.FFTSize)/float64(sampleRate))+1)

	// First pass for the reference power.
	var peak float64

	stft.Each(samples, func(_ int, power []float64) {
		peak = math.Max(peak, floats.Max(power[:bins]))
	})

	ref := 10 * math.Log10(math.Max(peak, amin))

	envelope := make([]float64, stft.Frames(len(samples)))
	prev := make([]float64, bins)
	cur := make([]float64, bins)

	stft.Each(samples, func(frame int, power []float64) {
		for i := range bins {
			cur[i] = math.Max(10*math.Log10(math.Max(power[i], amin))-ref, -d.TopDB)
		}

		if frame > 0 {
			var flux float64

			for i := range bins {
				flux += math.Max(cur[i]-prev[i], 0)
			}

			envelope[frame] = flux / float64(bins)
		}

		prev, cur = cur, prev
	})

	return envelope, nil
}
