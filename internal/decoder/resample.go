package decoder

// Resample converts samples from one rate to another with Catmull-Rom cubic interpolation.
// Edges repeat the first and last samples.
func Resample(samples []float64, fromRate, toRate int) []float64 {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 || len(samples) == 0 {
		return samples
	}

	ratio := float64(fromRate) / float64(toRate)
	out := make([]float64, int(float64(len(samples))*float64(toRate)/float64(fromRate)))

	at := func(i int) float64 {
		return samples[max(0, min(i, len(samples)-1))]
	}

	for i := range out {
		position := float64(i) * ratio
		index := int(position)
		fraction := position - float64(index)

		out[i] = cubicInterpolate(at(index-1), at(index), at(index+1), at(index+2), fraction)
	}

	return out
}

func cubicInterpolate(y0, y1, y2, y3, x float64) float64 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}
