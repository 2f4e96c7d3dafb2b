package features

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/tactus/internal/dsp"
)

const (
	// priorSpread is the standard deviation, in octaves, of the log-normal tempo prior.
	priorSpread = 1.0
	// localScoreWidth sharpens the Gaussian smoothing of the envelope relative to the beat period.
	localScoreWidth = 32.0
	// firstBeatRatio is the fraction of the strongest local score a frame must reach to start the beat chain.
	firstBeatRatio = 0.01
	// defaultStartBPM centres the tempo prior when the caller does not provide a guess.
	defaultStartBPM = 120.0
)

// BeatTrack runs a dynamic programming beat tracker over an onset envelope.
// The tempo is picked from the mean tempogram under a log-normal prior centred on startBPM. Beats are then placed
// to maximize onset strength minus a penalty, scaled by tightness, on deviations from that period.
// A silent envelope yields a zero tempo and no beats.
func (d Default) BeatTrack(
	envelope []float64,
	sampleRate, hopLength int,
	startBPM, tightness float64,
) (float64, []int, error) {
	if sampleRate <= 0 || hopLength <= 0 {
		return 0, nil, ErrInvalidGeometry
	}

	if len(envelope) == 0 || floats.Max(envelope) <= 0 {
		return 0, []int{}, nil
	}

	bpm, err := d.estimateTempo(envelope, sampleRate, hopLength, startBPM)
	if err != nil {
		return 0, nil, err
	}

	framesPerSecond := float64(sampleRate) / float64(hopLength)
	period := max(int(math.RoundToEven(60*framesPerSecond/bpm)), 2)

	localScore := beatLocalScore(envelope, period)
	cumScore, backlink := beatDP(localScore, period, tightness)

	beats := backtrack(cumScore, backlink)

	return bpm, trimBeats(localScore, beats), nil
}

// estimateTempo returns the tempogram bin maximizing the mean tempogram under the tempo prior.
func (d Default) estimateTempo(envelope []float64, sampleRate, hopLength int, startBPM float64) (float64, error) {
	d = d.withDefaults()

	tempogram, err := d.Tempogram(envelope, sampleRate, hopLength)
	if err != nil {
		return 0, err
	}

	if startBPM <= 0 {
		startBPM = defaultStartBPM
	}

	best := math.Inf(-1)
	bestBPM := startBPM

	for row := 1; row < len(tempogram.Bins); row++ {
		bpm := tempogram.Bins[row]
		if bpm > d.MaxTempo {
			continue
		}

		deviation := (math.Log2(bpm) - math.Log2(startBPM)) / priorSpread
		score := math.Log1p(1e6*stat.Mean(tempogram.Data[row], nil)) - 0.5*deviation*deviation

		if score > best {
			best = score
			bestBPM = bpm
		}
	}

	return bestBPM, nil
}

// beatLocalScore normalizes the envelope by its standard deviation and smooths it with a Gaussian a fraction of a
// period wide.
func beatLocalScore(envelope []float64, period int) []float64 {
	normalized := make([]float64, len(envelope))
	copy(normalized, envelope)

	if std := stat.StdDev(envelope, nil); std > 0 && !math.IsNaN(std) {
		floats.Scale(1/std, normalized)
	}

	return dsp.ConvolveSame(normalized, dsp.Gaussian(period, localScoreWidth))
}

// beatDP accumulates, for every frame, the best score of a beat chain ending there.
// The predecessor is searched between two periods and half a period back.
func beatDP(localScore []float64, period int, tightness float64) ([]float64, []int) {
	from := -2 * period
	to := min(-int(math.RoundToEven(float64(period)/2)), -1)

	offsets := make([]int, 0, to-from+1)
	weights := make([]float64, 0, to-from+1)

	for offset := from; offset <= to; offset++ {
		deviation := math.Log(-float64(offset) / float64(period))
		offsets = append(offsets, offset)
		weights = append(weights, -tightness*deviation*deviation)
	}

	cumScore := make([]float64, len(localScore))
	backlink := make([]int, len(localScore))
	threshold := firstBeatRatio * floats.Max(localScore)
	first := true

	for i, score := range localScore {
		bestIdx := 0
		best := math.Inf(-1)

		for j, offset := range offsets {
			candidate := weights[j]
			if pos := i + offset; pos >= 0 {
				candidate += cumScore[pos]
			}

			if candidate > best {
				best = candidate
				bestIdx = j
			}
		}

		cumScore[i] = score + best

		if first && score < threshold {
			backlink[i] = -1

			continue
		}

		backlink[i] = i + offsets[bestIdx]
		first = false
	}

	return cumScore, backlink
}

// backtrack follows the backlinks from the last cumulative score peak standing above half the median peak.
func backtrack(cumScore []float64, backlink []int) []int {
	maxima := dsp.LocalMaxima(cumScore)

	peaks := make([]float64, 0)

	for i, isMax := range maxima {
		if isMax {
			peaks = append(peaks, cumScore[i])
		}
	}

	if len(peaks) == 0 {
		return []int{}
	}

	median := dsp.Median(peaks)
	tail := -1

	for i, isMax := range maxima {
		var value float64
		if isMax {
			value = 2 * cumScore[i]
		}

		if value > median {
			tail = i
		}
	}

	if tail < 0 {
		return []int{}
	}

	beats := []int{tail}
	for beat := tail; backlink[beat] >= 0; beat = backlink[beat] {
		beats = append(beats, backlink[beat])
	}

	slices.Reverse(beats)

	return beats
}

// trimBeats drops leading and trailing beats whose local score is below half the RMS of the smoothed beat scores.
func trimBeats(localScore []float64, beats []int) []int {
	if len(beats) == 0 {
		return beats
	}

	scores := make([]float64, len(beats))
	for i, beat := range beats {
		scores[i] = localScore[beat]
	}

	smoothed := dsp.ConvolveSame(scores, dsp.Hann(5))
	threshold := 0.5 * math.Sqrt(stat.Mean(floats.MulTo(make([]float64, len(smoothed)), smoothed, smoothed), nil))

	start := 0
	for start < len(beats) && localScore[beats[start]] <= threshold {
		start++
	}

	end := len(beats)
	for end > start && localScore[beats[end-1]] <= threshold {
		end--
	}

	return beats[start:end]
}
