// Package audiotest generates synthetic signals and audio files for tests.
package audiotest

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ClickTrack renders decaying 1 kHz bursts, 20 ms long, on every beat of a steady tempo.
func ClickTrack(bpm, seconds float64, sampleRate int) []float64 {
	samples := make([]float64, int(seconds*float64(sampleRate)))
	interval := 60 / bpm * float64(sampleRate)
	burst := sampleRate / 50

	for start := 0.0; int(start) < len(samples); start += interval {
		offset := int(start)

		for i := 0; i < burst && offset+i < len(samples); i++ {
			decay := math.Exp(-4 * float64(i) / float64(burst))
			samples[offset+i] = 0.8 * decay * math.Sin(2*math.Pi*1000*float64(i)/float64(sampleRate))
		}
	}

	return samples
}

// Sine renders a sine wave of the given frequency and amplitude.
func Sine(frequency, amplitude, seconds float64, sampleRate int) []float64 {
	samples := make([]float64, int(seconds*float64(sampleRate)))
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))
	}

	return samples
}

// WriteWAV writes samples in [-1, 1] as a PCM WAV file, duplicated on every channel.
func WriteWAV(path string, samples []float64, sampleRate, bitDepth, channels int) error {
	file, err := os.Create(path) //nolint:gosec // test fixture path
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, bitDepth, channels, 1)
	if err = encoder.Write(intBuffer(samples, sampleRate, bitDepth, channels)); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err = encoder.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}

	return nil
}

// WriteAIFF writes samples in [-1, 1] as an AIFF file, duplicated on every channel.
func WriteAIFF(path string, samples []float64, sampleRate, bitDepth, channels int) error {
	file, err := os.Create(path) //nolint:gosec // test fixture path
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	encoder := aiff.NewEncoder(file, sampleRate, bitDepth, channels)
	if err = encoder.Write(intBuffer(samples, sampleRate, bitDepth, channels)); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err = encoder.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}

	return nil
}

func intBuffer(samples []float64, sampleRate, bitDepth, channels int) *audio.IntBuffer {
	scale := math.Ldexp(1, bitDepth-1) - 1
	data := make([]int, 0, len(samples)*channels)

	for _, sample := range samples {
		value := int(math.Round(math.Max(-1, math.Min(1, sample)) * scale))
		for range channels {
			data = append(data, value)
		}
	}

	return &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}
}
