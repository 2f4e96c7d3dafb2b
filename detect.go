package tactus

import (
	"context"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/tactus/internal/tempo"
)

/*
Usage:

result, err := tactus.Detect(ctx, "track.flac", tactus.DefaultOptions())
fmt.Printf("%.1f BPM\n", result.BPM)

// Tempo changes
for _, seg := range result.Segments {
    fmt.Printf("%6.1fs - %6.1fs: %.2f BPM\n", seg.Start, seg.End, seg.BPM)
}

// Whole file, raw values, narrower range
opts := tactus.DefaultOptions()
opts.Duration = 0
opts.NoSnap = true
opts.MinBPM, opts.MaxBPM = 80, 160
result, err := tactus.Detect(ctx, "track.flac", opts)

// Samples already in memory
result, err := tactus.DetectSamples(samples, 44100, tactus.DefaultOptions())

*/

// Detect decodes path and estimates its global tempo and tempo segments.
func Detect(ctx context.Context, path string, opts Options) (*Result, error) {
	applyDefaults(&opts)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}

	opts.progress(10, StageDecoding)

	decoded, err := opts.Decoder.Decode(ctx, path, opts.SampleRate, opts.Start, opts.Duration)
	if err != nil {
		return nil, err //nolint:wrapcheck // decoder errors already wrap ErrDecode
	}

	return detectSamples(decoded.Samples, decoded.SampleRate, opts)
}

// DetectSamples estimates the global tempo and tempo segments of a mono signal.
func DetectSamples(samples []float64, sampleRate int, opts Options) (*Result, error) {
	applyDefaults(&opts)

	return detectSamples(samples, sampleRate, opts)
}

// detectSamples runs the pipeline on options already through applyDefaults.
func detectSamples(samples []float64, sampleRate int, opts Options) (*Result, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}

	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	bounds := opts.bounds()
	if bounds.HasMin() && bounds.HasMax() && bounds.Min >= bounds.Max {
		return nil, ErrInvalidBPMRange
	}

	hop := opts.HopLength
	duration := float64(len(samples)) / float64(sampleRate)
	extractor := opts.Extractor

	opts.progress(30, StageExtracting)

	envelope, err := extractor.OnsetStrength(samples, sampleRate, hop)
	if err != nil {
		return nil, fmt.Errorf("onset strength: %w", err)
	}

	if len(envelope) == 0 {
		return nil, ErrEmptyEnvelope
	}

	if floats.Max(envelope) <= 0 {
		return nil, ErrSilentAudio
	}

	opts.progress(60, StageScanning)

	acBPM, err := tempo.EstimateGlobal(envelope, sampleRate, hop, bounds, opts.Tuning)
	if err != nil {
		return nil, err //nolint:wrapcheck // sentinel from the tempo package
	}

	var segments []Segment

	if !opts.SingleSegment {
		tempogram, tgErr := extractor.Tempogram(envelope, sampleRate, hop)
		if tgErr != nil {
			return nil, fmt.Errorf("tempogram: %w", tgErr)
		}

		segments, err = tempo.BuildTempoCurveSegments(
			tempogram,
			envelope,
			bounds,
			opts.ChangeThreshold,
			opts.MinSegmentDuration,
			float64(hop)/float64(sampleRate),
			opts.Tuning,
		)
		if err != nil {
			return nil, err //nolint:wrapcheck // sentinel from the tempo package
		}
	}

	opts.progress(85, StageRefining)

	trackerBPM, beatFrames, err := extractor.BeatTrack(envelope, sampleRate, hop, acBPM, opts.Tightness)
	if err != nil {
		return nil, fmt.Errorf("beat tracking: %w", err)
	}

	beatTimes := extractor.FramesToTime(beatFrames, sampleRate, hop)
	beatBPM, hasBeats := tempo.RefineWithBeats(beatTimes, bounds, trackerBPM)
	fused := tempo.Fuse(acBPM, beatBPM, hasBeats, opts.Tuning)

	if opts.SingleSegment {
		segments = []Segment{{Start: 0, End: duration, BPM: fused}}
	}

	segments = tempo.RefineSegments(segments, beatTimes, bounds)
	segments = tempo.MergeSimilar(segments, opts.MergeTolerance)
	segments = tempo.ClampEnd(segments, duration)

	bpm := fused

	if !opts.NoSnap {
		bpm = tempo.SnapGlobal(bpm, opts.SnapStep, opts.SnapTolerance, opts.Tuning)

		for i := range segments {
			segments[i].BPM = tempo.Snap(segments[i].BPM, opts.SnapStep, opts.SnapTolerance, opts.Tuning)
		}
	}

	if math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return nil, ErrNonFiniteResult
	}

	opts.progress(100, StageDone)

	return &Result{
		BPM:        bpm,
		SampleRate: sampleRate,
		Duration:   duration,
		Segments:   segments,
		Estimates: Estimates{
			Autocorrelation: acBPM,
			Tracker:         trackerBPM,
			Beats:           beatBPM,
			HasBeats:        hasBeats,
			BeatCount:       len(beatTimes),
			Fused:           fused,
		},
	}, nil
}
