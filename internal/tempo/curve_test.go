package tempo_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/farcloser/tactus/internal/tempo"
	"github.com/farcloser/tactus/internal/types"
)

const frameDuration = 0.01

//nolint:gochecknoglobals // test fixture
var testBins = []float64{types.InfiniteBin, 240, 180, 120, 90, 60}

// run describes a stretch of frames dominated by one tempogram row.
type run struct {
	row    int
	frames int
}

func synthTempogram(runs ...run) types.Tempogram {
	total := 0
	for _, r := range runs {
		total += r.frames
	}

	data := make([][]float64, len(testBins))
	for row := range data {
		data[row] = make([]float64, total)
		for frame := range data[row] {
			data[row][frame] = 0.1
		}
	}

	frame := 0

	for _, r := range runs {
		for range r.frames {
			data[r.row][frame] = 1
			frame++
		}
	}

	return types.Tempogram{Data: data, Bins: testBins}
}

func flatEnvelope(frames int, level float64) []float64 {
	envelope := make([]float64, frames)
	for i := range envelope {
		envelope[i] = level
	}

	return envelope
}

func TestBuildTempoCurveSegmentsTwoTempos(t *testing.T) {
	t.Parallel()

	tg := synthTempogram(run{row: 3, frames: 1000}, run{row: 4, frames: 1000})

	segments, err := tempo.BuildTempoCurveSegments(
		tg, flatEnvelope(2000, 1), types.Bounds{}, 3, 6, frameDuration, tempo.Tuning{},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %+v", segments)
	}

	if segments[0].BPM != 120 || segments[1].BPM != 90 {
		t.Fatalf("unexpected tempos: %+v", segments)
	}

	if math.Abs(segments[0].End-10) > 1e-9 || segments[0].End != segments[1].Start {
		t.Fatalf("unexpected boundary: %+v", segments)
	}
}

func TestCurveFillsGatedFrames(t *testing.T) {
	t.Parallel()

	tg := synthTempogram(run{row: 3, frames: 900}, run{row: 2, frames: 200}, run{row: 3, frames: 900})

	envelope := flatEnvelope(2000, 1)
	for i := 900; i < 1100; i++ {
		envelope[i] = 0
	}

	curve, err := tempo.Curve(tg, envelope, types.Bounds{}, tempo.Tuning{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, bpm := range curve {
		if bpm != 120 {
			t.Fatalf("frame %d: expected interpolated 120, got %v", i, bpm)
		}
	}
}

func TestCurveUsesShorterInput(t *testing.T) {
	t.Parallel()

	tg := synthTempogram(run{row: 3, frames: 500})

	curve, err := tempo.Curve(tg, flatEnvelope(300, 1), types.Bounds{}, tempo.Tuning{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(curve) != 300 {
		t.Fatalf("expected 300 frames, got %d", len(curve))
	}
}

func TestCurveRaggedTempogram(t *testing.T) {
	t.Parallel()

	tg := synthTempogram(run{row: 3, frames: 200})
	tg.Data[4] = tg.Data[4][:150]

	curve, err := tempo.Curve(tg, flatEnvelope(200, 1), types.Bounds{}, tempo.Tuning{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(curve) != 150 {
		t.Fatalf("expected the shortest row to bound the frames, got %d", len(curve))
	}

	tg.Data[2] = nil

	if _, err = tempo.Curve(tg, flatEnvelope(200, 1), types.Bounds{}, tempo.Tuning{}); !errors.Is(err, tempo.ErrEmptyEnvelope) {
		t.Fatalf("expected ErrEmptyEnvelope for an empty row, got %v", err)
	}
}

func TestCurveRestrictsToBounds(t *testing.T) {
	t.Parallel()

	// 240 dominates, but is outside the bounds: the next strongest row in range must win.
	tg := synthTempogram(run{row: 1, frames: 100})
	for frame := range 100 {
		tg.Data[4][frame] = 0.5
	}

	curve, err := tempo.Curve(tg, flatEnvelope(100, 1), types.Bounds{Min: 60, Max: 200}, tempo.Tuning{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if curve[0] != 90 {
		t.Fatalf("expected 90 BPM, got %v", curve[0])
	}
}

func TestCurveErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description string
		tempogram   types.Tempogram
		envelope    []float64
		bounds      types.Bounds
		expected    error
	}{
		{
			description: "inverted range",
			tempogram:   synthTempogram(run{row: 3, frames: 10}),
			envelope:    flatEnvelope(10, 1),
			bounds:      types.Bounds{Min: 150, Max: 100},
			expected:    tempo.ErrInvalidBPMRange,
		},
		{
			description: "range without bins",
			tempogram:   synthTempogram(run{row: 3, frames: 10}),
			envelope:    flatEnvelope(10, 1),
			bounds:      types.Bounds{Min: 100, Max: 110},
			expected:    tempo.ErrNarrowBPMRange,
		},
		{
			description: "range with a single bin",
			tempogram:   synthTempogram(run{row: 3, frames: 10}),
			envelope:    flatEnvelope(10, 1),
			bounds:      types.Bounds{Min: 100, Max: 130},
			expected:    tempo.ErrNarrowBPMRange,
		},
		{
			description: "silent envelope",
			tempogram:   synthTempogram(run{row: 3, frames: 10}),
			envelope:    flatEnvelope(10, 0),
			expected:    tempo.ErrSilentAudio,
		},
		{
			description: "empty envelope",
			tempogram:   synthTempogram(run{row: 3, frames: 10}),
			envelope:    nil,
			expected:    tempo.ErrEmptyEnvelope,
		},
		{
			description: "zero-lag bin only",
			tempogram:   types.Tempogram{Data: [][]float64{{1, 1}}, Bins: []float64{types.InfiniteBin}},
			envelope:    flatEnvelope(2, 1),
			expected:    tempo.ErrEmptyEnvelope,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			_, err := tempo.Curve(tc.tempogram, tc.envelope, tc.bounds, tempo.Tuning{})
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func repeatBPM(bpm float64, frames int) []float64 {
	return flatEnvelope(frames, bpm)
}

func TestBuildSegmentsShortSegments(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description string
		curve       []float64
		expected    []types.Segment
	}{
		{
			description: "short intro is absorbed forward",
			curve:       append(repeatBPM(100, 100), repeatBPM(130, 1000)...),
			expected:    []types.Segment{{Start: 0, End: 11, BPM: 1400.0 / 11}},
		},
		{
			description: "short middle is absorbed backward",
			curve:       append(append(repeatBPM(120, 1000), repeatBPM(140, 200)...), repeatBPM(100, 1000)...),
			expected: []types.Segment{
				{Start: 0, End: 12, BPM: 1480.0 / 12},
				{Start: 12, End: 22, BPM: 100},
			},
		},
		{
			description: "small drift stays in one segment",
			curve:       append(repeatBPM(120, 1000), repeatBPM(121, 1000)...),
			expected:    []types.Segment{{Start: 0, End: 20, BPM: 120.5}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			segments := tempo.BuildSegments(tc.curve, frameDuration, 3, 6)
			if len(segments) != len(tc.expected) {
				t.Fatalf("expected %d segments, got %+v", len(tc.expected), segments)
			}

			for i, seg := range segments {
				want := tc.expected[i]
				if math.Abs(seg.Start-want.Start) > 1e-9 ||
					math.Abs(seg.End-want.End) > 1e-9 ||
					math.Abs(seg.BPM-want.BPM) > 1e-9 {
					t.Fatalf("segment %d: expected %+v, got %+v", i, want, seg)
				}
			}
		})
	}
}

func TestBuildSegmentsCoverage(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11)) //nolint:gosec // deterministic test data
	tempos := []float64{90, 100, 100.5, 120, 140}

	for iteration := range 200 {
		var curve []float64

		frames := 50 + rng.IntN(3000)
		for len(curve) < frames {
			curve = append(curve, repeatBPM(tempos[rng.IntN(len(tempos))], 1+rng.IntN(400))...)
		}

		curve = curve[:frames]

		segments := tempo.MergeSimilar(tempo.BuildSegments(curve, 0.02, 3, 6), 0.75)

		if len(segments) == 0 {
			t.Fatalf("iteration %d: no segments", iteration)
		}

		if segments[0].Start != 0 {
			t.Fatalf("iteration %d: first segment starts at %v", iteration, segments[0].Start)
		}

		if end := segments[len(segments)-1].End; end != float64(frames)*0.02 {
			t.Fatalf("iteration %d: last segment ends at %v, expected %v", iteration, end, float64(frames)*0.02)
		}

		for i := 1; i < len(segments); i++ {
			if segments[i].Start != segments[i-1].End {
				t.Fatalf("iteration %d: gap between %+v and %+v", iteration, segments[i-1], segments[i])
			}

			if segments[i].Duration() < 6-1e-9 {
				t.Fatalf("iteration %d: short segment %+v", iteration, segments[i])
			}
		}
	}
}

func TestRefineSegments(t *testing.T) {
	t.Parallel()

	beats := append(steadyBeats(0, 0.5, 21), steadyBeats(10.4, 0.4, 24)...)
	segments := []types.Segment{
		{Start: 0, End: 10, BPM: 118},
		{Start: 10, End: 20, BPM: 148},
		{Start: 20, End: 30, BPM: 97},
	}

	refined := tempo.RefineSegments(segments, beats, types.Bounds{Min: 60, Max: 200})

	expected := []float64{120, 150, 97}
	for i, seg := range refined {
		if math.Abs(seg.BPM-expected[i]) > 1e-6 {
			t.Fatalf("segment %d: expected %v BPM, got %v", i, expected[i], seg.BPM)
		}
	}

	if segments[0].BPM != 118 {
		t.Fatal("input segments were modified")
	}
}
