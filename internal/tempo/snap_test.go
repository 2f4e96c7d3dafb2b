package tempo_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/farcloser/tactus/internal/tempo"
)

func TestSnap(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description string
		bpm         float64
		step        float64
		tolerance   float64
		expected    float64
	}{
		{description: "near integer", bpm: 120.3, step: 1, tolerance: 0.5, expected: 120},
		{description: "rounds up", bpm: 127.6, step: 1, tolerance: 0.5, expected: 128},
		{description: "exact half is kept", bpm: 128.5, step: 1, tolerance: 0.5, expected: 128.5},
		{description: "near half", bpm: 97.45, step: 1, tolerance: 0.3, expected: 97.5},
		{description: "quarter step", bpm: 127.7, step: 0.25, tolerance: 0.1, expected: 127.75},
		{description: "too far from anything", bpm: 127.62, step: 0.25, tolerance: 0.1, expected: 127.62},
		{description: "zero step", bpm: 120.3, step: 0, tolerance: 0.5, expected: 120.3},
		{description: "negative step", bpm: 120.3, step: -1, tolerance: 0.5, expected: 120.3},
		{description: "infinite bpm", bpm: math.Inf(1), step: 1, tolerance: 0.5, expected: math.Inf(1)},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			if got := tempo.Snap(tc.bpm, tc.step, tc.tolerance, tempo.Tuning{}); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestSnapNaN(t *testing.T) {
	t.Parallel()

	if got := tempo.Snap(math.NaN(), 1, 0.5, tempo.Tuning{}); !math.IsNaN(got) {
		t.Fatalf("expected NaN, got %v", got)
	}

	if got := tempo.Snap(120.3, math.NaN(), 0.5, tempo.Tuning{}); got != 120.3 {
		t.Fatalf("expected unchanged value, got %v", got)
	}
}

func TestSnapGlobal(t *testing.T) {
	t.Parallel()

	if got := tempo.Snap(120.4, 1, 0.3, tempo.Tuning{}); got != 120.4 {
		t.Fatalf("expected no segment snap, got %v", got)
	}

	if got := tempo.SnapGlobal(120.4, 1, 0.3, tempo.Tuning{}); got != 120 {
		t.Fatalf("expected 120, got %v", got)
	}

	if got := tempo.SnapGlobal(126.4, 1, 0.1, tempo.Tuning{}); got != 126 {
		t.Fatalf("expected the widened tolerance to apply, got %v", got)
	}
}

func TestSnapIdempotent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(42, 1)) //nolint:gosec // deterministic test data
	steps := []float64{1, 0.5, 0.25, 0.1, 2, 3}
	tolerances := []float64{0, 0.05, 0.1, 0.5, 1.1, 2}

	for range 5000 {
		bpm := 40 + rng.Float64()*210
		step := steps[rng.IntN(len(steps))]
		tolerance := tolerances[rng.IntN(len(tolerances))]

		once := tempo.Snap(bpm, step, tolerance, tempo.Tuning{})
		twice := tempo.Snap(once, step, tolerance, tempo.Tuning{})

		if once != twice {
			t.Fatalf("snap(%v, step %v, tol %v) = %v, snapped again = %v", bpm, step, tolerance, once, twice)
		}
	}
}
