package tempo_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/farcloser/tactus/internal/tempo"
	"github.com/farcloser/tactus/internal/types"
)

func TestMergeSimilar(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description string
		input       []types.Segment
		expected    []types.Segment
	}{
		{description: "empty", input: nil, expected: []types.Segment{}},
		{
			description: "within tolerance",
			input: []types.Segment{
				{Start: 0, End: 10, BPM: 120},
				{Start: 10, End: 30, BPM: 120.75},
			},
			expected: []types.Segment{{Start: 0, End: 30, BPM: 120.5}},
		},
		{
			description: "beyond tolerance",
			input: []types.Segment{
				{Start: 0, End: 10, BPM: 120},
				{Start: 10, End: 20, BPM: 121},
			},
			expected: []types.Segment{
				{Start: 0, End: 10, BPM: 120},
				{Start: 10, End: 20, BPM: 121},
			},
		},
		{
			description: "compares against the running merge",
			input: []types.Segment{
				{Start: 0, End: 10, BPM: 120},
				{Start: 10, End: 20, BPM: 120.7},
				{Start: 20, End: 30, BPM: 121},
			},
			expected: []types.Segment{{Start: 0, End: 30, BPM: (120 + 120.7 + 121) / 3}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Parallel()

			merged := tempo.MergeSimilar(tc.input, tempo.DefaultMergeTolerance)
			if len(merged) != len(tc.expected) {
				t.Fatalf("expected %+v, got %+v", tc.expected, merged)
			}

			for i, seg := range merged {
				want := tc.expected[i]
				if seg.Start != want.Start || seg.End != want.End || math.Abs(seg.BPM-want.BPM) > 1e-9 {
					t.Fatalf("segment %d: expected %+v, got %+v", i, want, seg)
				}
			}
		})
	}
}

func TestMergeSimilarNeverGrows(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 5)) //nolint:gosec // deterministic test data

	for range 500 {
		count := rng.IntN(20)
		input := make([]types.Segment, count)
		cursor := 0.0

		for i := range input {
			length := 1 + rng.Float64()*20
			input[i] = types.Segment{Start: cursor, End: cursor + length, BPM: 100 + rng.Float64()*4}
			cursor += length
		}

		original := make([]types.Segment, count)
		copy(original, input)

		merged := tempo.MergeSimilar(input, 0.75)
		if len(merged) > count {
			t.Fatalf("merge grew %d segments into %d", count, len(merged))
		}

		for i := range input {
			if input[i] != original[i] {
				t.Fatal("input segments were modified")
			}
		}

		if count > 0 && (merged[0].Start != 0 || merged[len(merged)-1].End != cursor) {
			t.Fatalf("coverage changed: %+v", merged)
		}
	}
}

func TestClampEnd(t *testing.T) {
	t.Parallel()

	segments := []types.Segment{
		{Start: 0, End: 30, BPM: 120},
		{Start: 30, End: 60.5, BPM: 90},
		{Start: 60.5, End: 61, BPM: 95},
	}

	clamped := tempo.ClampEnd(segments, 59.25)
	if len(clamped) != 2 {
		t.Fatalf("expected the empty tail to be dropped, got %+v", clamped)
	}

	if clamped[1].End != 59.25 {
		t.Fatalf("expected end at 59.25, got %v", clamped[1].End)
	}

	if segments[1].End != 60.5 {
		t.Fatal("input segments were modified")
	}

	extended := tempo.ClampEnd(segments[:1], 31)
	if extended[0].End != 31 {
		t.Fatalf("expected end extended to 31, got %v", extended[0].End)
	}
}
