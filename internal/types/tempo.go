package types

import "math"

// Segment is a time range of locally stable tempo. Start and End are in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	BPM   float64 `json:"bpm"`
}

// Duration returns End - Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Bounds restricts the tempo search range. A zero field leaves that side open.
type Bounds struct {
	Min float64
	Max float64
}

// HasMin reports whether a lower bound is set.
func (b Bounds) HasMin() bool {
	return b.Min > 0
}

// HasMax reports whether an upper bound is set.
func (b Bounds) HasMax() bool {
	return b.Max > 0
}

// Low returns the lower bound, or fallback when unset.
func (b Bounds) Low(fallback float64) float64 {
	if b.HasMin() {
		return b.Min
	}

	return fallback
}

// High returns the upper bound, or fallback when unset.
func (b Bounds) High(fallback float64) float64 {
	if b.HasMax() {
		return b.Max
	}

	return fallback
}

// Contains reports whether bpm falls within the bounds (inclusive). Open sides always match.
func (b Bounds) Contains(bpm float64) bool {
	if b.HasMin() && bpm < b.Min {
		return false
	}

	if b.HasMax() && bpm > b.Max {
		return false
	}

	return true
}

// Tempogram is a tempo-bin by frame periodicity matrix.
// Data[bin][frame] is the strength of Bins[bin] BPM at that frame. Bins[0] is +Inf (zero lag).
type Tempogram struct {
	Data [][]float64
	Bins []float64
}

// Frames returns the number of analysis frames (columns).
func (t Tempogram) Frames() int {
	if len(t.Data) == 0 {
		return 0
	}

	return len(t.Data[0])
}

// InfiniteBin is the conventional value of the zero-lag tempo bin.
//
//nolint:gochecknoglobals // effectively const
var InfiniteBin = math.Inf(1)
