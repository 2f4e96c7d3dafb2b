package main

import "github.com/farcloser/tactus/internal/integration/ffprobe"

// Record is a single line in the JSONL report file.
type Record struct {
	File       string         `json:"file,omitempty"`
	Detection  map[string]any `json:"detection,omitempty"`
	Probe      *ffprobe.Info  `json:"probe,omitempty"`
	ProbeError string         `json:"probe_error,omitempty"`
	Error      string         `json:"error,omitempty"`
	Timing     *RecordTiming  `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	ProbeMs  float64 `json:"probe_ms"`
	DetectMs float64 `json:"detect_ms"`
	TotalMs  float64 `json:"total_ms"`
}

// digestRecord holds the typed fields needed by the digest command.
type digestRecord struct {
	File      string           `json:"file,omitempty"`
	Detection *digestDetection `json:"detection,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type digestDetection struct {
	BPM      float64         `json:"bpm"`
	Duration float64         `json:"duration"`
	Segments []digestSegment `json:"segments"`
}

type digestSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	BPM   float64 `json:"bpm"`
}
