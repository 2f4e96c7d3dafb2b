package ffprobe

import "time"

const (
	name = "ffprobe"
	// Slow hard-drives spinning up or network retrieved resources may cause timeouts if too aggressive.
	timeout = 60 * time.Second
	// EnvPath points at an ffprobe binary, taking precedence over the bundled and PATH ones.
	EnvPath = "FFPROBE_PATH"
)
