package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Decoding a long lossless file from a slow disk takes a while.
	timeout = 5 * time.Minute
)

// Environment variables pointing at an ffmpeg binary, in order of precedence.
const (
	EnvPath   = "FFMPEG_PATH"
	EnvBinary = "FFMPEG_BINARY"
)
