package binary

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// bundleDirs are searched, in order, under the directory of the running executable.
//
//nolint:gochecknoglobals // effectively const
var bundleDirs = []string{"", "bin", "ffmpeg", "tools"}

// Available checks if a binary is available in the system PATH.
func Available(binName string) (string, bool) {
	path, err := exec.LookPath(binName)

	return path, err == nil
}

// Locate finds a binary by looking, in order, at the given environment variables, at the directories bundled next
// to the running executable, then at the system PATH.
func Locate(binName string, envVars ...string) (string, bool) {
	for _, envVar := range envVars {
		if candidate := os.Getenv(envVar); candidate != "" && isFile(candidate) {
			return candidate, true
		}
	}

	if exe, err := os.Executable(); err == nil {
		fileName := binName
		if runtime.GOOS == "windows" {
			fileName += ".exe"
		}

		base := filepath.Dir(exe)
		for _, dir := range bundleDirs {
			if candidate := filepath.Join(base, dir, fileName); isFile(candidate) {
				return candidate, true
			}
		}
	}

	return Available(binName)
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
