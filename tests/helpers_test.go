package tests_test

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"

	"github.com/farcloser/tactus/internal/audiotest"
)

const fixtureRate = 44100

// clickWAV writes a stereo 16-bit click track at bpm and returns its path.
func clickWAV(data test.Data, helpers test.Helpers, name string, bpm, seconds float64) string {
	path := data.Temp().Path(name)

	if err := audiotest.WriteWAV(path, audiotest.ClickTrack(bpm, seconds, fixtureRate), fixtureRate, 16, 2); err != nil {
		helpers.T().Log(fmt.Sprintf("writing fixture %s: %v", path, err))
		helpers.T().FailNow()
	}

	return path
}

// clickPCM writes a mono s16le click track at bpm and returns its path.
func clickPCM(data test.Data, bpm, seconds float64) string {
	samples := audiotest.ClickTrack(bpm, seconds, fixtureRate)
	raw := make([]byte, 2*len(samples))

	for i, sample := range samples {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(int16(math.Round(sample*math.MaxInt16))))
	}

	return data.Temp().Save(string(raw), "clicks.pcm")
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectBPM returns a comparator verifying the reported global tempo.
func expectBPM(bpm string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		for line := range strings.SplitSeq(stdout, "\n") {
			if strings.TrimSpace(line) == "bpm: "+bpm {
				return
			}
		}

		testing.Log(fmt.Sprintf("expected a global tempo of %s BPM in output:\n%s", bpm, stdout))
		testing.Fail()
	}
}
