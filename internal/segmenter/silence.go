package segmenter

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	silenceStartRe = regexp.MustCompile(`silence_start: ([0-9.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end: ([0-9.]+)`)
)

// detectSilence runs ffmpeg's silencedetect filter over the recording and
// returns the midpoint of every silence interval. ffmpeg reports filter
// output on stderr.
func (s *implSegmenter) detectSilence(ctx context.Context, path string) ([]time.Duration, error) {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", s.cfg.SilenceNoiseDB, s.cfg.SilenceMinSeconds)
	_, stderr, err := s.executor.ExecuteCapture(ctx, s.ffmpeg,
		"-i", path,
		"-af", filter,
		"-f", "null", "-",
	)
	if err != nil {
		return nil, fmt.Errorf("silencedetect: %w", err)
	}
	return parseSilenceMidpoints(stderr), nil
}

func parseSilenceMidpoints(stderr string) []time.Duration {
	starts := silenceStartRe.FindAllStringSubmatch(stderr, -1)
	ends := silenceEndRe.FindAllStringSubmatch(stderr, -1)

	n := len(starts)
	if len(ends) < n {
		n = len(ends)
	}
	out := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		start, err1 := strconv.ParseFloat(starts[i][1], 64)
		end, err2 := strconv.ParseFloat(ends[i][1], 64)
		if err1 != nil || err2 != nil || end < start {
			continue
		}
		mid := (start + end) / 2
		out = append(out, time.Duration(mid*float64(time.Second)))
	}
	return out
}
