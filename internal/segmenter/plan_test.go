package segmenter

import (
	"testing"
	"time"
)

func TestPlanSpansPartitionsContiguously(t *testing.T) {
	tests := []struct {
		name     string
		total    time.Duration
		maxSeg   time.Duration
		silences []time.Duration
		wantLen  int
	}{
		{"shorter than max", 10 * time.Minute, 15 * time.Minute, nil, 1},
		{"exactly max", 15 * time.Minute, 15 * time.Minute, nil, 1},
		{"fixed cuts", 50 * time.Minute, 15 * time.Minute, nil, 4},
		{"tiny remainder", 45*time.Minute + time.Second, 15 * time.Minute, nil, 4},
		{"with silences", 50 * time.Minute, 15 * time.Minute, []time.Duration{14 * time.Minute, 29 * time.Minute, 44 * time.Minute}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := planSpans(tt.total, tt.maxSeg, time.Minute, tt.silences)
			if len(spans) != tt.wantLen {
				t.Fatalf("len = %d, want %d: %v", len(spans), tt.wantLen, spans)
			}
			if spans[0].Start != 0 {
				t.Errorf("first span starts at %v, want 0", spans[0].Start)
			}
			if spans[len(spans)-1].End != tt.total {
				t.Errorf("last span ends at %v, want %v", spans[len(spans)-1].End, tt.total)
			}
			for i := 1; i < len(spans); i++ {
				if spans[i].Start != spans[i-1].End {
					t.Errorf("gap between span %d and %d: %v != %v", i-1, i, spans[i-1].End, spans[i].Start)
				}
			}
			for i, sp := range spans {
				if sp.End-sp.Start > tt.maxSeg {
					t.Errorf("span %d exceeds max: %v", i, sp.End-sp.Start)
				}
				if sp.End <= sp.Start {
					t.Errorf("span %d is empty or inverted: %+v", i, sp)
				}
			}
		})
	}
}

func TestPlanSpansPrefersSilence(t *testing.T) {
	// Naive boundary at 15m; silence at 14m30s sits inside the 1m window.
	silences := []time.Duration{5 * time.Minute, 14*time.Minute + 30*time.Second, 20 * time.Minute}
	spans := planSpans(40*time.Minute, 15*time.Minute, time.Minute, silences)

	if spans[0].End != 14*time.Minute+30*time.Second {
		t.Errorf("first cut at %v, want 14m30s (nearest silence below boundary)", spans[0].End)
	}
}

func TestPlanSpansIgnoresSilenceOutsideWindow(t *testing.T) {
	// Silence at 10m is more than a minute below the 15m boundary.
	spans := planSpans(40*time.Minute, 15*time.Minute, time.Minute, []time.Duration{10 * time.Minute})

	if spans[0].End != 15*time.Minute {
		t.Errorf("first cut at %v, want the fixed 15m boundary", spans[0].End)
	}
}

func TestPlanSpansDeterministic(t *testing.T) {
	silences := []time.Duration{3 * time.Minute, 14 * time.Minute, 29*time.Minute + 45*time.Second}
	a := planSpans(55*time.Minute, 15*time.Minute, time.Minute, silences)
	// Same silences in a different order must not change the plan.
	b := planSpans(55*time.Minute, 15*time.Minute, time.Minute,
		[]time.Duration{29*time.Minute + 45*time.Second, 3 * time.Minute, 14 * time.Minute})

	if len(a) != len(b) {
		t.Fatalf("plans differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("span %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestParseSilenceMidpoints(t *testing.T) {
	stderr := `
[silencedetect @ 0x1] silence_start: 10.5
[silencedetect @ 0x1] silence_end: 11.5 | silence_duration: 1.0
[silencedetect @ 0x1] silence_start: 100.0
[silencedetect @ 0x1] silence_end: 102.0 | silence_duration: 2.0
`
	got := parseSilenceMidpoints(stderr)
	want := []time.Duration{11 * time.Second, 101 * time.Second}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("midpoint %d = %v, want %v", i, got[i], want[i])
		}
	}
}
