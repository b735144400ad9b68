package summarizer

import (
	"strings"
	"testing"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

func TestPartitionWindowsCoversInput(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		windowRunes int
		wantMin     int
	}{
		{"fits one window", "short transcript", 100, 1},
		{"splits on paragraphs", strings.Repeat("The member rose to speak.\n\n", 50), 200, 2},
		{"hard text no breaks", strings.Repeat("x", 1000), 100, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := partitionWindows(tt.text, tt.windowRunes)
			if len(windows) < tt.wantMin {
				t.Fatalf("len = %d, want >= %d", len(windows), tt.wantMin)
			}
			for i, w := range windows {
				if len([]rune(w)) > tt.windowRunes {
					t.Errorf("window %d has %d runes, budget %d", i, len([]rune(w)), tt.windowRunes)
				}
				if w == "" {
					t.Errorf("window %d is empty", i)
				}
			}
			// Concatenation must reproduce the input exactly; nothing is
			// dropped or duplicated at the seams.
			if got := strings.Join(windows, ""); got != tt.text {
				t.Errorf("windows do not reassemble the input")
			}
		})
	}
}

func TestPartitionWindowsDeterministic(t *testing.T) {
	text := strings.Repeat("One sentence here. Another one there. ", 100)
	a := partitionWindows(text, 300)
	b := partitionWindows(text, 300)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("window %d differs between runs", i)
		}
	}
}

func TestCarryTail(t *testing.T) {
	tests := []struct {
		name string
		prev string
		n    int
		want string
	}{
		{"short returned whole", "brief", 100, "brief"},
		{"zero carry", "anything", 0, ""},
		{"cuts at word boundary", "the assembly adopted the motion unanimously", 20, "motion unanimously"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := carryTail(tt.prev, tt.n); got != tt.want {
				t.Errorf("carryTail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBatchFragments(t *testing.T) {
	frag := func(i, runes int) domain.SummaryFragment {
		return domain.SummaryFragment{Index: i, Text: strings.Repeat("a", runes)}
	}

	frags := []domain.SummaryFragment{frag(0, 40), frag(1, 40), frag(2, 40), frag(3, 40)}
	batches := batchFragments(frags, 100)

	if len(batches) != 2 {
		t.Fatalf("len = %d, want 2", len(batches))
	}
	if len(batches[0]) != 2 || len(batches[1]) != 2 {
		t.Errorf("batch sizes = %d, %d; want 2, 2", len(batches[0]), len(batches[1]))
	}

	// An oversized fragment still lands in a batch of its own.
	batches = batchFragments([]domain.SummaryFragment{frag(0, 500)}, 100)
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Fatalf("oversized fragment batches = %v", batches)
	}
}
