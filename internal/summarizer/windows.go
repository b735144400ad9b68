package summarizer

import (
	"strings"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// partitionWindows splits text into consecutive windows of at most
// windowRunes runes each. Splits prefer the last paragraph break in the
// window, then the last sentence end, then a hard cut, so windows end on
// natural boundaries when the text allows it. Deterministic for a given
// input.
func partitionWindows(text string, windowRunes int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= windowRunes {
		return []string{text}
	}

	var windows []string
	for len(runes) > 0 {
		if len(runes) <= windowRunes {
			windows = append(windows, string(runes))
			break
		}
		cut := splitPoint(runes[:windowRunes])
		windows = append(windows, string(runes[:cut]))
		runes = runes[cut:]
	}
	return windows
}

// splitPoint finds where to cut a full window: after the last paragraph
// break, else after the last sentence-ending punctuation in the second
// half, else at the window's end.
func splitPoint(window []rune) int {
	s := string(window)
	if i := strings.LastIndex(s, "\n\n"); i > 0 {
		return len([]rune(s[:i+2]))
	}
	half := len(window) / 2
	for i := len(window) - 1; i >= half; i-- {
		switch window[i] {
		case '.', '!', '?', '\n':
			return i + 1
		}
	}
	return len(window)
}

// carryTail returns up to n runes from the end of the previous window,
// starting at a whitespace boundary where possible.
func carryTail(prev string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(prev)
	if len(runes) <= n {
		return prev
	}
	tail := runes[len(runes)-n:]
	for i, r := range tail {
		if r == ' ' || r == '\n' {
			return strings.TrimSpace(string(tail[i:]))
		}
	}
	return string(tail)
}

// batchFragments groups consecutive fragments so each batch's combined
// text stays within budgetRunes. A fragment that alone exceeds the budget
// still gets its own batch; the caller detects lack of progress.
func batchFragments(frags []domain.SummaryFragment, budgetRunes int) [][]domain.SummaryFragment {
	var batches [][]domain.SummaryFragment
	var current []domain.SummaryFragment
	size := 0

	for _, f := range frags {
		n := len([]rune(f.Text))
		if len(current) > 0 && size+n > budgetRunes {
			batches = append(batches, current)
			current = nil
			size = 0
		}
		current = append(current, f)
		size += n
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

func totalRunes(frags []domain.SummaryFragment) int {
	n := 0
	for _, f := range frags {
		n += len([]rune(f.Text))
	}
	return n
}
