package subtitle

import (
	"bufio"
	"io"
	"strings"
)

// windowSize bounds the recency set used for duplicate suppression. Streaming
// caption tracks repeat each cue 2-3 times across overlapping timing windows;
// a small window drops that local repetition without suppressing phrases that
// legitimately recur later in the transcript.
const windowSize = 5

var headerPrefixes = []string{"WEBVTT", "Kind:", "Language:", "NOTE"}

// Normalizer converts raw timed-caption payloads into clean transcript text.
type Normalizer struct{}

// NewNormalizer returns a stateless normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize reads a caption-track payload and returns its cue text joined by
// single spaces, with metadata lines removed and near-adjacent duplicate
// lines suppressed. A payload holding only headers and timestamps yields an
// empty string.
func (n *Normalizer) Normalize(r io.Reader) (string, error) {
	var (
		kept   []string
		window = newRecencyWindow(windowSize)
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if skipLine(line) {
			continue
		}
		if window.Seen(line) {
			continue
		}
		window.Add(line)
		kept = append(kept, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	return strings.Join(kept, " "), nil
}

// NormalizeString is Normalize over an in-memory payload.
func (n *Normalizer) NormalizeString(payload string) string {
	out, _ := n.Normalize(strings.NewReader(payload))
	return out
}

func skipLine(line string) bool {
	if line == "" {
		return true
	}
	if strings.Contains(line, "-->") {
		return true
	}
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// recencyWindow tracks the most recently seen distinct lines. Eviction is
// oldest-first; only the bound matters for correctness, not the order.
type recencyWindow struct {
	limit int
	order []string
	seen  map[string]struct{}
}

func newRecencyWindow(limit int) *recencyWindow {
	return &recencyWindow{
		limit: limit,
		seen:  make(map[string]struct{}, limit+1),
	}
}

func (w *recencyWindow) Seen(line string) bool {
	_, ok := w.seen[line]
	return ok
}

func (w *recencyWindow) Add(line string) {
	w.seen[line] = struct{}{}
	w.order = append(w.order, line)
	if len(w.seen) > w.limit {
		oldest := w.order[0]
		w.order = w.order[1:]
		delete(w.seen, oldest)
	}
}
