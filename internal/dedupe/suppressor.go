// Package dedupe filters the echo submissions that composing input methods
// emit right after the real one.
package dedupe

import (
	"strings"
	"sync"
	"time"

	"github.com/johndosdos/murmur/internal/session"
)

const (
	// Window is how long a submission can suppress its successors.
	Window = 600 * time.Millisecond
	// FragmentLen is the longest trailing fragment treated as an echo.
	FragmentLen = 2
)

type submission struct {
	text string
	at   time.Time
}

// Suppressor remembers the last accepted submission of every connection.
type Suppressor struct {
	mu   sync.Mutex
	last map[session.ConnID]submission
}

// NewSuppressor returns an empty Suppressor.
func NewSuppressor() *Suppressor {
	return &Suppressor{
		last: make(map[session.ConnID]submission),
	}
}

// ShouldAccept reports whether text from conn at now is a new message.
// now should carry a monotonic reading (time.Now does). A rejected
// submission leaves the stored record untouched.
func (s *Suppressor) ShouldAccept(conn session.ConnID, text string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.last[conn]; ok && now.Sub(prev.at) < Window {
		if text == prev.text || isTrailingFragment(prev.text, text) {
			return false
		}
	}

	s.last[conn] = submission{text: text, at: now}
	return true
}

// Forget drops the record for conn.
func (s *Suppressor) Forget(conn session.ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.last, conn)
}

// isTrailingFragment counts length in characters, not bytes, so a single
// composed Hangul syllable counts as one.
func isTrailingFragment(prev, text string) bool {
	return len([]rune(text)) <= FragmentLen && strings.HasSuffix(prev, text)
}
