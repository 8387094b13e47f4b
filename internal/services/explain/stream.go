// Package explain consumes the frame stream produced by an Explainer and
// incrementally assembles the explanation text.
package explain

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/ternarybob/pricewatch/internal/models"
)

const (
	// dataPrefix marks a content-bearing frame.
	dataPrefix = "data: "
	// doneMarker is the terminal frame payload.
	doneMarker = "[DONE]"
)

// framePayload is the JSON body of a data frame. Exactly one of the fields
// is expected to be set.
type framePayload struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Session consumes one explanation stream. Frames are newline-delimited;
// the reader buffers partial lines across reads, so a frame split between
// two transport chunks is reassembled before parsing. Malformed frames are
// skipped. The session always reaches a terminal status: done on the
// [DONE] marker, errored on an error frame or a transport failure.
type Session struct {
	productID string
	transport io.ReadCloser

	mu        sync.Mutex
	fragments []string
	status    models.ExplanationStatus
	errMsg    string
	cancelled bool
}

// NewSession wraps a frame transport for consumption. The caller drives it
// with Consume and may Cancel at any time.
func NewSession(productID string, transport io.ReadCloser) *Session {
	return &Session{
		productID: productID,
		transport: transport,
		status:    models.ExplanationPending,
	}
}

// Consume reads frames until a terminal frame, transport EOF, or
// cancellation, invoking onFragment (if non-nil) after each applied
// fragment with the accumulated text so far. It returns the terminal
// session state.
func (s *Session) Consume(onFragment func(total string)) *models.ExplanationSession {
	s.setStatus(models.ExplanationStreaming)

	scanner := bufio.NewScanner(s.transport)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if s.isCancelled() {
			break
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if !strings.HasPrefix(line, dataPrefix) {
			// Blank separators and unknown frame types are not fatal
			continue
		}

		data := line[len(dataPrefix):]
		if data == doneMarker {
			s.setStatus(models.ExplanationDone)
			return s.Snapshot()
		}

		var payload framePayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			// Malformed frame, skip
			continue
		}

		if payload.Error != "" {
			s.fail(payload.Error)
			return s.Snapshot()
		}

		if payload.Content != "" {
			total := s.append(payload.Content)
			if onFragment != nil {
				onFragment(total)
			}
		}
	}

	if s.isCancelled() {
		s.fail("explanation cancelled")
		return s.Snapshot()
	}

	if err := scanner.Err(); err != nil {
		s.fail(err.Error())
		return s.Snapshot()
	}

	// EOF without a terminal frame: the stream ended early but the consumer
	// must not be left hanging in a non-terminal state.
	s.fail("explanation stream ended unexpectedly")
	return s.Snapshot()
}

// Cancel disposes of the session. The transport is closed and no further
// fragments are applied.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
	s.transport.Close()
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() *models.ExplanationSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	fragments := make([]string, len(s.fragments))
	copy(fragments, s.fragments)

	return &models.ExplanationSession{
		ProductID: s.productID,
		Fragments: fragments,
		Status:    s.status,
		Error:     s.errMsg,
	}
}

func (s *Session) append(fragment string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments = append(s.fragments, fragment)

	var b strings.Builder
	for _, f := range s.fragments {
		b.WriteString(f)
	}
	return b.String()
}

func (s *Session) setStatus(status models.ExplanationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.ExplanationDone && s.status != models.ExplanationErrored {
		s.status = status
	}
}

func (s *Session) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == models.ExplanationDone || s.status == models.ExplanationErrored {
		return
	}
	s.status = models.ExplanationErrored
	s.errMsg = msg
}

func (s *Session) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}
