package models

import (
	"strings"
)

// ExplanationStatus is the lifecycle state of a streamed explanation session.
type ExplanationStatus string

const (
	ExplanationPending   ExplanationStatus = "pending"
	ExplanationStreaming ExplanationStatus = "streaming"
	ExplanationDone      ExplanationStatus = "done"
	ExplanationErrored   ExplanationStatus = "errored"
)

// ExplanationSession holds the incrementally assembled AI explanation for a
// single user-initiated request. Sessions are ephemeral.
type ExplanationSession struct {
	ProductID     string            `json:"product_id"`
	PromptContext string            `json:"prompt_context"`
	Fragments     []string          `json:"fragments"`
	Status        ExplanationStatus `json:"status"`
	Error         string            `json:"error,omitempty"`
}

// Text returns the explanation assembled so far.
func (s *ExplanationSession) Text() string {
	var b strings.Builder
	for _, f := range s.Fragments {
		b.WriteString(f)
	}
	return b.String()
}
