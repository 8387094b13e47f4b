package interfaces

import (
	"context"
	"io"
)

// Explainer streams a natural-language strategy brief for a given prompt.
// The returned stream carries newline-delimited frames in the format parsed
// by the explain package: "data: {\"content\":...}" fragments, a terminal
// "data: [DONE]" marker, or "data: {\"error\":...}" on failure. Closing the
// reader cancels the underlying request mid-stream.
type Explainer interface {
	Stream(ctx context.Context, prompt string) (io.ReadCloser, error)
}
