// Package llm provides the Claude-backed explainer that streams strategy
// briefs for detected price changes.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pricewatch/internal/common"
	"github.com/ternarybob/pricewatch/internal/interfaces"
)

const systemPrompt = "You are a competitive pricing strategist for e-commerce sellers. " +
	"Provide clear, actionable advice based on the provided data."

// ClaudeExplainer implements the Explainer interface using the Anthropic
// Claude API. Model output is re-framed into the newline-delimited frame
// format the rest of the pipeline consumes, so the HTTP layer can relay
// frames verbatim and the session parser stays backend-agnostic.
type ClaudeExplainer struct {
	config    *common.ClaudeConfig
	logger    arbor.ILogger
	client    anthropic.Client
	timeout   time.Duration
	maxTokens int
}

// NewClaudeExplainer creates a Claude explainer. The API key is resolved
// with environment priority, then KV store, then config fallback.
func NewClaudeExplainer(claudeConfig *common.ClaudeConfig, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (*ClaudeExplainer, error) {
	ctx := context.Background()
	apiKey, err := common.ResolveAPIKey(ctx, kvStorage, "anthropic_api_key", claudeConfig.APIKey)
	if err != nil {
		return nil, fmt.Errorf("Anthropic API key is required for the explainer (set via ANTHROPIC_API_KEY, PRICEWATCH_CLAUDE_API_KEY, or claude.api_key in config): %w", err)
	}

	if claudeConfig.Model == "" {
		claudeConfig.Model = "claude-sonnet-4-20250514"
	}

	timeout, err := time.ParseDuration(claudeConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", claudeConfig.Timeout, err)
	}

	maxTokens := claudeConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	explainer := &ClaudeExplainer{
		config:    claudeConfig,
		logger:    logger,
		client:    client,
		timeout:   timeout,
		maxTokens: maxTokens,
	}

	logger.Debug().
		Str("model", claudeConfig.Model).
		Dur("timeout", timeout).
		Int("max_tokens", maxTokens).
		Msg("Claude explainer initialized")

	return explainer, nil
}

// Stream sends the prompt to Claude and returns a frame stream. Each model
// text delta becomes a content frame; the stream terminates with [DONE] or
// an error frame. Closing the returned reader cancels the API request.
func (e *ClaudeExplainer) Stream(ctx context.Context, prompt string) (io.ReadCloser, error) {
	streamCtx, cancel := context.WithTimeout(ctx, e.timeout)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.config.Model),
		MaxTokens: int64(e.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
	}

	pr, pw := io.Pipe()

	go func() {
		defer cancel()

		stream := e.client.Messages.NewStreaming(streamCtx, params)
		defer stream.Close()

		totalChars := 0
		for stream.Next() {
			event := stream.Current()
			switch eventVariant := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch deltaVariant := eventVariant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if deltaVariant.Text == "" {
						continue
					}
					totalChars += len(deltaVariant.Text)
					if err := writeContentFrame(pw, deltaVariant.Text); err != nil {
						// Consumer closed the pipe; stop streaming
						return
					}
				}
			}
		}

		if err := stream.Err(); err != nil {
			e.logger.Warn().Err(err).Msg("Claude stream failed")
			writeErrorFrame(pw, fmt.Sprintf("API Error: %s", err.Error()))
			pw.Close()
			return
		}

		e.logger.Debug().
			Int("total_chars", totalChars).
			Msg("Claude stream completed")

		writeDoneFrame(pw)
		pw.Close()
	}()

	// Closing the reader tears down the API request as well
	return &cancelReadCloser{ReadCloser: pr, cancel: cancel}, nil
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	c.cancel()
	return c.ReadCloser.Close()
}

func writeContentFrame(w io.Writer, content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

func writeErrorFrame(w io.Writer, message string) {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

func writeDoneFrame(w io.Writer) {
	fmt.Fprint(w, "data: [DONE]\n\n")
}
