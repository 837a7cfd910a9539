package analyzer

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
)

// ClaudeGenerator is the hosted-model completion client. One prompt in,
// one free-text completion out; no tools, no streaming, no retries.
type ClaudeGenerator struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewClaudeGenerator creates a generator backed by Anthropic Claude or a
// compatible provider.
func NewClaudeGenerator(apiKey, model, baseURL string) *ClaudeGenerator {
	if model == "" {
		model = "claude-sonnet-4-6"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &ClaudeGenerator{
		client:    client,
		model:     model,
		maxTokens: 1024,
	}
}

// Complete sends the rendered prompt as a single user message and
// returns the concatenated text content of the reply.
func (g *ClaudeGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(g.model)),
		MaxTokens: anthropic.F(int64(g.maxTokens)),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
			text += b.Text
		}
	}

	log.Debug().
		Str("model", g.model).
		Str("stop_reason", string(resp.StopReason)).
		Int("completion_len", len(text)).
		Msg("completion received")

	return text, nil
}
