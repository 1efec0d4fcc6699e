package tokens

import (
	"context"
	"encoding/json"

	anthropicapi "github.com/tjfontaine/wirebridge/internal/api/anthropic"
	fromclaude "github.com/tjfontaine/wirebridge/internal/fromir/claude"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// AnthropicCounter counts tokens through Anthropic's count_tokens endpoint,
// which returns exact counts for Claude models.
type AnthropicCounter struct {
	client  *anthropicapi.Client
	matcher *ModelMatcher
}

// NewAnthropicCounter creates a counter backed by an Anthropic client.
func NewAnthropicCounter(client *anthropicapi.Client) *AnthropicCounter {
	return &AnthropicCounter{
		client:  client,
		matcher: NewModelMatcher([]string{"claude-"}, nil),
	}
}

// Count generates a count_tokens request from the canonical request and
// forwards it upstream.
func (c *AnthropicCounter) Count(ctx context.Context, req *ir.Request) (*Result, error) {
	msgReq := fromclaude.GenerateRequest(req)

	body, err := json.Marshal(&anthropicapi.CountTokensRequest{
		Model:    msgReq.Model,
		Messages: msgReq.Messages,
		System:   msgReq.System,
		Tools:    msgReq.Tools,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.client.CountTokens(ctx, body)
	if err != nil {
		return nil, err
	}

	var resp anthropicapi.CountTokensResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}

	return &Result{InputTokens: resp.InputTokens, Estimated: false}, nil
}

// SupportsModel returns true for Claude models.
func (c *AnthropicCounter) SupportsModel(model string) bool {
	return c.matcher.Matches(model)
}
