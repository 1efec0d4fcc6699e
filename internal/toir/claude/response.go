package claude

import (
	"encoding/json"
	"fmt"

	"github.com/tjfontaine/wirebridge/internal/api/anthropic"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// ParseResponse decodes a non-streaming Messages API response into a single
// assistant IR message plus usage.
func ParseResponse(data []byte) (*ir.Response, error) {
	var resp anthropic.MessagesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding messages response: %w", err)
	}

	msg := ir.Message{Role: ir.RoleAssistant}
	for _, p := range resp.Content {
		switch p.Type {
		case "text", "":
			msg.Content = append(msg.Content, ir.TextPart(p.Text))
		case "thinking":
			msg.Content = append(msg.Content, ir.ReasoningPart(p.Thinking, p.Signature))
		case "redacted_thinking":
			msg.Content = append(msg.Content, ir.ReasoningPart("", p.Data))
		case "tool_use":
			args := "{}"
			if p.Input != nil {
				if b, err := json.Marshal(p.Input); err == nil {
					args = string(b)
				}
			}
			msg.ToolCalls = append(msg.ToolCalls, ir.ToolCall{
				ID:         p.ID,
				Name:       p.Name,
				Arguments:  args,
				IsComplete: true,
			})
		}
	}

	out := &ir.Response{
		ID:           resp.ID,
		Model:        resp.Model,
		Message:      msg,
		FinishReason: ir.FinishFromClaude(resp.StopReason),
		Usage:        usageFromClaude(resp.Usage),
	}
	return out, nil
}

func usageFromClaude(u anthropic.Usage) *ir.Usage {
	return &ir.Usage{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      u.InputTokens + u.OutputTokens,
		CachedTokens:     u.CacheReadInputTokens,
	}
}
