package claude

import (
	"github.com/google/uuid"

	"github.com/tjfontaine/wirebridge/internal/api/anthropic"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// GenerateResponse renders an IR response as a non-streaming Messages API
// response. Usage detail breakdowns the Messages API cannot express are
// dropped.
func GenerateResponse(resp *ir.Response) *anthropic.MessagesResponse {
	out := &anthropic.MessagesResponse{
		ID:         resp.ID,
		Type:       "message",
		Role:       "assistant",
		Model:      resp.Model,
		StopReason: ir.FinishToClaude(resp.FinishReason),
	}
	if out.ID == "" {
		out.ID = "msg_" + uuid.NewString()
	}

	for _, p := range resp.Message.Content {
		switch p.Type {
		case ir.ContentText:
			out.Content = append(out.Content, anthropic.ContentPart{Type: "text", Text: p.Text})
		case ir.ContentReasoning:
			out.Content = append(out.Content, anthropic.ContentPart{
				Type:      "thinking",
				Thinking:  p.Reasoning,
				Signature: p.Signature,
			})
		}
	}

	for _, tc := range resp.Message.ToolCalls {
		id := tc.ID
		if id == "" {
			id = "toolu_" + uuid.NewString()
		}
		out.Content = append(out.Content, anthropic.ContentPart{
			Type:  "tool_use",
			ID:    id,
			Name:  tc.Name,
			Input: ir.ParseToolArguments(tc.Arguments),
		})
	}

	if len(resp.Message.ToolCalls) > 0 && resp.FinishReason == ir.FinishStop {
		out.StopReason = "tool_use"
	}

	if resp.Usage != nil {
		out.Usage = anthropic.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}

	return out
}
