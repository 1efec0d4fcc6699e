// Package claude generates Messages API payloads from the canonical IR.
package claude

import (
	"github.com/tjfontaine/wirebridge/internal/api/anthropic"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// defaultMaxTokens is applied when the IR carries no limit; the Messages API
// requires max_tokens on every request.
const defaultMaxTokens = 4096

// defaultThinkingBudget is used when thinking is requested without an
// explicit budget.
const defaultThinkingBudget = 8192

// GenerateRequest renders an IR request as a Messages API request.
func GenerateRequest(req *ir.Request) *anthropic.MessagesRequest {
	out := &anthropic.MessagesRequest{
		Model:         req.Model,
		MaxTokens:     defaultMaxTokens,
		Stream:        req.Stream,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		TopK:          req.TopK,
		StopSequences: req.StopSequences,
		Metadata:      req.Metadata,
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		out.MaxTokens = *req.MaxTokens
	}

	for _, m := range req.Messages {
		switch m.Role {
		case ir.RoleSystem:
			if text := ir.MessageText(m); text != "" {
				out.System = append(out.System, anthropic.SystemBlock{Type: "text", Text: text})
			}
		default:
			if wire, ok := generateMessage(m); ok {
				out.Messages = append(out.Messages, wire)
			}
		}
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, anthropic.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}

	if req.ToolChoice != nil {
		tc := &anthropic.ToolChoice{Name: req.ToolChoice.Name}
		switch req.ToolChoice.Mode {
		case "required":
			tc.Type = "any"
		case "tool":
			tc.Type = "tool"
		case "none":
			tc.Type = "none"
		default:
			tc.Type = "auto"
		}
		out.ToolChoice = tc
	}

	if req.Thinking != nil {
		out.Thinking = generateThinking(req.Thinking)
	}

	return out
}

func generateThinking(cfg *ir.ThinkingConfig) *anthropic.ThinkingConfig {
	budget := cfg.Budget
	if cfg.Effort != "" {
		budget = ir.EffortToBudget(cfg.Effort)
	}
	switch {
	case budget == 0:
		return &anthropic.ThinkingConfig{Type: "disabled"}
	case budget < 0:
		return &anthropic.ThinkingConfig{Type: "enabled", BudgetTokens: defaultThinkingBudget}
	default:
		return &anthropic.ThinkingConfig{Type: "enabled", BudgetTokens: budget}
	}
}

// generateMessage renders a non-system IR message. Tool turns become user
// messages carrying tool_result blocks.
func generateMessage(m ir.Message) (anthropic.Message, bool) {
	role := "user"
	if m.Role == ir.RoleAssistant {
		role = "assistant"
	}
	wire := anthropic.Message{Role: role}

	for _, p := range m.Content {
		switch p.Type {
		case ir.ContentText:
			wire.Content = append(wire.Content, anthropic.ContentPart{Type: "text", Text: p.Text})
		case ir.ContentReasoning:
			wire.Content = append(wire.Content, anthropic.ContentPart{
				Type:      "thinking",
				Thinking:  p.Reasoning,
				Signature: p.Signature,
			})
		case ir.ContentToolResult:
			if p.ToolResult == nil {
				continue
			}
			wire.Content = append(wire.Content, anthropic.ContentPart{
				Type:      "tool_result",
				ToolUseID: p.ToolResult.ToolCallID,
				Content:   &anthropic.ToolResultContent{{Type: "text", Text: p.ToolResult.Content}},
				IsError:   p.ToolResult.IsError,
			})
		case ir.ContentImage:
			if p.Image == nil {
				continue
			}
			src := &anthropic.Source{}
			if p.Image.URL != "" {
				src.Type = "url"
				src.URL = p.Image.URL
			} else {
				src.Type = "base64"
				src.MediaType = p.Image.MimeType
				src.Data = p.Image.Data
			}
			wire.Content = append(wire.Content, anthropic.ContentPart{Type: "image", Source: src})
		case ir.ContentFile:
			if p.File == nil {
				continue
			}
			wire.Content = append(wire.Content, anthropic.ContentPart{
				Type:  "document",
				Title: p.File.Filename,
				Source: &anthropic.Source{
					Type:      "base64",
					MediaType: p.File.MimeType,
					Data:      p.File.Data,
					FileID:    p.File.FileID,
				},
			})
		}
	}

	for _, tc := range m.ToolCalls {
		wire.Content = append(wire.Content, anthropic.ContentPart{
			Type:  "tool_use",
			ID:    tc.ID,
			Name:  tc.Name,
			Input: ir.ParseToolArguments(tc.Arguments),
		})
	}

	return wire, len(wire.Content) > 0
}
