// Package claude parses Messages API payloads into the canonical IR.
package claude

import (
	"encoding/json"
	"fmt"

	"github.com/tjfontaine/wirebridge/internal/api/anthropic"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// ParseRequest decodes a Messages API request into an IR request.
func ParseRequest(data []byte) (*ir.Request, error) {
	var req anthropic.MessagesRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decoding messages request: %w", err)
	}

	out := &ir.Request{
		Model:         req.Model,
		Stream:        req.Stream,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		TopK:          req.TopK,
		StopSequences: req.StopSequences,
		Metadata:      req.Metadata,
	}
	if req.MaxTokens > 0 {
		mt := req.MaxTokens
		out.MaxTokens = &mt
	}

	if system := req.System.Text(); system != "" {
		out.Messages = append(out.Messages, ir.Message{
			Role:    ir.RoleSystem,
			Content: []ir.ContentPart{ir.TextPart(system)},
		})
	}

	for _, m := range req.Messages {
		out.Messages = append(out.Messages, convertMessage(m))
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, ir.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  ir.CleanSchema(toSchemaMap(t.InputSchema)),
		})
	}

	if req.ToolChoice != nil {
		out.ToolChoice = &ir.ToolChoice{Name: req.ToolChoice.Name}
		switch req.ToolChoice.Type {
		case "any":
			out.ToolChoice.Mode = "required"
		case "tool":
			out.ToolChoice.Mode = "tool"
		case "none":
			out.ToolChoice.Mode = "none"
		default:
			out.ToolChoice.Mode = "auto"
		}
	}

	if req.Thinking != nil {
		cfg := &ir.ThinkingConfig{}
		switch req.Thinking.Type {
		case "enabled":
			if req.Thinking.BudgetTokens > 0 {
				cfg.Budget = req.Thinking.BudgetTokens
			} else {
				cfg.Budget = -1
			}
		default:
			cfg.Budget = 0
		}
		out.Thinking = cfg
	}

	return out, nil
}

// convertMessage maps one wire message onto an IR message. A user message
// carrying a tool_result block is reclassified as a tool turn.
func convertMessage(m anthropic.Message) ir.Message {
	out := ir.Message{Role: ir.NormalizeRole(m.Role)}
	for _, p := range m.Content {
		switch p.Type {
		case "text", "":
			out.Content = append(out.Content, ir.TextPart(p.Text))
		case "thinking":
			out.Content = append(out.Content, ir.ReasoningPart(p.Thinking, p.Signature))
		case "redacted_thinking":
			out.Content = append(out.Content, ir.ReasoningPart("", p.Data))
		case "tool_use":
			args := "{}"
			if p.Input != nil {
				if b, err := json.Marshal(p.Input); err == nil {
					args = string(b)
				}
			}
			out.ToolCalls = append(out.ToolCalls, ir.ToolCall{
				ID:         p.ID,
				Name:       p.Name,
				Arguments:  args,
				IsComplete: true,
			})
		case "tool_result":
			var content string
			if p.Content != nil {
				content = p.Content.Text()
			}
			out.Content = append(out.Content, ir.ToolResultPart(p.ToolUseID, content, p.IsError))
			if out.Role == ir.RoleUser {
				out.Role = ir.RoleTool
			}
		case "image":
			if p.Source != nil {
				out.Content = append(out.Content, ir.ContentPart{
					Type: ir.ContentImage,
					Image: &ir.ImageData{
						MimeType: p.Source.MediaType,
						Data:     p.Source.Data,
						URL:      p.Source.URL,
					},
				})
			}
		case "document":
			if p.Source != nil {
				out.Content = append(out.Content, ir.ContentPart{
					Type: ir.ContentFile,
					File: &ir.FileData{
						FileID:   p.Source.FileID,
						Filename: p.Title,
						MimeType: p.Source.MediaType,
						Data:     p.Source.Data,
					},
				})
			}
		}
	}
	return out
}

func toSchemaMap(schema any) map[string]any {
	if schema == nil {
		return nil
	}
	if m, ok := schema.(map[string]any); ok {
		return m
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
