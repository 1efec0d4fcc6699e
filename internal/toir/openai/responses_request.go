package openai

import (
	"encoding/json"
	"fmt"

	"github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// ParseResponsesRequest decodes a Responses API request into an IR request.
func ParseResponsesRequest(data []byte) (*ir.Request, error) {
	var req openai.ResponsesRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decoding responses request: %w", err)
	}

	out := &ir.Request{
		Model:       req.Model,
		Stream:      req.Stream,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Metadata:    req.Metadata,
	}
	if req.MaxOutputTokens > 0 {
		mt := req.MaxOutputTokens
		out.MaxTokens = &mt
	}

	if req.Instructions != "" {
		out.Messages = append(out.Messages, ir.Message{
			Role:    ir.RoleSystem,
			Content: []ir.ContentPart{ir.TextPart(req.Instructions)},
		})
	}

	if req.Input.IsItems {
		for _, item := range req.Input.Items {
			if m, ok := convertResponsesItem(item); ok {
				out.Messages = append(out.Messages, m)
			}
		}
	} else if req.Input.Text != "" {
		out.Messages = append(out.Messages, ir.Message{
			Role:    ir.RoleUser,
			Content: []ir.ContentPart{ir.TextPart(req.Input.Text)},
		})
	}

	for _, t := range req.Tools {
		switch t.Type {
		case "custom":
			out.Tools = append(out.Tools, ir.ToolDefinition{
				Name:        t.Name,
				Description: t.Description,
				IsCustom:    true,
			})
		default:
			out.Tools = append(out.Tools, ir.ToolDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  ir.CleanSchema(toSchemaMap(t.Parameters)),
			})
		}
	}
	out.ToolChoice = convertToolChoice(req.ToolChoice)

	if req.Reasoning != nil {
		cfg := &ir.ThinkingConfig{Summary: req.Reasoning.Summary}
		if e := ir.ParseEffort(req.Reasoning.Effort); e != "" {
			cfg.Effort = e
			cfg.Budget = ir.EffortToBudget(e)
		} else {
			cfg.Budget = -1
		}
		out.Thinking = cfg
	}

	if req.Text != nil && req.Text.Format != nil {
		out.ResponseFormat = &ir.ResponseFormat{
			Type:       req.Text.Format.Type,
			SchemaName: req.Text.Format.Name,
			Schema:     toSchemaMap(req.Text.Format.Schema),
			Strict:     req.Text.Format.Strict,
		}
	}

	return out, nil
}

// convertResponsesItem maps one input item onto an IR message. Tool-call
// items become assistant turns; tool outputs become tool turns.
func convertResponsesItem(item openai.ResponsesItem) (ir.Message, bool) {
	switch item.Type {
	case "message", "":
		m := ir.Message{Role: ir.NormalizeRole(item.Role)}
		for _, p := range item.Content {
			switch p.Type {
			case "input_text", "output_text", "text", "":
				m.Content = append(m.Content, ir.TextPart(p.Text))
			case "refusal":
				m.Content = append(m.Content, ir.TextPart(p.Refusal))
			case "input_image":
				m.Content = append(m.Content, ir.ContentPart{
					Type:  ir.ContentImage,
					Image: &ir.ImageData{URL: p.ImageURL},
				})
			case "input_file":
				m.Content = append(m.Content, ir.ContentPart{
					Type: ir.ContentFile,
					File: &ir.FileData{FileID: p.FileID, Filename: p.Filename},
				})
			}
		}
		return m, len(m.Content) > 0

	case "reasoning":
		m := ir.Message{Role: ir.RoleAssistant}
		for _, s := range item.Summary {
			m.Content = append(m.Content, ir.ReasoningPart(s.Text, item.EncryptedContent))
		}
		return m, len(m.Content) > 0

	case "function_call":
		return ir.Message{
			Role: ir.RoleAssistant,
			ToolCalls: []ir.ToolCall{{
				ID:         firstNonEmpty(item.CallID, item.ID),
				Name:       item.Name,
				Arguments:  item.Arguments,
				IsComplete: true,
			}},
		}, true

	case "custom_tool_call":
		return ir.Message{
			Role: ir.RoleAssistant,
			ToolCalls: []ir.ToolCall{{
				ID:         firstNonEmpty(item.CallID, item.ID),
				Name:       item.Name,
				Arguments:  item.Input,
				IsCustom:   true,
				IsComplete: true,
			}},
		}, true

	case "function_call_output", "custom_tool_call_output":
		return ir.Message{
			Role:    ir.RoleTool,
			Content: []ir.ContentPart{ir.ToolResultPart(item.CallID, item.Output, false)},
		}, true
	}

	return ir.Message{}, false
}
