// Package openai generates Chat Completions and Responses API payloads from
// the canonical IR.
package openai

import (
	"strings"

	"github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// reasoningModelPrefixes identify models that take max_completion_tokens and
// reasoning_effort instead of max_tokens.
var reasoningModelPrefixes = []string{"o1", "o3"}

// IsReasoningModel reports whether model belongs to the reasoning family.
// Matching is by prefix, case-insensitive.
func IsReasoningModel(model string) bool {
	lower := strings.ToLower(model)
	for _, p := range reasoningModelPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// GenerateRequest renders an IR request as a Chat Completions request.
func GenerateRequest(req *ir.Request) *openai.ChatCompletionRequest {
	out := &openai.ChatCompletionRequest{
		Model:       req.Model,
		Stream:      req.Stream,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.StopSequences,
		Metadata:    req.Metadata,
	}

	reasoning := IsReasoningModel(req.Model)
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		if reasoning {
			out.MaxCompletionTokens = *req.MaxTokens
		} else {
			out.MaxTokens = *req.MaxTokens
		}
	}

	// A disabled thinking config must leave every reasoning field unset.
	if req.Thinking != nil && reasoning {
		effort := req.Thinking.Effort
		if effort == "" {
			effort = ir.BudgetToEffort(req.Thinking.Budget, ir.EffortMedium)
		}
		if effort != ir.EffortNone {
			out.ReasoningEffort = string(effort)
		}
	}

	for _, m := range req.Messages {
		out.Messages = append(out.Messages, generateChatMessages(m)...)
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, generateTool(t))
	}
	out.ToolChoice = generateToolChoice(req.ToolChoice)
	out.ResponseFormat = generateResponseFormat(req.ResponseFormat)

	return out
}

// generateChatMessages renders one IR message; a tool turn with several
// results fans out into one wire message per result.
func generateChatMessages(m ir.Message) []openai.ChatMessage {
	if m.Role == ir.RoleTool {
		var out []openai.ChatMessage
		for _, p := range m.Content {
			if p.Type != ir.ContentToolResult || p.ToolResult == nil {
				continue
			}
			out = append(out, openai.ChatMessage{
				Role:       "tool",
				ToolCallID: p.ToolResult.ToolCallID,
				Content:    openai.MessageContent{Text: p.ToolResult.Content},
			})
		}
		return out
	}

	wire := openai.ChatMessage{Role: string(m.Role)}

	var parts []openai.MessagePart
	var plainText strings.Builder
	needsParts := false
	for _, p := range m.Content {
		switch p.Type {
		case ir.ContentText:
			parts = append(parts, openai.MessagePart{Type: "text", Text: p.Text})
			plainText.WriteString(p.Text)
		case ir.ContentReasoning:
			wire.ReasoningContent += p.Reasoning
			if p.Signature != "" {
				wire.ReasoningSignature = p.Signature
			}
		case ir.ContentImage:
			if p.Image == nil {
				continue
			}
			url := p.Image.URL
			if url == "" && p.Image.Data != "" {
				url = "data:" + p.Image.MimeType + ";base64," + p.Image.Data
			}
			parts = append(parts, openai.MessagePart{Type: "image_url", ImageURL: &openai.ImageURL{URL: url}})
			needsParts = true
		case ir.ContentFile:
			if p.File == nil {
				continue
			}
			parts = append(parts, openai.MessagePart{Type: "file", File: &openai.FileRef{
				FileID:   p.File.FileID,
				Filename: p.File.Filename,
				FileData: p.File.Data,
			}})
			needsParts = true
		}
	}

	// Single-text content flattens to the plain string form.
	if needsParts {
		wire.Content = openai.MessageContent{Parts: parts, IsParts: true}
	} else {
		wire.Content = openai.MessageContent{Text: plainText.String()}
	}

	for _, tc := range m.ToolCalls {
		wire.ToolCalls = append(wire.ToolCalls, generateToolCall(tc))
	}

	if wire.Content.IsEmpty() && !wire.Content.IsParts && len(wire.ToolCalls) == 0 &&
		wire.ReasoningContent == "" {
		return nil
	}
	return []openai.ChatMessage{wire}
}

func generateToolCall(tc ir.ToolCall) openai.ToolCall {
	if tc.IsCustom {
		return openai.ToolCall{
			ID:     tc.ID,
			Type:   "custom",
			Custom: &openai.CustomCall{Name: tc.Name, Input: tc.Arguments},
		}
	}
	args := tc.Arguments
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	return openai.ToolCall{
		ID:       tc.ID,
		Type:     "function",
		Function: &openai.FunctionCall{Name: tc.Name, Arguments: args},
	}
}

func generateTool(t ir.ToolDefinition) openai.Tool {
	if t.IsCustom {
		return openai.Tool{
			Type:   "custom",
			Custom: &openai.CustomTool{Name: t.Name, Description: t.Description},
		}
	}
	return openai.Tool{
		Type: "function",
		Function: &openai.FunctionTool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		},
	}
}

func generateToolChoice(tc *ir.ToolChoice) any {
	if tc == nil {
		return nil
	}
	switch tc.Mode {
	case "tool":
		return map[string]any{
			"type":     "function",
			"function": map[string]any{"name": tc.Name},
		}
	case "none", "required", "auto":
		return tc.Mode
	default:
		return nil
	}
}

func generateResponseFormat(rf *ir.ResponseFormat) *openai.ResponseFormat {
	if rf == nil {
		return nil
	}
	out := &openai.ResponseFormat{Type: rf.Type}
	if rf.Type == "json_schema" {
		out.JSONSchema = &openai.JSONSchema{
			Name:   rf.SchemaName,
			Schema: rf.Schema,
			Strict: rf.Strict,
		}
	}
	return out
}
