// Package openai parses Chat Completions and Responses API payloads into the
// canonical IR.
package openai

import (
	"encoding/json"
	"fmt"

	"github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// ParseRequest decodes a Chat Completions request into an IR request.
func ParseRequest(data []byte) (*ir.Request, error) {
	var req openai.ChatCompletionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decoding chat completion request: %w", err)
	}

	out := &ir.Request{
		Model:         req.Model,
		Stream:        req.Stream,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		StopSequences: req.Stop,
		Metadata:      req.Metadata,
	}
	if mt := maxTokens(req.MaxTokens, req.MaxCompletionTokens); mt > 0 {
		out.MaxTokens = &mt
	}

	for _, m := range req.Messages {
		out.Messages = append(out.Messages, convertChatMessage(m))
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, convertTool(t))
	}

	out.ToolChoice = convertToolChoice(req.ToolChoice)
	out.ResponseFormat = convertResponseFormat(req.ResponseFormat)
	out.Thinking = resolveThinking(&req)

	return out, nil
}

func maxTokens(maxTokens, maxCompletionTokens int) int {
	if maxCompletionTokens > 0 {
		return maxCompletionTokens
	}
	return maxTokens
}

// resolveThinking merges the three reasoning shapes a request may carry.
// Later shapes win: reasoning_effort, then reasoning{}, then thinking{}.
func resolveThinking(req *openai.ChatCompletionRequest) *ir.ThinkingConfig {
	var cfg *ir.ThinkingConfig

	if e := ir.ParseEffort(req.ReasoningEffort); e != "" {
		cfg = &ir.ThinkingConfig{Effort: e, Budget: ir.EffortToBudget(e)}
	}
	if req.Reasoning != nil {
		cfg = &ir.ThinkingConfig{Summary: req.Reasoning.Summary}
		if e := ir.ParseEffort(req.Reasoning.Effort); e != "" {
			cfg.Effort = e
			cfg.Budget = ir.EffortToBudget(e)
		} else if req.Reasoning.MaxTokens > 0 {
			cfg.Budget = req.Reasoning.MaxTokens
		} else {
			cfg.Budget = -1
		}
	}
	if req.Thinking != nil {
		cfg = &ir.ThinkingConfig{}
		switch req.Thinking.Type {
		case "disabled":
			cfg.Budget = 0
		default:
			if req.Thinking.BudgetTokens > 0 {
				cfg.Budget = req.Thinking.BudgetTokens
			} else {
				cfg.Budget = -1
			}
		}
	}
	return cfg
}

func convertChatMessage(m openai.ChatMessage) ir.Message {
	out := ir.Message{Role: ir.NormalizeRole(m.Role)}

	if m.Role == "tool" || m.Role == "function" {
		out.Content = append(out.Content, ir.ToolResultPart(m.ToolCallID, contentText(m.Content), false))
		return out
	}

	if reasoning := firstNonEmpty(m.ReasoningContent, m.Thinking); reasoning != "" {
		out.Content = append(out.Content, ir.ReasoningPart(reasoning, m.ReasoningSignature))
	}

	if m.Content.IsParts {
		for _, p := range m.Content.Parts {
			switch p.Type {
			case "text", "":
				out.Content = append(out.Content, ir.TextPart(p.Text))
			case "image_url":
				if p.ImageURL != nil {
					out.Content = append(out.Content, ir.ContentPart{
						Type:  ir.ContentImage,
						Image: &ir.ImageData{URL: p.ImageURL.URL},
					})
				}
			case "file":
				if p.File != nil {
					out.Content = append(out.Content, ir.ContentPart{
						Type: ir.ContentFile,
						File: &ir.FileData{
							FileID:   p.File.FileID,
							Filename: p.File.Filename,
							Data:     p.File.FileData,
						},
					})
				}
			}
		}
	} else if m.Content.Text != "" {
		out.Content = append(out.Content, ir.TextPart(m.Content.Text))
	}

	if m.Refusal != "" {
		out.Content = append(out.Content, ir.TextPart(m.Refusal))
	}

	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, convertToolCall(tc))
	}

	return out
}

func convertToolCall(tc openai.ToolCall) ir.ToolCall {
	out := ir.ToolCall{ID: tc.ID, IsComplete: true}
	switch {
	case tc.Custom != nil:
		out.Name = tc.Custom.Name
		out.Arguments = tc.Custom.Input
		out.IsCustom = true
	case tc.Function != nil:
		out.Name = tc.Function.Name
		out.Arguments = tc.Function.Arguments
	}
	return out
}

func convertTool(t openai.Tool) ir.ToolDefinition {
	switch {
	case t.Custom != nil:
		return ir.ToolDefinition{
			Name:        t.Custom.Name,
			Description: t.Custom.Description,
			IsCustom:    true,
		}
	case t.Function != nil:
		return ir.ToolDefinition{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  ir.CleanSchema(toSchemaMap(t.Function.Parameters)),
		}
	default:
		return ir.ToolDefinition{}
	}
}

func convertToolChoice(tc any) *ir.ToolChoice {
	switch v := tc.(type) {
	case string:
		switch v {
		case "auto", "none", "required":
			return &ir.ToolChoice{Mode: v}
		}
	case map[string]any:
		if fn, ok := v["function"].(map[string]any); ok {
			name, _ := fn["name"].(string)
			return &ir.ToolChoice{Mode: "tool", Name: name}
		}
	}
	return nil
}

func convertResponseFormat(rf *openai.ResponseFormat) *ir.ResponseFormat {
	if rf == nil {
		return nil
	}
	out := &ir.ResponseFormat{Type: rf.Type}
	if rf.JSONSchema != nil {
		out.SchemaName = rf.JSONSchema.Name
		out.Schema = toSchemaMap(rf.JSONSchema.Schema)
		out.Strict = rf.JSONSchema.Strict
	}
	return out
}

func contentText(c openai.MessageContent) string {
	if !c.IsParts {
		return c.Text
	}
	var out string
	for _, p := range c.Parts {
		if p.Type == "text" || p.Type == "" {
			out += p.Text
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
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
