package ir

import (
	"encoding/json"
	"strings"
)

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: ContentText, Text: text}
}

// ReasoningPart builds a reasoning content part.
func ReasoningPart(text, signature string) ContentPart {
	return ContentPart{Type: ContentReasoning, Reasoning: text, Signature: signature}
}

// ToolResultPart builds a tool-result content part.
func ToolResultPart(callID, content string, isError bool) ContentPart {
	return ContentPart{Type: ContentToolResult, ToolResult: &ToolResult{
		ToolCallID: callID,
		Content:    content,
		IsError:    isError,
	}}
}

// MessageText concatenates the message's text parts.
func MessageText(m Message) string {
	var b strings.Builder
	for _, p := range m.Content {
		if p.Type == ContentText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// MessageReasoning concatenates the message's reasoning parts and returns the
// last non-empty thought signature seen.
func MessageReasoning(m Message) (text, signature string) {
	var b strings.Builder
	for _, p := range m.Content {
		if p.Type != ContentReasoning {
			continue
		}
		b.WriteString(p.Reasoning)
		if p.Signature != "" {
			signature = p.Signature
		}
	}
	return b.String(), signature
}

// ParseToolArguments decodes accumulated tool-call argument text into a map.
// Empty or malformed input yields an empty object rather than an error so
// that a truncated stream still produces a usable call.
func ParseToolArguments(args string) map[string]any {
	out := map[string]any{}
	if strings.TrimSpace(args) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(args), &out); err != nil {
		return map[string]any{}
	}
	return out
}

// schemaDropKeys are JSON-schema keywords stripped by CleanSchema. Downstream
// providers reject schemas containing reference and meta keywords.
var schemaDropKeys = map[string]bool{
	"$schema":     true,
	"$id":         true,
	"$ref":        true,
	"definitions": true,
	"$defs":       true,
}

// CleanSchema returns a copy of schema with meta and reference keywords
// removed, recursing through properties and items. Cleaning an already-clean
// schema returns an equal schema.
func CleanSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		if schemaDropKeys[k] {
			continue
		}
		switch k {
		case "properties":
			if props, ok := v.(map[string]any); ok {
				cleaned := make(map[string]any, len(props))
				for name, sub := range props {
					if m, ok := sub.(map[string]any); ok {
						cleaned[name] = CleanSchema(m)
					} else {
						cleaned[name] = sub
					}
				}
				out[k] = cleaned
				continue
			}
		case "items":
			if m, ok := v.(map[string]any); ok {
				out[k] = CleanSchema(m)
				continue
			}
		}
		out[k] = v
	}
	return out
}
