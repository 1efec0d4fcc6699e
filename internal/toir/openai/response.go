package openai

import (
	"encoding/json"
	"fmt"

	"github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// ParseResponse decodes a non-streaming response into an IR response. Both
// the Chat Completions shape (choices[0].message) and the Responses API
// shape (output[]) are recognized.
func ParseResponse(data []byte) (*ir.Response, error) {
	var probe struct {
		Object string          `json:"object"`
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if probe.Object == "response" || len(probe.Output) > 0 {
		return parseResponsesResponse(data)
	}
	return parseChatResponse(data)
}

func parseChatResponse(data []byte) (*ir.Response, error) {
	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding chat completion response: %w", err)
	}

	out := &ir.Response{
		ID:           resp.ID,
		Model:        resp.Model,
		FinishReason: ir.FinishUnknown,
		Message:      ir.Message{Role: ir.RoleAssistant},
	}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		out.FinishReason = ir.FinishFromOpenAI(choice.FinishReason)

		if reasoning := firstNonEmpty(choice.Message.ReasoningContent, choice.Message.Thinking); reasoning != "" {
			out.Message.Content = append(out.Message.Content,
				ir.ReasoningPart(reasoning, choice.Message.ReasoningSignature))
		}
		if text := contentText(choice.Message.Content); text != "" {
			out.Message.Content = append(out.Message.Content, ir.TextPart(text))
		}
		for _, tc := range choice.Message.ToolCalls {
			out.Message.ToolCalls = append(out.Message.ToolCalls, convertToolCall(tc))
		}
	}

	out.Usage = usageFromChat(resp.Usage)
	return out, nil
}

func parseResponsesResponse(data []byte) (*ir.Response, error) {
	var resp openai.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding responses response: %w", err)
	}

	out := &ir.Response{
		ID:           resp.ID,
		Model:        resp.Model,
		FinishReason: ir.FinishStop,
		Message:      ir.Message{Role: ir.RoleAssistant},
	}
	switch resp.Status {
	case "incomplete":
		out.FinishReason = ir.FinishLength
	case "failed":
		out.FinishReason = ir.FinishError
	}

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, p := range item.Content {
				switch p.Type {
				case "output_text", "text", "":
					out.Message.Content = append(out.Message.Content, ir.TextPart(p.Text))
				case "refusal":
					out.Message.Content = append(out.Message.Content, ir.TextPart(p.Refusal))
				}
			}
		case "reasoning":
			for _, s := range item.Summary {
				out.Message.Content = append(out.Message.Content, ir.ReasoningPart(s.Text, item.EncryptedContent))
			}
		case "function_call":
			out.Message.ToolCalls = append(out.Message.ToolCalls, ir.ToolCall{
				ID:         firstNonEmpty(item.CallID, item.ID),
				Name:       item.Name,
				Arguments:  item.Arguments,
				IsComplete: true,
			})
		case "custom_tool_call":
			out.Message.ToolCalls = append(out.Message.ToolCalls, ir.ToolCall{
				ID:         firstNonEmpty(item.CallID, item.ID),
				Name:       item.Name,
				Arguments:  item.Input,
				IsCustom:   true,
				IsComplete: true,
			})
		}
	}

	if len(out.Message.ToolCalls) > 0 && out.FinishReason == ir.FinishStop {
		out.FinishReason = ir.FinishToolCalls
	}
	out.Usage = usageFromResponses(resp.Usage)
	return out, nil
}

func usageFromChat(u *openai.Usage) *ir.Usage {
	if u == nil {
		return nil
	}
	out := &ir.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if d := u.PromptTokensDetails; d != nil {
		out.CachedTokens = d.CachedTokens
		out.AudioPromptTokens = d.AudioTokens
	}
	if d := u.CompletionTokensDetails; d != nil {
		out.ReasoningTokens = d.ReasoningTokens
		out.AudioCompletionTokens = d.AudioTokens
		out.AcceptedPredictionTokens = d.AcceptedPredictionTokens
		out.RejectedPredictionTokens = d.RejectedPredictionTokens
	}
	return out
}

func usageFromResponses(u *openai.ResponsesUsage) *ir.Usage {
	if u == nil {
		return nil
	}
	out := &ir.Usage{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      u.TotalTokens,
	}
	if d := u.InputTokensDetails; d != nil {
		out.CachedTokens = d.CachedTokens
	}
	if d := u.OutputTokensDetails; d != nil {
		out.ReasoningTokens = d.ReasoningTokens
	}
	return out
}
