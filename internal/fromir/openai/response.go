package openai

import (
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// GenerateResponse renders an IR response as a non-streaming Chat
// Completions response.
func GenerateResponse(resp *ir.Response) *openai.ChatCompletionResponse {
	id := resp.ID
	if id == "" {
		id = "chatcmpl-" + uuid.NewString()
	}

	msg := openai.ChatMessage{Role: "assistant"}
	msg.Content = openai.MessageContent{Text: ir.MessageText(resp.Message)}
	msg.ReasoningContent, msg.ReasoningSignature = ir.MessageReasoning(resp.Message)
	for _, tc := range resp.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, generateToolCall(tc))
	}

	finish := ir.FinishToOpenAI(resp.FinishReason)
	if len(msg.ToolCalls) > 0 && resp.FinishReason == ir.FinishStop {
		finish = "tool_calls"
	}

	return &openai.ChatCompletionResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   resp.Model,
		Choices: []openai.Choice{{
			Index:        0,
			Message:      msg,
			FinishReason: finish,
		}},
		Usage: usageToChat(resp.Usage),
	}
}

func usageToChat(u *ir.Usage) *openai.Usage {
	if u == nil {
		return nil
	}
	out := &openai.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if out.TotalTokens == 0 {
		out.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	if u.CachedTokens > 0 || u.AudioPromptTokens > 0 {
		out.PromptTokensDetails = &openai.PromptTokensDetails{
			CachedTokens: u.CachedTokens,
			AudioTokens:  u.AudioPromptTokens,
		}
	}
	if u.ReasoningTokens > 0 || u.AudioCompletionTokens > 0 ||
		u.AcceptedPredictionTokens > 0 || u.RejectedPredictionTokens > 0 {
		out.CompletionTokensDetails = &openai.CompletionTokensDetails{
			ReasoningTokens:          u.ReasoningTokens,
			AudioTokens:              u.AudioCompletionTokens,
			AcceptedPredictionTokens: u.AcceptedPredictionTokens,
			RejectedPredictionTokens: u.RejectedPredictionTokens,
		}
	}
	return out
}
