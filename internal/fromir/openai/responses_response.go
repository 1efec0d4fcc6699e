package openai

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// GenerateResponsesResponse renders an IR response as a non-streaming
// Responses API response object.
func GenerateResponsesResponse(resp *ir.Response) *openai.Response {
	id := resp.ID
	if id == "" {
		id = "resp_" + uuid.NewString()
	}

	out := &openai.Response{
		ID:        id,
		Object:    "response",
		CreatedAt: time.Now().Unix(),
		Status:    "completed",
		Model:     resp.Model,
		Output:    []openai.ResponsesItem{},
		Usage:     usageToResponses(resp.Usage),
	}
	if resp.FinishReason == ir.FinishLength {
		out.Status = "incomplete"
	}

	if text, sig := ir.MessageReasoning(resp.Message); text != "" {
		out.Output = append(out.Output, openai.ResponsesItem{
			Type:             "reasoning",
			ID:               "rs_" + uuid.NewString(),
			Status:           "completed",
			Summary:          []openai.ResponsesSummaryPart{{Type: "summary_text", Text: text}},
			EncryptedContent: sig,
		})
	}

	if text := ir.MessageText(resp.Message); text != "" {
		out.Output = append(out.Output, openai.ResponsesItem{
			Type:    "message",
			ID:      "msg_" + uuid.NewString(),
			Role:    "assistant",
			Status:  "completed",
			Content: openai.ResponsesMessageContent{{Type: "output_text", Text: text}},
		})
	}

	for _, tc := range resp.Message.ToolCalls {
		callID := tc.ID
		if callID == "" {
			callID = "call_" + uuid.NewString()
		}
		item := openai.ResponsesItem{
			ID:     "item_" + uuid.NewString(),
			Status: "completed",
			CallID: callID,
			Name:   tc.Name,
		}
		if tc.IsCustom {
			item.Type = "custom_tool_call"
			item.Input = tc.Arguments
		} else {
			item.Type = "function_call"
			item.Arguments = tc.Arguments
			if strings.TrimSpace(item.Arguments) == "" {
				item.Arguments = "{}"
			}
		}
		out.Output = append(out.Output, item)
	}

	return out
}
