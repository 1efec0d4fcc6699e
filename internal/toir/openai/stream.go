package openai

import (
	"encoding/json"
	"strings"

	"github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
	"github.com/tjfontaine/wirebridge/internal/sse"
)

// ParseChunk converts raw Chat Completions or Responses API SSE text into
// canonical events. Malformed frames yield no events; ParseChunk never fails.
func ParseChunk(raw string) []ir.Event {
	var events []ir.Event
	for _, frame := range sse.Parse(raw) {
		if frame.Data == "" {
			continue
		}
		if strings.TrimSpace(frame.Data) == "[DONE]" {
			events = append(events, ir.Event{Type: ir.EventFinish, FinishReason: ir.FinishStop})
			continue
		}
		events = append(events, parseDataFrame(frame)...)
	}
	return events
}

func parseDataFrame(frame sse.Frame) []ir.Event {
	// A Responses stream names its events; chat chunks arrive unnamed. The
	// type field inside the payload disambiguates either way.
	var probe struct {
		Type   string `json:"type"`
		Object string `json:"object"`
	}
	if err := json.Unmarshal([]byte(frame.Data), &probe); err != nil {
		return nil
	}
	eventName := frame.Event
	if eventName == "" {
		eventName = probe.Type
	}
	if eventName != "" && probe.Object != "chat.completion.chunk" {
		return parseResponsesFrame(eventName, frame.Data)
	}
	return parseChatChunk(frame.Data)
}

func parseChatChunk(data string) []ir.Event {
	var chunk openai.ChatCompletionChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return nil
	}

	var events []ir.Event
	var finished bool
	for _, choice := range chunk.Choices {
		if choice.Index != 0 {
			continue
		}
		delta := choice.Delta

		if reasoning := firstNonEmpty(delta.ReasoningContent, delta.Thinking); reasoning != "" || delta.ReasoningSignature != "" {
			events = append(events, ir.Event{
				Type:      ir.EventReasoning,
				Reasoning: reasoning,
				Signature: delta.ReasoningSignature,
			})
		}
		if delta.Content != "" {
			events = append(events, ir.Event{Type: ir.EventToken, Content: delta.Content})
		}
		if delta.Refusal != "" {
			events = append(events, ir.Event{Type: ir.EventToken, Content: delta.Refusal})
		}
		for _, tc := range delta.ToolCalls {
			events = append(events, toolCallChunkEvent(tc))
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			ev := ir.Event{
				Type:         ir.EventFinish,
				FinishReason: ir.FinishFromOpenAI(*choice.FinishReason),
				Usage:        usageFromChat(chunk.Usage),
			}
			events = append(events, ev)
			finished = true
		}
	}

	// A trailing usage-only chunk has an empty choices array.
	if len(events) == 0 && !finished && chunk.Usage != nil {
		events = append(events, ir.Event{
			Type:         ir.EventFinish,
			FinishReason: ir.FinishStop,
			Usage:        usageFromChat(chunk.Usage),
		})
	}
	return events
}

// toolCallChunkEvent classifies a streamed tool-call delta: a fragment that
// introduces an id or name seeds a new call, everything else extends one.
func toolCallChunkEvent(tc openai.ToolCallChunk) ir.Event {
	call := &ir.ToolCall{ID: tc.ID}
	switch {
	case tc.Custom != nil:
		call.Name = tc.Custom.Name
		call.Arguments = tc.Custom.Input
		call.IsCustom = true
	case tc.Function != nil:
		call.Name = tc.Function.Name
		call.Arguments = tc.Function.Arguments
	}
	kind := ir.EventToolCallDelta
	if call.ID != "" || call.Name != "" {
		kind = ir.EventToolCall
	}
	return ir.Event{Type: kind, Index: tc.Index, ToolCall: call}
}

func parseResponsesFrame(eventName, data string) []ir.Event {
	var ev openai.ResponsesStreamEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return nil
	}

	switch eventName {
	case "response.output_item.added":
		if ev.Item == nil {
			return nil
		}
		switch ev.Item.Type {
		case "function_call":
			return []ir.Event{{
				Type:  ir.EventToolCall,
				Index: ev.OutputIndex,
				ToolCall: &ir.ToolCall{
					ID:        firstNonEmpty(ev.Item.CallID, ev.Item.ID),
					Name:      ev.Item.Name,
					Arguments: ev.Item.Arguments,
				},
			}}
		case "custom_tool_call":
			return []ir.Event{{
				Type:  ir.EventToolCall,
				Index: ev.OutputIndex,
				ToolCall: &ir.ToolCall{
					ID:       firstNonEmpty(ev.Item.CallID, ev.Item.ID),
					Name:     ev.Item.Name,
					IsCustom: true,
				},
			}}
		}
		return nil

	case "response.output_text.delta":
		return []ir.Event{{Type: ir.EventToken, Content: ev.Delta, Index: ev.OutputIndex}}

	case "response.reasoning_summary_text.delta":
		return []ir.Event{{Type: ir.EventReasoningSummary, Summary: ev.Delta, Index: ev.OutputIndex}}

	case "response.reasoning_text.delta":
		return []ir.Event{{Type: ir.EventReasoning, Reasoning: ev.Delta, Index: ev.OutputIndex}}

	case "response.function_call_arguments.delta":
		return []ir.Event{{
			Type:     ir.EventToolCallDelta,
			Index:    ev.OutputIndex,
			ToolCall: &ir.ToolCall{Arguments: ev.Delta},
		}}

	case "response.custom_tool_call_input.delta":
		return []ir.Event{{
			Type:     ir.EventToolCallDelta,
			Index:    ev.OutputIndex,
			ToolCall: &ir.ToolCall{Arguments: ev.Delta, IsCustom: true},
		}}

	case "response.function_call_arguments.done", "response.custom_tool_call_input.done":
		return []ir.Event{{
			Type:     ir.EventToolCallDelta,
			Index:    ev.OutputIndex,
			ToolCall: &ir.ToolCall{IsComplete: true},
		}}

	case "response.completed":
		out := ir.Event{Type: ir.EventFinish, FinishReason: ir.FinishStop}
		if ev.Response != nil {
			out.Usage = usageFromResponses(ev.Response.Usage)
			for _, item := range ev.Response.Output {
				if item.Type == "function_call" || item.Type == "custom_tool_call" {
					out.FinishReason = ir.FinishToolCalls
					break
				}
			}
		}
		return []ir.Event{out}

	case "response.incomplete":
		return []ir.Event{{Type: ir.EventFinish, FinishReason: ir.FinishLength}}

	case "response.failed", "error":
		msg := ""
		if ev.Error != nil {
			msg = ev.Error.Message
		} else if ev.Response != nil && ev.Response.Error != nil {
			msg = ev.Response.Error.Message
		}
		return []ir.Event{{Type: ir.EventError, Error: msg}}
	}

	// Lifecycle and bookkeeping frames carry nothing translatable.
	return nil
}
