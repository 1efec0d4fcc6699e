package claude

import (
	"encoding/json"

	"github.com/tjfontaine/wirebridge/internal/api/anthropic"
	"github.com/tjfontaine/wirebridge/internal/ir"
	"github.com/tjfontaine/wirebridge/internal/sse"
)

// ParseChunk converts raw Messages API SSE text into canonical events. A
// chunk may hold any number of frames. Malformed frames and unknown event
// types yield no events; ParseChunk never fails.
func ParseChunk(raw string) []ir.Event {
	var events []ir.Event
	for _, frame := range sse.Parse(raw) {
		if frame.Data == "" {
			continue
		}
		events = append(events, parseFrame(frame.Data)...)
	}
	return events
}

func parseFrame(data string) []ir.Event {
	var env anthropic.StreamEvent
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil
	}

	switch env.Type {
	case "content_block_start":
		var ev anthropic.ContentBlockStartEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return nil
		}
		if ev.ContentBlock.Type != "tool_use" {
			return nil
		}
		return []ir.Event{{
			Type:  ir.EventToolCall,
			Index: ev.Index,
			ToolCall: &ir.ToolCall{
				ID:   ev.ContentBlock.ID,
				Name: ev.ContentBlock.Name,
			},
		}}

	case "content_block_delta":
		var ev anthropic.ContentBlockDeltaEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return nil
		}
		switch ev.Delta.Type {
		case "text_delta":
			return []ir.Event{{Type: ir.EventToken, Content: ev.Delta.Text, Index: ev.Index}}
		case "thinking_delta":
			return []ir.Event{{Type: ir.EventReasoning, Reasoning: ev.Delta.Thinking, Index: ev.Index}}
		case "signature_delta":
			return []ir.Event{{Type: ir.EventReasoning, Signature: ev.Delta.Signature, Index: ev.Index}}
		case "input_json_delta":
			return []ir.Event{{
				Type:     ir.EventToolCallDelta,
				Index:    ev.Index,
				ToolCall: &ir.ToolCall{Arguments: ev.Delta.PartialJSON},
			}}
		}
		return nil

	case "content_block_stop":
		var ev anthropic.ContentBlockStopEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return nil
		}
		return []ir.Event{{
			Type:     ir.EventToolCallDelta,
			Index:    ev.Index,
			ToolCall: &ir.ToolCall{IsComplete: true},
		}}

	case "message_delta":
		var ev anthropic.MessageDeltaEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return nil
		}
		out := ir.Event{
			Type:         ir.EventFinish,
			FinishReason: ir.FinishFromClaude(ev.Delta.StopReason),
		}
		if ev.Usage != nil {
			out.Usage = &ir.Usage{
				PromptTokens:     ev.Usage.InputTokens,
				CompletionTokens: ev.Usage.OutputTokens,
				TotalTokens:      ev.Usage.InputTokens + ev.Usage.OutputTokens,
			}
		}
		return []ir.Event{out}

	case "message_stop":
		return []ir.Event{{Type: ir.EventFinish, FinishReason: ir.FinishStop}}

	case "error":
		var ev anthropic.ErrorEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return nil
		}
		return []ir.Event{{Type: ir.EventError, Error: ev.Error.Message}}
	}

	// message_start, ping, and unrecognized types carry nothing translatable.
	return nil
}
