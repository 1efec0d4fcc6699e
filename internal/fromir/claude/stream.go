package claude

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/tjfontaine/wirebridge/internal/api/anthropic"
	"github.com/tjfontaine/wirebridge/internal/ir"
	"github.com/tjfontaine/wirebridge/internal/sse"
)

// StreamState reconstructs a Messages API event stream from canonical
// events. At most one content block is open at any time; the first emitted
// frame is always preceded by message_start with zeroed usage.
type StreamState struct {
	MessageID string
	Model     string

	started  bool
	finished bool

	nextIndex int
	openIndex int
	openKind  string // text, thinking, tool

	// tools maps the source-side tool slot to its wire block.
	tools       map[int]*toolSlot
	sawToolCall bool
	usage       *ir.Usage
}

// toolSlot remembers a tool call's identity so its block can be reopened
// when argument fragments resume after another block closed it.
type toolSlot struct {
	wireIdx int
	id      string
	name    string
}

// NewStreamState returns a fresh state for one stream.
func NewStreamState(model string) *StreamState {
	return &StreamState{
		MessageID: "msg_" + uuid.NewString(),
		Model:     model,
		openIndex: -1,
		tools:     map[int]*toolSlot{},
	}
}

// Chunk converts one canonical event into zero or more SSE frames, returned
// as ready-to-send text. An empty string means the event produced no output.
func (s *StreamState) Chunk(ev ir.Event) string {
	if s.finished {
		return ""
	}

	var b strings.Builder
	s.prelude(&b)

	switch ev.Type {
	case ir.EventToken:
		s.ensureBlock(&b, "text")
		s.writeDelta(&b, anthropic.BlockDelta{Type: "text_delta", Text: ev.Content})

	case ir.EventReasoning, ir.EventReasoningSummary:
		s.ensureBlock(&b, "thinking")
		if ev.Signature != "" {
			s.writeDelta(&b, anthropic.BlockDelta{Type: "signature_delta", Signature: ev.Signature})
		}
		text := ev.Reasoning
		if ev.Type == ir.EventReasoningSummary {
			text = ev.Summary
		}
		if text != "" {
			s.writeDelta(&b, anthropic.BlockDelta{Type: "thinking_delta", Thinking: text})
		}

	case ir.EventToolCall:
		s.openToolBlock(&b, ev)

	case ir.EventToolCallDelta:
		s.toolDelta(&b, ev)

	case ir.EventFinish:
		s.finish(&b, ev)

	case ir.EventError:
		data, _ := json.Marshal(anthropic.ErrorEvent{
			Type:  "error",
			Error: anthropic.APIError{Type: "api_error", Message: ev.Error},
		})
		b.WriteString(sse.Format("error", string(data)))
	}

	return b.String()
}

func (s *StreamState) prelude(b *strings.Builder) {
	if s.started {
		return
	}
	s.started = true
	data, _ := json.Marshal(anthropic.MessageStartEvent{
		Type: "message_start",
		Message: anthropic.MessagesResponse{
			ID:      s.MessageID,
			Type:    "message",
			Role:    "assistant",
			Model:   s.Model,
			Content: []anthropic.ContentPart{},
			Usage:   anthropic.Usage{},
		},
	})
	b.WriteString(sse.Format("message_start", string(data)))
}

// ensureBlock opens a block of the wanted kind, closing whatever else is
// open first.
func (s *StreamState) ensureBlock(b *strings.Builder, kind string) {
	if s.openIndex >= 0 && s.openKind == kind {
		return
	}
	s.closeOpenBlock(b)

	idx := s.nextIndex
	s.nextIndex++
	s.openIndex = idx
	s.openKind = kind

	block := anthropic.ContentPart{Type: "text"}
	if kind == "thinking" {
		block = anthropic.ContentPart{Type: "thinking"}
	}
	data, _ := json.Marshal(anthropic.ContentBlockStartEvent{
		Type:         "content_block_start",
		Index:        idx,
		ContentBlock: block,
	})
	b.WriteString(sse.Format("content_block_start", string(data)))
}

func (s *StreamState) openToolBlock(b *strings.Builder, ev ir.Event) {
	if _, seen := s.tools[ev.Index]; seen {
		// Repeated seed for a tracked slot degenerates to a delta.
		s.toolDelta(b, ev)
		return
	}

	id, name := "", ""
	var fragment string
	if ev.ToolCall != nil {
		id, name, fragment = ev.ToolCall.ID, ev.ToolCall.Name, ev.ToolCall.Arguments
	}
	if id == "" {
		id = "toolu_" + uuid.NewString()
	}
	slot := &toolSlot{id: id, name: name}
	s.tools[ev.Index] = slot
	s.sawToolCall = true
	s.startToolBlock(b, slot)

	if fragment != "" {
		s.writeDeltaAt(b, slot.wireIdx, anthropic.BlockDelta{Type: "input_json_delta", PartialJSON: fragment})
	}
}

// startToolBlock opens a tool_use block for the slot, closing whatever else
// is open. Used both for fresh seeds and to reopen a slot whose block another
// event closed mid-call.
func (s *StreamState) startToolBlock(b *strings.Builder, slot *toolSlot) {
	s.closeOpenBlock(b)

	idx := s.nextIndex
	s.nextIndex++
	s.openIndex = idx
	s.openKind = "tool"
	slot.wireIdx = idx

	data, _ := json.Marshal(anthropic.ContentBlockStartEvent{
		Type:  "content_block_start",
		Index: idx,
		ContentBlock: anthropic.ContentPart{
			Type:  "tool_use",
			ID:    slot.id,
			Name:  slot.name,
			Input: map[string]any{},
		},
	})
	b.WriteString(sse.Format("content_block_start", string(data)))
}

func (s *StreamState) toolDelta(b *strings.Builder, ev ir.Event) {
	if ev.ToolCall == nil {
		return
	}
	slot, tracked := s.tools[ev.Index]
	if !tracked {
		// A fragment for an unseeded slot opens a block so no argument text
		// is lost; a bare completion for an unknown slot is dropped.
		if ev.ToolCall.Arguments == "" {
			return
		}
		s.openToolBlock(b, ir.Event{Type: ir.EventToolCall, Index: ev.Index, ToolCall: &ir.ToolCall{
			Arguments: ev.ToolCall.Arguments,
		}})
		slot = s.tools[ev.Index]
	} else if ev.ToolCall.Arguments != "" {
		// Another block may have closed this slot's block mid-call; reopen
		// it under a fresh index so no argument text is lost.
		if s.openIndex != slot.wireIdx || s.openKind != "tool" {
			s.startToolBlock(b, slot)
		}
		s.writeDeltaAt(b, slot.wireIdx, anthropic.BlockDelta{Type: "input_json_delta", PartialJSON: ev.ToolCall.Arguments})
	}

	if ev.ToolCall.IsComplete && s.openIndex == slot.wireIdx && s.openKind == "tool" {
		s.closeOpenBlock(b)
	}
}

func (s *StreamState) closeOpenBlock(b *strings.Builder) {
	if s.openIndex < 0 {
		return
	}
	data, _ := json.Marshal(anthropic.ContentBlockStopEvent{
		Type:  "content_block_stop",
		Index: s.openIndex,
	})
	b.WriteString(sse.Format("content_block_stop", string(data)))
	s.openIndex = -1
	s.openKind = ""
}

func (s *StreamState) finish(b *strings.Builder, ev ir.Event) {
	s.finished = true
	s.closeOpenBlock(b)

	stopReason := "end_turn"
	if s.sawToolCall {
		stopReason = "tool_use"
	} else if ev.FinishReason != "" {
		stopReason = ir.FinishToClaude(ev.FinishReason)
	}

	if ev.Usage != nil {
		s.usage = ev.Usage
	}
	var usage *anthropic.DeltaUsage
	if s.usage != nil {
		usage = &anthropic.DeltaUsage{OutputTokens: s.usage.CompletionTokens}
	}

	data, _ := json.Marshal(anthropic.MessageDeltaEvent{
		Type:  "message_delta",
		Delta: anthropic.MessageDelta{StopReason: stopReason},
		Usage: usage,
	})
	b.WriteString(sse.Format("message_delta", string(data)))

	stop, _ := json.Marshal(anthropic.MessageStopEvent{Type: "message_stop"})
	b.WriteString(sse.Format("message_stop", string(stop)))
}

func (s *StreamState) writeDelta(b *strings.Builder, delta anthropic.BlockDelta) {
	s.writeDeltaAt(b, s.openIndex, delta)
}

func (s *StreamState) writeDeltaAt(b *strings.Builder, idx int, delta anthropic.BlockDelta) {
	data, _ := json.Marshal(anthropic.ContentBlockDeltaEvent{
		Type:  "content_block_delta",
		Index: idx,
		Delta: delta,
	})
	b.WriteString(sse.Format("content_block_delta", string(data)))
}
