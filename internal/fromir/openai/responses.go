package openai

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
	"github.com/tjfontaine/wirebridge/internal/sse"
)

// ResponsesStream renders canonical events as a Responses API event stream.
// Output items are sequential, never overlapping: an open message item is
// closed before a function-call item starts, and a finish event force-closes
// everything before response.completed. Every frame carries the next
// sequence number.
type ResponsesStream struct {
	ID        string
	Model     string
	CreatedAt int64

	seq      int
	started  bool
	finished bool

	nextOutput int
	msg        *openMessage
	reasoning  *openReasoning
	tools      map[int]*openToolCall

	output []openai.ResponsesItem
	usage  *openai.ResponsesUsage
}

type openMessage struct {
	id    string
	index int
	text  strings.Builder
}

type openReasoning struct {
	id      string
	index   int
	summary strings.Builder
}

type openToolCall struct {
	id     string
	callID string
	name   string
	index  int
	custom bool
	args   strings.Builder
}

// NewResponsesStream returns a fresh state for one stream.
func NewResponsesStream(model string) *ResponsesStream {
	return &ResponsesStream{
		ID:        "resp_" + uuid.NewString(),
		Model:     model,
		CreatedAt: time.Now().Unix(),
		tools:     map[int]*openToolCall{},
	}
}

// Chunk converts one canonical event into zero or more SSE frames. An empty
// string means the event produced no output.
func (s *ResponsesStream) Chunk(ev ir.Event) string {
	if s.finished {
		return ""
	}

	var b strings.Builder
	s.prelude(&b)

	switch ev.Type {
	case ir.EventToken:
		s.closeReasoning(&b)
		s.ensureMessage(&b)
		s.msg.text.WriteString(ev.Content)
		s.frame(&b, "response.output_text.delta", &openai.TextDeltaEvent{
			Type:        "response.output_text.delta",
			ItemID:      s.msg.id,
			OutputIndex: s.msg.index,
			Delta:       ev.Content,
		})

	case ir.EventReasoning, ir.EventReasoningSummary:
		text := ev.Reasoning
		if ev.Type == ir.EventReasoningSummary {
			text = ev.Summary
		}
		if text == "" {
			break
		}
		s.closeMessage(&b)
		s.ensureReasoning(&b)
		s.reasoning.summary.WriteString(text)
		s.frame(&b, "response.reasoning_summary_text.delta", &openai.TextDeltaEvent{
			Type:        "response.reasoning_summary_text.delta",
			ItemID:      s.reasoning.id,
			OutputIndex: s.reasoning.index,
			Delta:       text,
		})

	case ir.EventToolCall:
		s.openTool(&b, ev)

	case ir.EventToolCallDelta:
		s.toolDelta(&b, ev)

	case ir.EventFinish:
		s.finish(&b, ev)

	case ir.EventError:
		s.finished = true
		s.frame(&b, "error", &openai.ErrorEvent{
			Type:  "error",
			Error: openai.ResponsesError{Message: ev.Error},
		})
	}

	return b.String()
}

// frame marshals payload after stamping the sequence number and appends the
// rendered SSE frame.
func (s *ResponsesStream) frame(b *strings.Builder, event string, payload any) {
	switch p := payload.(type) {
	case *openai.ResponseLifecycleEvent:
		p.SequenceNumber = s.nextSeq()
	case *openai.OutputItemEvent:
		p.SequenceNumber = s.nextSeq()
	case *openai.ContentPartEvent:
		p.SequenceNumber = s.nextSeq()
	case *openai.TextDeltaEvent:
		p.SequenceNumber = s.nextSeq()
	case *openai.TextDoneEvent:
		p.SequenceNumber = s.nextSeq()
	case *openai.ArgumentsDeltaEvent:
		p.SequenceNumber = s.nextSeq()
	case *openai.ArgumentsDoneEvent:
		p.SequenceNumber = s.nextSeq()
	case *openai.ErrorEvent:
		p.SequenceNumber = s.nextSeq()
	}
	data, _ := json.Marshal(payload)
	b.WriteString(sse.Format(event, string(data)))
}

func (s *ResponsesStream) nextSeq() int {
	n := s.seq
	s.seq++
	return n
}

func (s *ResponsesStream) snapshot(status string) openai.Response {
	out := s.output
	if out == nil {
		out = []openai.ResponsesItem{}
	}
	return openai.Response{
		ID:        s.ID,
		Object:    "response",
		CreatedAt: s.CreatedAt,
		Status:    status,
		Model:     s.Model,
		Output:    out,
		Usage:     s.usage,
	}
}

func (s *ResponsesStream) prelude(b *strings.Builder) {
	if s.started {
		return
	}
	s.started = true
	s.frame(b, "response.created", &openai.ResponseLifecycleEvent{
		Type:     "response.created",
		Response: s.snapshot("in_progress"),
	})
	s.frame(b, "response.in_progress", &openai.ResponseLifecycleEvent{
		Type:     "response.in_progress",
		Response: s.snapshot("in_progress"),
	})
}

func (s *ResponsesStream) ensureMessage(b *strings.Builder) {
	if s.msg != nil {
		return
	}
	s.msg = &openMessage{id: "msg_" + uuid.NewString(), index: s.nextOutput}
	s.nextOutput++
	s.frame(b, "response.output_item.added", &openai.OutputItemEvent{
		Type:        "response.output_item.added",
		OutputIndex: s.msg.index,
		Item: openai.ResponsesItem{
			Type:    "message",
			ID:      s.msg.id,
			Role:    "assistant",
			Status:  "in_progress",
			Content: openai.ResponsesMessageContent{},
		},
	})
	s.frame(b, "response.content_part.added", &openai.ContentPartEvent{
		Type:        "response.content_part.added",
		ItemID:      s.msg.id,
		OutputIndex: s.msg.index,
		Part:        openai.ResponsesContentPart{Type: "output_text", Text: ""},
	})
}

func (s *ResponsesStream) closeMessage(b *strings.Builder) {
	if s.msg == nil {
		return
	}
	text := s.msg.text.String()
	s.frame(b, "response.output_text.done", &openai.TextDoneEvent{
		Type:        "response.output_text.done",
		ItemID:      s.msg.id,
		OutputIndex: s.msg.index,
		Text:        text,
	})
	s.frame(b, "response.content_part.done", &openai.ContentPartEvent{
		Type:        "response.content_part.done",
		ItemID:      s.msg.id,
		OutputIndex: s.msg.index,
		Part:        openai.ResponsesContentPart{Type: "output_text", Text: text},
	})
	item := openai.ResponsesItem{
		Type:    "message",
		ID:      s.msg.id,
		Role:    "assistant",
		Status:  "completed",
		Content: openai.ResponsesMessageContent{{Type: "output_text", Text: text}},
	}
	s.frame(b, "response.output_item.done", &openai.OutputItemEvent{
		Type:        "response.output_item.done",
		OutputIndex: s.msg.index,
		Item:        item,
	})
	s.output = append(s.output, item)
	s.msg = nil
}

func (s *ResponsesStream) ensureReasoning(b *strings.Builder) {
	if s.reasoning != nil {
		return
	}
	s.reasoning = &openReasoning{id: "rs_" + uuid.NewString(), index: s.nextOutput}
	s.nextOutput++
	s.frame(b, "response.output_item.added", &openai.OutputItemEvent{
		Type:        "response.output_item.added",
		OutputIndex: s.reasoning.index,
		Item: openai.ResponsesItem{
			Type:    "reasoning",
			ID:      s.reasoning.id,
			Status:  "in_progress",
			Summary: []openai.ResponsesSummaryPart{},
		},
	})
}

func (s *ResponsesStream) closeReasoning(b *strings.Builder) {
	if s.reasoning == nil {
		return
	}
	text := s.reasoning.summary.String()
	s.frame(b, "response.reasoning_summary_text.done", &openai.TextDoneEvent{
		Type:        "response.reasoning_summary_text.done",
		ItemID:      s.reasoning.id,
		OutputIndex: s.reasoning.index,
		Text:        text,
	})
	item := openai.ResponsesItem{
		Type:    "reasoning",
		ID:      s.reasoning.id,
		Status:  "completed",
		Summary: []openai.ResponsesSummaryPart{{Type: "summary_text", Text: text}},
	}
	s.frame(b, "response.output_item.done", &openai.OutputItemEvent{
		Type:        "response.output_item.done",
		OutputIndex: s.reasoning.index,
		Item:        item,
	})
	s.output = append(s.output, item)
	s.reasoning = nil
}

func (s *ResponsesStream) openTool(b *strings.Builder, ev ir.Event) {
	if _, seen := s.tools[ev.Index]; seen {
		s.toolDelta(b, ev)
		return
	}
	s.closeMessage(b)
	s.closeReasoning(b)

	tool := &openToolCall{
		id:    "item_" + uuid.NewString(),
		index: s.nextOutput,
	}
	s.nextOutput++
	var fragment string
	if ev.ToolCall != nil {
		tool.callID = ev.ToolCall.ID
		tool.name = ev.ToolCall.Name
		tool.custom = ev.ToolCall.IsCustom
		fragment = ev.ToolCall.Arguments
	}
	if tool.callID == "" {
		tool.callID = "call_" + uuid.NewString()
	}
	s.tools[ev.Index] = tool

	itemType := "function_call"
	if tool.custom {
		itemType = "custom_tool_call"
	}
	s.frame(b, "response.output_item.added", &openai.OutputItemEvent{
		Type:        "response.output_item.added",
		OutputIndex: tool.index,
		Item: openai.ResponsesItem{
			Type:   itemType,
			ID:     tool.id,
			Status: "in_progress",
			CallID: tool.callID,
			Name:   tool.name,
		},
	})
	if fragment != "" {
		s.writeToolDelta(b, tool, fragment)
	}
}

func (s *ResponsesStream) toolDelta(b *strings.Builder, ev ir.Event) {
	if ev.ToolCall == nil {
		return
	}
	tool, tracked := s.tools[ev.Index]
	if !tracked {
		if ev.ToolCall.Arguments == "" {
			return
		}
		s.openTool(b, ir.Event{Type: ir.EventToolCall, Index: ev.Index, ToolCall: &ir.ToolCall{
			Arguments: ev.ToolCall.Arguments,
			IsCustom:  ev.ToolCall.IsCustom,
		}})
		tool = s.tools[ev.Index]
	} else if ev.ToolCall.Arguments != "" {
		s.writeToolDelta(b, tool, ev.ToolCall.Arguments)
	}

	if ev.ToolCall.IsComplete {
		s.closeTool(b, ev.Index, tool)
	}
}

func (s *ResponsesStream) writeToolDelta(b *strings.Builder, tool *openToolCall, fragment string) {
	tool.args.WriteString(fragment)
	event := "response.function_call_arguments.delta"
	if tool.custom {
		event = "response.custom_tool_call_input.delta"
	}
	s.frame(b, event, &openai.ArgumentsDeltaEvent{
		Type:        event,
		ItemID:      tool.id,
		OutputIndex: tool.index,
		Delta:       fragment,
	})
}

func (s *ResponsesStream) closeTool(b *strings.Builder, index int, tool *openToolCall) {
	args := tool.args.String()
	item := openai.ResponsesItem{
		ID:     tool.id,
		Status: "completed",
		CallID: tool.callID,
		Name:   tool.name,
	}
	if tool.custom {
		s.frame(b, "response.custom_tool_call_input.done", &openai.ArgumentsDoneEvent{
			Type:        "response.custom_tool_call_input.done",
			ItemID:      tool.id,
			OutputIndex: tool.index,
			Input:       args,
		})
		item.Type = "custom_tool_call"
		item.Input = args
	} else {
		if strings.TrimSpace(args) == "" {
			args = "{}"
		}
		s.frame(b, "response.function_call_arguments.done", &openai.ArgumentsDoneEvent{
			Type:        "response.function_call_arguments.done",
			ItemID:      tool.id,
			OutputIndex: tool.index,
			Arguments:   args,
		})
		item.Type = "function_call"
		item.Arguments = args
	}
	s.frame(b, "response.output_item.done", &openai.OutputItemEvent{
		Type:        "response.output_item.done",
		OutputIndex: tool.index,
		Item:        item,
	})
	s.output = append(s.output, item)
	delete(s.tools, index)
}

func (s *ResponsesStream) finish(b *strings.Builder, ev ir.Event) {
	s.finished = true
	s.closeMessage(b)
	s.closeReasoning(b)
	indices := make([]int, 0, len(s.tools))
	for index := range s.tools {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	for _, index := range indices {
		s.closeTool(b, index, s.tools[index])
	}

	if ev.Usage != nil {
		s.usage = usageToResponses(ev.Usage)
	}
	s.frame(b, "response.completed", &openai.ResponseLifecycleEvent{
		Type:     "response.completed",
		Response: s.snapshot("completed"),
	})
}

func usageToResponses(u *ir.Usage) *openai.ResponsesUsage {
	if u == nil {
		return nil
	}
	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}
	out := &openai.ResponsesUsage{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  total,
	}
	if u.CachedTokens > 0 {
		out.InputTokensDetails = &openai.InputTokensDetails{CachedTokens: u.CachedTokens}
	}
	if u.ReasoningTokens > 0 {
		out.OutputTokensDetails = &openai.OutputTokensDetails{ReasoningTokens: u.ReasoningTokens}
	}
	return out
}
