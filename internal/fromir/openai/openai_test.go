package openai

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
	"github.com/tjfontaine/wirebridge/internal/sse"
)

func TestIsReasoningModel(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"o1-preview", true},
		{"O3-mini", true},
		{"o3", true},
		{"gpt-4o", false},
		{"claude-sonnet-4", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsReasoningModel(tt.model); got != tt.want {
			t.Errorf("IsReasoningModel(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}

func TestGenerateRequestTokenFieldSelection(t *testing.T) {
	maxTok := 1000
	req := &ir.Request{Model: "o3-mini", MaxTokens: &maxTok, Thinking: &ir.ThinkingConfig{Budget: 10000}}
	out := GenerateRequest(req)
	if out.MaxTokens != 0 || out.MaxCompletionTokens != 1000 {
		t.Errorf("reasoning model tokens = max %d / completion %d", out.MaxTokens, out.MaxCompletionTokens)
	}
	if out.ReasoningEffort != "high" {
		t.Errorf("reasoning_effort = %q, want high", out.ReasoningEffort)
	}

	req = &ir.Request{Model: "gpt-4o", MaxTokens: &maxTok, Thinking: &ir.ThinkingConfig{Budget: 10000}}
	out = GenerateRequest(req)
	if out.MaxTokens != 1000 || out.MaxCompletionTokens != 0 {
		t.Errorf("standard model tokens = max %d / completion %d", out.MaxTokens, out.MaxCompletionTokens)
	}
	if out.ReasoningEffort != "" {
		t.Errorf("standard model got reasoning_effort %q", out.ReasoningEffort)
	}
}

func TestGenerateRequestDisabledThinking(t *testing.T) {
	req := &ir.Request{Model: "o3", Thinking: &ir.ThinkingConfig{Budget: 0}}
	raw, err := json.Marshal(GenerateRequest(req))
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"reasoning_effort", "\"reasoning\"", "\"thinking\""} {
		if strings.Contains(string(raw), field) {
			t.Errorf("disabled thinking leaked %s: %s", field, raw)
		}
	}
}

func TestGenerateRequestFlattensSingleText(t *testing.T) {
	req := &ir.Request{Model: "m", Messages: []ir.Message{
		{Role: ir.RoleUser, Content: []ir.ContentPart{ir.TextPart("hello")}},
	}}
	raw, err := json.Marshal(GenerateRequest(req))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"content":"hello"`) {
		t.Errorf("single text content not flattened: %s", raw)
	}
}

func TestGenerateRequestToolResultFanOut(t *testing.T) {
	req := &ir.Request{Model: "m", Messages: []ir.Message{
		{Role: ir.RoleTool, Content: []ir.ContentPart{
			ir.ToolResultPart("call_1", "one", false),
			ir.ToolResultPart("call_2", "two", false),
		}},
	}}
	out := GenerateRequest(req)
	if len(out.Messages) != 2 {
		t.Fatalf("messages = %d", len(out.Messages))
	}
	if out.Messages[0].ToolCallID != "call_1" || out.Messages[1].ToolCallID != "call_2" {
		t.Errorf("tool messages = %+v", out.Messages)
	}
}

func TestChatStreamLifecycle(t *testing.T) {
	s := NewChatStream("gpt-4o")

	out := s.Chunk(ir.Event{Type: ir.EventToken, Content: "Hi"})
	frames := sse.Parse(out)
	if len(frames) != 1 {
		t.Fatalf("frames = %+v", frames)
	}
	var chunk openai.ChatCompletionChunk
	if err := json.Unmarshal([]byte(frames[0].Data), &chunk); err != nil {
		t.Fatal(err)
	}
	if chunk.Choices[0].Delta.Content != "Hi" || chunk.Choices[0].Delta.Role != "assistant" {
		t.Errorf("delta = %+v", chunk.Choices[0].Delta)
	}

	out = s.Chunk(ir.Event{Type: ir.EventFinish, FinishReason: ir.FinishStop})
	frames = sse.Parse(out)
	if len(frames) != 2 {
		t.Fatalf("finish frames = %+v", frames)
	}
	if err := json.Unmarshal([]byte(frames[0].Data), &chunk); err != nil {
		t.Fatal(err)
	}
	if chunk.Choices[0].FinishReason == nil || *chunk.Choices[0].FinishReason != "stop" {
		t.Errorf("finish_reason = %v", chunk.Choices[0].FinishReason)
	}
	if frames[1].Data != "[DONE]" {
		t.Errorf("terminator = %q", frames[1].Data)
	}

	if got := s.Chunk(ir.Event{Type: ir.EventToken, Content: "late"}); got != "" {
		t.Errorf("post-finish output = %q", got)
	}
}

func TestChatStreamReasoningSignatureField(t *testing.T) {
	s := NewChatStream("m")
	out := s.Chunk(ir.Event{Type: ir.EventReasoning, Reasoning: "hmm", Signature: "sig-1"})
	frames := sse.Parse(out)
	if len(frames) != 1 {
		t.Fatalf("frames = %+v", frames)
	}
	if !strings.Contains(frames[0].Data, `"reasoning_signature":"sig-1"`) {
		t.Errorf("chunk = %s", frames[0].Data)
	}
	var chunk openai.ChatCompletionChunk
	if err := json.Unmarshal([]byte(frames[0].Data), &chunk); err != nil {
		t.Fatal(err)
	}
	if chunk.Choices[0].Delta.ReasoningSignature != "sig-1" {
		t.Errorf("delta = %+v", chunk.Choices[0].Delta)
	}
}

func TestChatStreamCompletionMarkerSilent(t *testing.T) {
	s := NewChatStream("m")
	s.Chunk(ir.Event{Type: ir.EventToken, Content: "x"})
	// A bare block-closure marker has no chat wire shape.
	if got := s.Chunk(ir.Event{Type: ir.EventToolCallDelta, Index: 0, ToolCall: &ir.ToolCall{IsComplete: true}}); got != "" {
		t.Errorf("closure marker output = %q", got)
	}
}

func TestResponsesStreamLifecycle(t *testing.T) {
	s := NewResponsesStream("gpt-4o")

	var all strings.Builder
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventReasoningSummary, Summary: "think"}))
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventToken, Content: "Hi"}))
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventToolCall, Index: 0, ToolCall: &ir.ToolCall{ID: "call_1", Name: "search"}}))
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventToolCallDelta, Index: 0, ToolCall: &ir.ToolCall{Arguments: `{"q":1}`}}))
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventFinish, FinishReason: ir.FinishToolCalls, Usage: &ir.Usage{
		PromptTokens: 5, CompletionTokens: 9, TotalTokens: 14, ReasoningTokens: 3,
	}}))

	frames := sse.Parse(all.String())
	if frames[0].Event != "response.created" || frames[1].Event != "response.in_progress" {
		t.Fatalf("prelude = %q %q", frames[0].Event, frames[1].Event)
	}

	// Sequence numbers increase by one per frame.
	lastSeq := -1
	for _, f := range frames {
		var env struct {
			SequenceNumber int `json:"sequence_number"`
		}
		if err := json.Unmarshal([]byte(f.Data), &env); err != nil {
			t.Fatalf("frame %q: %v", f.Data, err)
		}
		if env.SequenceNumber != lastSeq+1 {
			t.Errorf("sequence %d after %d (event %s)", env.SequenceNumber, lastSeq, f.Event)
		}
		lastSeq = env.SequenceNumber
	}

	// The message item closes before the function_call item opens.
	var order []string
	for _, f := range frames {
		switch f.Event {
		case "response.output_item.added", "response.output_item.done":
			var ev openai.OutputItemEvent
			if err := json.Unmarshal([]byte(f.Data), &ev); err != nil {
				t.Fatal(err)
			}
			order = append(order, f.Event+":"+ev.Item.Type)
		}
	}
	want := []string{
		"response.output_item.added:reasoning",
		"response.output_item.done:reasoning",
		"response.output_item.added:message",
		"response.output_item.done:message",
		"response.output_item.added:function_call",
		"response.output_item.done:function_call",
	}
	if len(order) != len(want) {
		t.Fatalf("item order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("item order[%d] = %q, want %q", i, order[i], want[i])
		}
	}

	last := frames[len(frames)-1]
	if last.Event != "response.completed" {
		t.Fatalf("last event = %q", last.Event)
	}
	var completed openai.ResponseLifecycleEvent
	if err := json.Unmarshal([]byte(last.Data), &completed); err != nil {
		t.Fatal(err)
	}
	if completed.Response.Status != "completed" || len(completed.Response.Output) != 3 {
		t.Errorf("completed response = %+v", completed.Response)
	}
	if completed.Response.Usage == nil ||
		completed.Response.Usage.OutputTokensDetails == nil ||
		completed.Response.Usage.OutputTokensDetails.ReasoningTokens != 3 {
		t.Errorf("usage = %+v", completed.Response.Usage)
	}
	fc := completed.Response.Output[2]
	if fc.Type != "function_call" || fc.Arguments != `{"q":1}` || fc.CallID != "call_1" {
		t.Errorf("function_call item = %+v", fc)
	}

	if got := s.Chunk(ir.Event{Type: ir.EventToken, Content: "late"}); got != "" {
		t.Errorf("post-completion output = %q", got)
	}
}

func TestResponsesStreamTextDeltaShape(t *testing.T) {
	s := NewResponsesStream("m")
	out := s.Chunk(ir.Event{Type: ir.EventToken, Content: "Hi"})
	var sawDelta bool
	for _, f := range sse.Parse(out) {
		if f.Event != "response.output_text.delta" {
			continue
		}
		sawDelta = true
		var ev openai.TextDeltaEvent
		if err := json.Unmarshal([]byte(f.Data), &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Delta != "Hi" || ev.ItemID == "" {
			t.Errorf("delta event = %+v", ev)
		}
	}
	if !sawDelta {
		t.Fatal("no output_text.delta emitted")
	}
}

func TestGenerateResponseToolCallFinish(t *testing.T) {
	resp := &ir.Response{
		Model:        "gpt-4o",
		FinishReason: ir.FinishStop,
		Message: ir.Message{
			Role:      ir.RoleAssistant,
			ToolCalls: []ir.ToolCall{{ID: "call_1", Name: "f", Arguments: "{}"}},
		},
	}
	out := GenerateResponse(resp)
	if out.Choices[0].FinishReason != "tool_calls" {
		t.Errorf("finish_reason = %q", out.Choices[0].FinishReason)
	}
}

func TestGenerateResponsesResponse(t *testing.T) {
	resp := &ir.Response{
		Model:        "gpt-4o",
		FinishReason: ir.FinishStop,
		Message: ir.Message{
			Role: ir.RoleAssistant,
			Content: []ir.ContentPart{
				ir.ReasoningPart("thinking", "sig"),
				ir.TextPart("answer"),
			},
		},
		Usage: &ir.Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3},
	}
	out := GenerateResponsesResponse(resp)
	if out.Status != "completed" || len(out.Output) != 2 {
		t.Fatalf("response = %+v", out)
	}
	if out.Output[0].Type != "reasoning" || out.Output[1].Type != "message" {
		t.Errorf("output items = %+v", out.Output)
	}
}
