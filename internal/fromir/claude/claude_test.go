package claude

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tjfontaine/wirebridge/internal/ir"
	"github.com/tjfontaine/wirebridge/internal/sse"
)

func TestGenerateRequest(t *testing.T) {
	temp := 0.7
	maxTok := 2000
	req := &ir.Request{
		Model:       "claude-sonnet-4",
		Temperature: &temp,
		MaxTokens:   &maxTok,
		Messages: []ir.Message{
			{Role: ir.RoleSystem, Content: []ir.ContentPart{ir.TextPart("be terse")}},
			{Role: ir.RoleUser, Content: []ir.ContentPart{ir.TextPart("hi")}},
			{Role: ir.RoleAssistant, ToolCalls: []ir.ToolCall{
				{ID: "call_1", Name: "search", Arguments: `{"query":"foo"}`, IsComplete: true},
			}},
			{Role: ir.RoleTool, Content: []ir.ContentPart{
				ir.ToolResultPart("call_1", "found", false),
			}},
		},
	}

	out := GenerateRequest(req)
	if out.MaxTokens != 2000 {
		t.Errorf("max_tokens = %d", out.MaxTokens)
	}
	if out.System.Text() != "be terse" {
		t.Errorf("system = %+v", out.System)
	}
	if len(out.Messages) != 3 {
		t.Fatalf("messages = %d", len(out.Messages))
	}

	asst := out.Messages[1]
	if asst.Role != "assistant" || asst.Content[0].Type != "tool_use" {
		t.Errorf("assistant message = %+v", asst)
	}
	if input, ok := asst.Content[0].Input.(map[string]any); !ok || input["query"] != "foo" {
		t.Errorf("tool input = %+v", asst.Content[0].Input)
	}

	// A tool turn becomes a user message carrying a tool_result block.
	toolMsg := out.Messages[2]
	if toolMsg.Role != "user" || toolMsg.Content[0].Type != "tool_result" ||
		toolMsg.Content[0].ToolUseID != "call_1" {
		t.Errorf("tool turn = %+v", toolMsg)
	}
}

func TestGenerateRequestThinking(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *ir.ThinkingConfig
		wantType   string
		wantBudget int
	}{
		{"explicit budget", &ir.ThinkingConfig{Budget: 2048}, "enabled", 2048},
		{"disabled", &ir.ThinkingConfig{Budget: 0}, "disabled", 0},
		{"provider default", &ir.ThinkingConfig{Budget: -1}, "enabled", defaultThinkingBudget},
		{"effort overrides budget", &ir.ThinkingConfig{Budget: 100, Effort: ir.EffortHigh}, "enabled", 24576},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := GenerateRequest(&ir.Request{Model: "m", Thinking: tt.cfg})
			if out.Thinking == nil {
				t.Fatal("thinking missing")
			}
			if out.Thinking.Type != tt.wantType || out.Thinking.BudgetTokens != tt.wantBudget {
				t.Errorf("thinking = %+v, want %s/%d", out.Thinking, tt.wantType, tt.wantBudget)
			}
		})
	}
}

func TestGenerateResponseDropsUsageDetails(t *testing.T) {
	resp := &ir.Response{
		Model:        "claude-sonnet-4",
		FinishReason: ir.FinishStop,
		Message: ir.Message{
			Role:    ir.RoleAssistant,
			Content: []ir.ContentPart{ir.TextPart("hello")},
		},
		Usage: &ir.Usage{
			PromptTokens:     10,
			CompletionTokens: 60,
			TotalTokens:      70,
			ReasoningTokens:  50,
		},
	}
	out := GenerateResponse(resp)
	if out.Usage.InputTokens != 10 || out.Usage.OutputTokens != 60 {
		t.Errorf("usage = %+v", out.Usage)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "reasoning") {
		t.Errorf("reasoning detail leaked into wire payload: %s", raw)
	}
}

// frameTypes decodes the type field of every frame in raw wire text.
func frameTypes(t *testing.T, raw string) []string {
	t.Helper()
	var types []string
	for _, f := range sse.Parse(raw) {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(f.Data), &env); err != nil {
			t.Fatalf("bad frame data %q: %v", f.Data, err)
		}
		types = append(types, env.Type)
	}
	return types
}

func TestStreamTextLifecycle(t *testing.T) {
	s := NewStreamState("claude-sonnet-4")

	first := s.Chunk(ir.Event{Type: ir.EventToken, Content: "Hi"})
	types := frameTypes(t, first)
	want := []string{"message_start", "content_block_start", "content_block_delta"}
	if len(types) != len(want) {
		t.Fatalf("frames = %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("frame %d = %q, want %q", i, types[i], want[i])
		}
	}

	// Subsequent tokens extend the open block without reopening it.
	second := s.Chunk(ir.Event{Type: ir.EventToken, Content: " there"})
	if types := frameTypes(t, second); len(types) != 1 || types[0] != "content_block_delta" {
		t.Errorf("second token frames = %v", types)
	}

	done := s.Chunk(ir.Event{Type: ir.EventFinish, FinishReason: ir.FinishStop})
	types = frameTypes(t, done)
	want = []string{"content_block_stop", "message_delta", "message_stop"}
	if len(types) != len(want) {
		t.Fatalf("finish frames = %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("finish frame %d = %q, want %q", i, types[i], want[i])
		}
	}

	// Anything after the terminal event is dropped.
	if got := s.Chunk(ir.Event{Type: ir.EventFinish}); got != "" {
		t.Errorf("post-finish output = %q", got)
	}
}

func TestStreamSingleOpenBlock(t *testing.T) {
	s := NewStreamState("m")
	var all strings.Builder
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventReasoning, Reasoning: "hmm"}))
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventToken, Content: "Hi"}))
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventToolCall, Index: 0, ToolCall: &ir.ToolCall{ID: "t1", Name: "f"}}))
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventFinish, FinishReason: ir.FinishStop}))

	open := 0
	for _, f := range sse.Parse(all.String()) {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(f.Data), &env); err != nil {
			t.Fatal(err)
		}
		switch env.Type {
		case "content_block_start":
			open++
			if open > 1 {
				t.Fatal("more than one content block open")
			}
		case "content_block_stop":
			open--
		}
	}
	if open != 0 {
		t.Errorf("unbalanced blocks: %d still open", open)
	}
}

func TestStreamToolCallStopReason(t *testing.T) {
	s := NewStreamState("m")
	s.Chunk(ir.Event{Type: ir.EventToolCall, Index: 0, ToolCall: &ir.ToolCall{ID: "t1", Name: "search"}})
	s.Chunk(ir.Event{Type: ir.EventToolCallDelta, Index: 0, ToolCall: &ir.ToolCall{Arguments: `{"q":1}`}})
	done := s.Chunk(ir.Event{Type: ir.EventFinish, FinishReason: ir.FinishStop})

	var sawDelta bool
	for _, f := range sse.Parse(done) {
		if f.Event != "message_delta" {
			continue
		}
		sawDelta = true
		var ev struct {
			Delta struct {
				StopReason string `json:"stop_reason"`
			} `json:"delta"`
		}
		if err := json.Unmarshal([]byte(f.Data), &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Delta.StopReason != "tool_use" {
			t.Errorf("stop_reason = %q, want tool_use", ev.Delta.StopReason)
		}
	}
	if !sawDelta {
		t.Fatal("no message_delta frame emitted")
	}
}

func TestStreamToolArgsSurviveInterleavedText(t *testing.T) {
	s := NewStreamState("m")
	var all strings.Builder
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventToolCall, Index: 0, ToolCall: &ir.ToolCall{ID: "call_1", Name: "search"}}))
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventToolCallDelta, Index: 0, ToolCall: &ir.ToolCall{Arguments: `{"q":`}}))
	// A text token closes the tool block; later fragments must still land.
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventToken, Content: "note"}))
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventToolCallDelta, Index: 0, ToolCall: &ir.ToolCall{Arguments: `"x"}`}}))
	all.WriteString(s.Chunk(ir.Event{Type: ir.EventFinish, FinishReason: ir.FinishStop}))

	var args strings.Builder
	var reopenedID string
	for _, f := range sse.Parse(all.String()) {
		switch f.Event {
		case "content_block_delta":
			var ev struct {
				Delta struct {
					Type        string `json:"type"`
					PartialJSON string `json:"partial_json"`
				} `json:"delta"`
			}
			if err := json.Unmarshal([]byte(f.Data), &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Delta.Type == "input_json_delta" {
				args.WriteString(ev.Delta.PartialJSON)
			}
		case "content_block_start":
			var ev struct {
				ContentBlock struct {
					Type string `json:"type"`
					ID   string `json:"id"`
				} `json:"content_block"`
			}
			if err := json.Unmarshal([]byte(f.Data), &ev); err != nil {
				t.Fatal(err)
			}
			if ev.ContentBlock.Type == "tool_use" {
				reopenedID = ev.ContentBlock.ID
			}
		}
	}

	if got := args.String(); got != `{"q":"x"}` {
		t.Errorf("accumulated partial_json = %q, want %q", got, `{"q":"x"}`)
	}
	if reopenedID != "call_1" {
		t.Errorf("reopened block id = %q, want call_1", reopenedID)
	}
}

func TestStreamOrphanCompletionIgnored(t *testing.T) {
	s := NewStreamState("m")
	s.Chunk(ir.Event{Type: ir.EventToken, Content: "Hi"})
	// Completion marker for a tool slot that was never seeded.
	if got := s.Chunk(ir.Event{Type: ir.EventToolCallDelta, Index: 5, ToolCall: &ir.ToolCall{IsComplete: true}}); got != "" {
		t.Errorf("orphan completion produced output: %q", got)
	}
}

func TestStreamLengthFinish(t *testing.T) {
	s := NewStreamState("m")
	s.Chunk(ir.Event{Type: ir.EventToken, Content: "x"})
	done := s.Chunk(ir.Event{Type: ir.EventFinish, FinishReason: ir.FinishLength})
	if !strings.Contains(done, `"stop_reason":"max_tokens"`) {
		t.Errorf("finish frames = %q", done)
	}
}
