package claude

import (
	"testing"

	"github.com/tjfontaine/wirebridge/internal/ir"
)

func TestParseRequestBasics(t *testing.T) {
	data := []byte(`{
		"model": "claude-sonnet-4",
		"max_tokens": 1000,
		"system": "be terse",
		"messages": [
			{"role": "user", "content": "hello"},
			{"role": "assistant", "content": [
				{"type": "text", "text": "hi"},
				{"type": "tool_use", "id": "toolu_1", "name": "search", "input": {"query": "foo"}}
			]},
			{"role": "user", "content": [
				{"type": "tool_result", "tool_use_id": "toolu_1", "content": "result text"}
			]}
		]
	}`)

	req, err := ParseRequest(data)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Model != "claude-sonnet-4" {
		t.Errorf("model = %q", req.Model)
	}
	if req.MaxTokens == nil || *req.MaxTokens != 1000 {
		t.Errorf("max tokens = %v", req.MaxTokens)
	}
	if len(req.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(req.Messages))
	}
	if req.Messages[0].Role != ir.RoleSystem || ir.MessageText(req.Messages[0]) != "be terse" {
		t.Errorf("system message = %+v", req.Messages[0])
	}
	if req.Messages[1].Role != ir.RoleUser {
		t.Errorf("first turn role = %q", req.Messages[1].Role)
	}

	asst := req.Messages[2]
	if len(asst.ToolCalls) != 1 {
		t.Fatalf("assistant tool calls = %d", len(asst.ToolCalls))
	}
	tc := asst.ToolCalls[0]
	if tc.ID != "toolu_1" || tc.Name != "search" || tc.Arguments != `{"query":"foo"}` || !tc.IsComplete {
		t.Errorf("tool call = %+v", tc)
	}

	// A user message carrying a tool result is reclassified as a tool turn.
	toolTurn := req.Messages[3]
	if toolTurn.Role != ir.RoleTool {
		t.Errorf("tool turn role = %q, want tool", toolTurn.Role)
	}
	if len(toolTurn.Content) != 1 || toolTurn.Content[0].ToolResult == nil ||
		toolTurn.Content[0].ToolResult.ToolCallID != "toolu_1" {
		t.Errorf("tool result = %+v", toolTurn.Content)
	}
}

func TestParseRequestThinking(t *testing.T) {
	tests := []struct {
		name       string
		thinking   string
		wantBudget int
	}{
		{"enabled with budget", `{"type":"enabled","budget_tokens":2048}`, 2048},
		{"enabled without budget", `{"type":"enabled"}`, -1},
		{"disabled", `{"type":"disabled"}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(`{"model":"m","max_tokens":10,"messages":[],"thinking":` + tt.thinking + `}`)
			req, err := ParseRequest(data)
			if err != nil {
				t.Fatalf("ParseRequest: %v", err)
			}
			if req.Thinking == nil {
				t.Fatal("thinking config missing")
			}
			if req.Thinking.Budget != tt.wantBudget {
				t.Errorf("budget = %d, want %d", req.Thinking.Budget, tt.wantBudget)
			}
		})
	}
}

func TestParseRequestCleansToolSchema(t *testing.T) {
	data := []byte(`{"model":"m","max_tokens":10,"messages":[],"tools":[
		{"name":"search","input_schema":{
			"$schema":"http://json-schema.org/draft-07/schema#",
			"type":"object",
			"properties":{"q":{"type":"string","$ref":"#/x"}}
		}}
	]}`)
	req, err := ParseRequest(data)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if len(req.Tools) != 1 {
		t.Fatalf("tools = %d", len(req.Tools))
	}
	schema := req.Tools[0].Parameters
	if _, ok := schema["$schema"]; ok {
		t.Error("$schema survived cleaning")
	}
	props := schema["properties"].(map[string]any)
	q := props["q"].(map[string]any)
	if _, ok := q["$ref"]; ok {
		t.Error("nested $ref survived cleaning")
	}
}

func TestParseChunk(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []ir.Event
	}{
		{
			"message_start yields nothing",
			"event: message_start\ndata: {\"type\":\"message_start\",\"message\":{\"id\":\"msg_1\",\"usage\":{\"input_tokens\":10,\"output_tokens\":0}}}\n\n",
			nil,
		},
		{
			"text block start yields nothing",
			"event: content_block_start\ndata: {\"type\":\"content_block_start\",\"index\":0,\"content_block\":{\"type\":\"text\"}}\n\n",
			nil,
		},
		{
			"text delta",
			"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"Hi\"}}\n\n",
			[]ir.Event{{Type: ir.EventToken, Content: "Hi"}},
		},
		{
			"thinking delta",
			"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"thinking_delta\",\"thinking\":\"hmm\"}}\n\n",
			[]ir.Event{{Type: ir.EventReasoning, Reasoning: "hmm"}},
		},
		{
			"signature delta",
			"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"signature_delta\",\"signature\":\"sig\"}}\n\n",
			[]ir.Event{{Type: ir.EventReasoning, Signature: "sig"}},
		},
		{
			"tool use start",
			"event: content_block_start\ndata: {\"type\":\"content_block_start\",\"index\":1,\"content_block\":{\"type\":\"tool_use\",\"id\":\"toolu_1\",\"name\":\"search\"}}\n\n",
			[]ir.Event{{Type: ir.EventToolCall, Index: 1, ToolCall: &ir.ToolCall{ID: "toolu_1", Name: "search"}}},
		},
		{
			"input json delta",
			"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":1,\"delta\":{\"type\":\"input_json_delta\",\"partial_json\":\"{\\\"q\\\"\"}}\n\n",
			[]ir.Event{{Type: ir.EventToolCallDelta, Index: 1, ToolCall: &ir.ToolCall{Arguments: `{"q"`}}},
		},
		{
			"block stop",
			"event: content_block_stop\ndata: {\"type\":\"content_block_stop\",\"index\":1}\n\n",
			[]ir.Event{{Type: ir.EventToolCallDelta, Index: 1, ToolCall: &ir.ToolCall{IsComplete: true}}},
		},
		{
			"message delta",
			"event: message_delta\ndata: {\"type\":\"message_delta\",\"delta\":{\"stop_reason\":\"end_turn\"},\"usage\":{\"output_tokens\":5}}\n\n",
			[]ir.Event{{Type: ir.EventFinish, FinishReason: ir.FinishStop, Usage: &ir.Usage{CompletionTokens: 5, TotalTokens: 5}}},
		},
		{
			"error frame",
			"event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"busy\"}}\n\n",
			[]ir.Event{{Type: ir.EventError, Error: "busy"}},
		},
		{
			"malformed json yields nothing",
			"data: {not json\n\n",
			nil,
		},
		{
			"ping ignored",
			"event: ping\ndata: {\"type\":\"ping\"}\n\n",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseChunk(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				assertEventEqual(t, got[i], tt.want[i])
			}
		})
	}
}

func assertEventEqual(t *testing.T, got, want ir.Event) {
	t.Helper()
	if got.Type != want.Type || got.Content != want.Content ||
		got.Reasoning != want.Reasoning || got.Signature != want.Signature ||
		got.Index != want.Index || got.FinishReason != want.FinishReason ||
		got.Error != want.Error {
		t.Errorf("event = %+v, want %+v", got, want)
	}
	if (got.ToolCall == nil) != (want.ToolCall == nil) {
		t.Fatalf("tool call presence mismatch: %+v vs %+v", got, want)
	}
	if want.ToolCall != nil && *got.ToolCall != *want.ToolCall {
		t.Errorf("tool call = %+v, want %+v", *got.ToolCall, *want.ToolCall)
	}
	if (got.Usage == nil) != (want.Usage == nil) {
		t.Fatalf("usage presence mismatch: %+v vs %+v", got, want)
	}
	if want.Usage != nil && *got.Usage != *want.Usage {
		t.Errorf("usage = %+v, want %+v", *got.Usage, *want.Usage)
	}
}

func TestParseChunkMultipleFrames(t *testing.T) {
	raw := "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"a\"}}\n\n" +
		"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"b\"}}\n\n"
	got := ParseChunk(raw)
	if len(got) != 2 || got[0].Content != "a" || got[1].Content != "b" {
		t.Fatalf("events = %+v", got)
	}
}
