package overrides

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestEngine_Apply(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
		body  string
		check func(t *testing.T, out []byte)
	}{
		{
			name: "set on matching model",
			rules: []Rule{
				{Model: "gpt-4o", Set: map[string]any{"temperature": 0.5}},
			},
			body: `{"model":"gpt-4o","messages":[]}`,
			check: func(t *testing.T, out []byte) {
				if got := gjson.GetBytes(out, "temperature").Float(); got != 0.5 {
					t.Errorf("temperature = %v, want 0.5", got)
				}
			},
		},
		{
			name: "non-matching model untouched",
			rules: []Rule{
				{Model: "gpt-4o", Set: map[string]any{"temperature": 0.5}},
			},
			body: `{"model":"gpt-4.1","messages":[]}`,
			check: func(t *testing.T, out []byte) {
				if gjson.GetBytes(out, "temperature").Exists() {
					t.Error("temperature set on non-matching model")
				}
			},
		},
		{
			name: "empty model matches all",
			rules: []Rule{
				{Set: map[string]any{"max_tokens": 2048}},
			},
			body: `{"model":"anything","max_tokens":100}`,
			check: func(t *testing.T, out []byte) {
				if got := gjson.GetBytes(out, "max_tokens").Int(); got != 2048 {
					t.Errorf("max_tokens = %v, want 2048", got)
				}
			},
		},
		{
			name: "delete path",
			rules: []Rule{
				{Delete: []string{"top_p"}},
			},
			body: `{"model":"gpt-4o","top_p":0.9}`,
			check: func(t *testing.T, out []byte) {
				if gjson.GetBytes(out, "top_p").Exists() {
					t.Error("top_p not deleted")
				}
			},
		},
		{
			name: "nested path",
			rules: []Rule{
				{Set: map[string]any{"thinking.budget_tokens": 4096}},
			},
			body: `{"model":"claude-sonnet-4","thinking":{"type":"enabled","budget_tokens":1024}}`,
			check: func(t *testing.T, out []byte) {
				if got := gjson.GetBytes(out, "thinking.budget_tokens").Int(); got != 4096 {
					t.Errorf("thinking.budget_tokens = %v, want 4096", got)
				}
				if got := gjson.GetBytes(out, "thinking.type").String(); got != "enabled" {
					t.Errorf("thinking.type = %q, want enabled", got)
				}
			},
		},
		{
			name: "rules apply in order",
			rules: []Rule{
				{Set: map[string]any{"temperature": 0.2}},
				{Set: map[string]any{"temperature": 0.9}},
			},
			body: `{"model":"gpt-4o"}`,
			check: func(t *testing.T, out []byte) {
				if got := gjson.GetBytes(out, "temperature").Float(); got != 0.9 {
					t.Errorf("temperature = %v, want 0.9 from last rule", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.rules)
			out, err := e.Apply([]byte(tt.body))
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			tt.check(t, out)
		})
	}
}

func TestEngine_Empty(t *testing.T) {
	if !NewEngine(nil).Empty() {
		t.Error("Empty() = false for no rules")
	}
	if NewEngine([]Rule{{}}).Empty() {
		t.Error("Empty() = true with a rule")
	}

	body := []byte(`{"model":"gpt-4o"}`)
	out, err := NewEngine(nil).Apply(body)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if string(out) != string(body) {
		t.Errorf("Apply() with no rules = %s, want unchanged", out)
	}
}
