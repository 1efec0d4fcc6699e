package ir

import "testing"

func TestBudgetToEffort(t *testing.T) {
	tests := []struct {
		name   string
		budget int
		def    Effort
		want   Effort
	}{
		{"zero disables", 0, EffortMedium, EffortNone},
		{"negative defers to default", -1, EffortHigh, EffortHigh},
		{"small budget", 512, EffortMedium, EffortLow},
		{"low boundary", 1024, EffortMedium, EffortLow},
		{"medium", 4096, EffortMedium, EffortMedium},
		{"medium boundary", 8192, EffortMedium, EffortMedium},
		{"high", 10000, EffortMedium, EffortHigh},
		{"high boundary", 24576, EffortMedium, EffortHigh},
		{"above high", 24577, EffortMedium, EffortXHigh},
		{"huge", 1 << 20, EffortMedium, EffortXHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BudgetToEffort(tt.budget, tt.def); got != tt.want {
				t.Errorf("BudgetToEffort(%d) = %q, want %q", tt.budget, got, tt.want)
			}
		})
	}
}

func TestEffortBudgetRoundTrip(t *testing.T) {
	for _, e := range []Effort{EffortNone, EffortLow, EffortMedium, EffortHigh, EffortXHigh} {
		budget := EffortToBudget(e)
		if got := BudgetToEffort(budget, EffortMedium); got != e {
			t.Errorf("BudgetToEffort(EffortToBudget(%q)=%d) = %q, want %q", e, budget, got, e)
		}
	}
	// Minimal has no budget bucket of its own and resolves to low.
	if got := BudgetToEffort(EffortToBudget(EffortMinimal), EffortMedium); got != EffortLow {
		t.Errorf("minimal budget maps to %q, want %q", got, EffortLow)
	}
}

func TestFinishOpenAIRoundTrip(t *testing.T) {
	for _, r := range []FinishReason{FinishStop, FinishLength, FinishToolCalls, FinishContentFilter} {
		if got := FinishFromOpenAI(FinishToOpenAI(r)); got != r {
			t.Errorf("round trip of %q = %q", r, got)
		}
	}
	if got := FinishFromOpenAI(FinishToOpenAI(FinishError)); got != FinishStop {
		t.Errorf("error reason should collapse to stop, got %q", got)
	}
}

func TestFinishFromClaude(t *testing.T) {
	tests := []struct {
		in   string
		want FinishReason
	}{
		{"end_turn", FinishStop},
		{"stop_sequence", FinishStop},
		{"max_tokens", FinishLength},
		{"tool_use", FinishToolCalls},
		{"refusal", FinishContentFilter},
		{"", FinishUnknown},
		{"something_new", FinishStop},
	}
	for _, tt := range tests {
		if got := FinishFromClaude(tt.in); got != tt.want {
			t.Errorf("FinishFromClaude(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"user", RoleUser},
		{"assistant", RoleAssistant},
		{"system", RoleSystem},
		{"developer", RoleSystem},
		{"tool", RoleTool},
		{"function", RoleTool},
		{"", RoleUser},
		{"critic", RoleUser},
	}
	for _, tt := range tests {
		if got := NormalizeRole(tt.in); got != tt.want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
