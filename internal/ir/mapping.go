package ir

// Effort is a reasoning-effort level on effort-based providers.
type Effort string

const (
	EffortNone    Effort = "none"
	EffortMinimal Effort = "minimal"
	EffortLow     Effort = "low"
	EffortMedium  Effort = "medium"
	EffortHigh    Effort = "high"
	EffortXHigh   Effort = "xhigh"
)

// BudgetToEffort maps a thinking token budget to an effort level. A zero
// budget disables thinking, a negative budget defers to def, and positive
// budgets bucket by fixed thresholds.
func BudgetToEffort(budget int, def Effort) Effort {
	switch {
	case budget == 0:
		return EffortNone
	case budget < 0:
		return def
	case budget <= 1024:
		return EffortLow
	case budget <= 8192:
		return EffortMedium
	case budget <= 24576:
		return EffortHigh
	default:
		return EffortXHigh
	}
}

// EffortToBudget maps an effort level back to a fixed token budget chosen so
// that BudgetToEffort inverts it.
func EffortToBudget(e Effort) int {
	switch e {
	case EffortNone:
		return 0
	case EffortMinimal:
		return 512
	case EffortLow:
		return 1024
	case EffortMedium:
		return 8192
	case EffortHigh:
		return 24576
	case EffortXHigh:
		return 32768
	default:
		return -1
	}
}

// ParseEffort validates a wire effort string, returning "" for anything
// unrecognized.
func ParseEffort(s string) Effort {
	switch Effort(s) {
	case EffortNone, EffortMinimal, EffortLow, EffortMedium, EffortHigh, EffortXHigh:
		return Effort(s)
	default:
		return ""
	}
}

// FinishFromClaude maps an Anthropic stop_reason to the canonical reason.
func FinishFromClaude(s string) FinishReason {
	switch s {
	case "end_turn", "stop_sequence":
		return FinishStop
	case "max_tokens":
		return FinishLength
	case "tool_use":
		return FinishToolCalls
	case "refusal":
		return FinishContentFilter
	case "":
		return FinishUnknown
	default:
		return FinishStop
	}
}

// FinishToClaude maps a canonical finish reason to an Anthropic stop_reason.
// Error and unknown collapse to end_turn; the mapping is lossy for those two
// and exact for the rest.
func FinishToClaude(r FinishReason) string {
	switch r {
	case FinishLength:
		return "max_tokens"
	case FinishToolCalls:
		return "tool_use"
	case FinishContentFilter:
		return "refusal"
	default:
		return "end_turn"
	}
}

// FinishFromOpenAI maps an OpenAI finish_reason to the canonical reason.
func FinishFromOpenAI(s string) FinishReason {
	switch s {
	case "stop":
		return FinishStop
	case "length":
		return FinishLength
	case "tool_calls", "function_call":
		return FinishToolCalls
	case "content_filter":
		return FinishContentFilter
	default:
		return FinishUnknown
	}
}

// FinishToOpenAI maps a canonical finish reason to an OpenAI finish_reason.
func FinishToOpenAI(r FinishReason) string {
	switch r {
	case FinishLength:
		return "length"
	case FinishToolCalls:
		return "tool_calls"
	case FinishContentFilter:
		return "content_filter"
	default:
		return "stop"
	}
}
