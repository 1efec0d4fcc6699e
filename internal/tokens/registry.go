// Package tokens counts prompt tokens for canonical requests across
// providers.
package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tjfontaine/wirebridge/internal/ir"
)

// Result is a token count plus whether it was estimated rather than measured.
type Result struct {
	InputTokens int
	Estimated   bool
}

// Counter counts prompt tokens for models it supports.
type Counter interface {
	Count(ctx context.Context, req *ir.Request) (*Result, error)
	SupportsModel(model string) bool
}

// Registry dispatches counting to the first registered counter that supports
// the request's model, falling back to a character-based estimator.
type Registry struct {
	counters []Counter
	fallback Counter
}

// NewRegistry creates a registry with the default fallback estimator.
func NewRegistry() *Registry {
	return &Registry{
		fallback: NewEstimator(),
	}
}

// Register adds a counter to the registry.
func (r *Registry) Register(counter Counter) {
	r.counters = append(r.counters, counter)
}

// SetFallback replaces the fallback counter.
func (r *Registry) SetFallback(counter Counter) {
	r.fallback = counter
}

// Count counts tokens using the appropriate counter for the request's model.
func (r *Registry) Count(ctx context.Context, req *ir.Request) (*Result, error) {
	for _, counter := range r.counters {
		if counter.SupportsModel(req.Model) {
			return counter.Count(ctx, req)
		}
	}

	if r.fallback != nil {
		return r.fallback.Count(ctx, req)
	}

	return nil, fmt.Errorf("no token counter available for model: %s", req.Model)
}

// Estimator approximates token counts from character length. It is the
// fallback for models without a native tokenizer.
type Estimator struct {
	// CharsPerToken is the average characters per token (default: 4)
	CharsPerToken float64
}

// NewEstimator creates an estimator with the default ratio.
func NewEstimator() *Estimator {
	return &Estimator{
		CharsPerToken: 4.0,
	}
}

// Count estimates the token count for a request.
func (e *Estimator) Count(ctx context.Context, req *ir.Request) (*Result, error) {
	totalChars := 0

	for _, msg := range req.Messages {
		totalChars += len(msg.Role)
		totalChars += 4 // role tokens + separators
		for _, part := range msg.Content {
			switch part.Type {
			case ir.ContentText:
				totalChars += len(part.Text)
			case ir.ContentReasoning:
				totalChars += len(part.Reasoning)
			case ir.ContentToolResult:
				if part.ToolResult != nil {
					totalChars += len(part.ToolResult.Content)
				}
			}
		}
		for _, tc := range msg.ToolCalls {
			totalChars += len(tc.Name) + len(tc.Arguments)
		}
	}

	for _, tool := range req.Tools {
		totalChars += len(tool.Name)
		totalChars += len(tool.Description)
		if tool.Parameters != nil {
			if b, err := json.Marshal(tool.Parameters); err == nil {
				totalChars += len(b)
			}
		}
	}

	return &Result{
		InputTokens: int(float64(totalChars) / e.CharsPerToken),
		Estimated:   true,
	}, nil
}

// SupportsModel returns true: the estimator handles any model.
func (e *Estimator) SupportsModel(model string) bool {
	return true
}

// ModelMatcher matches model names against prefix and exact patterns.
type ModelMatcher struct {
	prefixes []string
	exact    []string
}

// NewModelMatcher creates a matcher from prefix and exact pattern lists.
func NewModelMatcher(prefixes, exact []string) *ModelMatcher {
	return &ModelMatcher{
		prefixes: prefixes,
		exact:    exact,
	}
}

// Matches returns true if the model matches any pattern.
func (m *ModelMatcher) Matches(model string) bool {
	for _, e := range m.exact {
		if model == e {
			return true
		}
	}

	for _, p := range m.prefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}

	return false
}
