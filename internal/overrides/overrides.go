// Package overrides applies configured JSON rewrites to generated upstream
// request payloads. Rules let an operator pin sampling parameters, strip
// unsupported fields, or force model names without code changes.
package overrides

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Rule rewrites payloads for one model, or every model when Model is empty.
// Set assigns values by JSON path; Delete removes paths. Deletes run after
// sets.
type Rule struct {
	Model  string
	Set    map[string]any
	Delete []string
}

// Engine applies a rule list in order.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine from a rule list.
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Empty reports whether the engine has no rules.
func (e *Engine) Empty() bool {
	return len(e.rules) == 0
}

// Apply rewrites body with every rule matching the payload's model field.
// The input slice is not modified.
func (e *Engine) Apply(body []byte) ([]byte, error) {
	if len(e.rules) == 0 {
		return body, nil
	}

	model := gjson.GetBytes(body, "model").String()

	out := body
	var err error
	for _, rule := range e.rules {
		if rule.Model != "" && rule.Model != model {
			continue
		}
		for path, value := range rule.Set {
			out, err = sjson.SetBytes(out, path, value)
			if err != nil {
				return nil, fmt.Errorf("override set %s: %w", path, err)
			}
		}
		for _, path := range rule.Delete {
			out, err = sjson.DeleteBytes(out, path)
			if err != nil {
				return nil, fmt.Errorf("override delete %s: %w", path, err)
			}
		}
	}
	return out, nil
}
