// Package translator is the public conversion surface: one-shot request and
// response conversions between the Messages API (Claude), the Chat
// Completions API, and the Responses API, plus stateful stream converters.
// All conversions route through the canonical IR, so every pairing shares one
// set of semantics.
package translator

import (
	"encoding/json"
	"fmt"

	fromclaude "github.com/tjfontaine/wirebridge/internal/fromir/claude"
	fromopenai "github.com/tjfontaine/wirebridge/internal/fromir/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
	toclaude "github.com/tjfontaine/wirebridge/internal/toir/claude"
	toopenai "github.com/tjfontaine/wirebridge/internal/toir/openai"
)

// ClaudeRequestToOpenAI converts a Messages API request into a Chat
// Completions request.
func ClaudeRequestToOpenAI(data []byte) ([]byte, error) {
	req, err := toclaude.ParseRequest(data)
	if err != nil {
		return nil, err
	}
	return marshal(fromopenai.GenerateRequest(req))
}

// OpenAIRequestToClaude converts a Chat Completions request into a Messages
// API request.
func OpenAIRequestToClaude(data []byte) ([]byte, error) {
	req, err := toopenai.ParseRequest(data)
	if err != nil {
		return nil, err
	}
	return marshal(fromclaude.GenerateRequest(req))
}

// ResponsesRequestToClaude converts a Responses API request into a Messages
// API request.
func ResponsesRequestToClaude(data []byte) ([]byte, error) {
	req, err := toopenai.ParseResponsesRequest(data)
	if err != nil {
		return nil, err
	}
	return marshal(fromclaude.GenerateRequest(req))
}

// ResponsesRequestToOpenAI converts a Responses API request into a Chat
// Completions request.
func ResponsesRequestToOpenAI(data []byte) ([]byte, error) {
	req, err := toopenai.ParseResponsesRequest(data)
	if err != nil {
		return nil, err
	}
	return marshal(fromopenai.GenerateRequest(req))
}

// ClaudeResponseToOpenAI converts a Messages API response into a Chat
// Completions response.
func ClaudeResponseToOpenAI(data []byte) ([]byte, error) {
	resp, err := toclaude.ParseResponse(data)
	if err != nil {
		return nil, err
	}
	return marshal(fromopenai.GenerateResponse(resp))
}

// ClaudeResponseToResponses converts a Messages API response into a
// Responses API response object.
func ClaudeResponseToResponses(data []byte) ([]byte, error) {
	resp, err := toclaude.ParseResponse(data)
	if err != nil {
		return nil, err
	}
	return marshal(fromopenai.GenerateResponsesResponse(resp))
}

// OpenAIResponseToClaude converts a Chat Completions or Responses API
// response into a Messages API response.
func OpenAIResponseToClaude(data []byte) ([]byte, error) {
	resp, err := toopenai.ParseResponse(data)
	if err != nil {
		return nil, err
	}
	return marshal(fromclaude.GenerateResponse(resp))
}

// OpenAIResponseToResponses converts a Chat Completions response into a
// Responses API response object.
func OpenAIResponseToResponses(data []byte) ([]byte, error) {
	resp, err := toopenai.ParseResponse(data)
	if err != nil {
		return nil, err
	}
	return marshal(fromopenai.GenerateResponsesResponse(resp))
}

// Result is the outcome of a Safe conversion. Exactly one of Data and Error
// is meaningful, selected by Success.
type Result struct {
	Success bool   `json:"success"`
	Data    []byte `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Safe wraps a conversion so callers get a value instead of an error.
func Safe(convert func([]byte) ([]byte, error), data []byte) Result {
	out, err := convert(data)
	if err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true, Data: out}
}

// SafeClaudeRequestToOpenAI is ClaudeRequestToOpenAI returning a Result.
func SafeClaudeRequestToOpenAI(data []byte) Result { return Safe(ClaudeRequestToOpenAI, data) }

// SafeOpenAIRequestToClaude is OpenAIRequestToClaude returning a Result.
func SafeOpenAIRequestToClaude(data []byte) Result { return Safe(OpenAIRequestToClaude, data) }

// SafeClaudeResponseToOpenAI is ClaudeResponseToOpenAI returning a Result.
func SafeClaudeResponseToOpenAI(data []byte) Result { return Safe(ClaudeResponseToOpenAI, data) }

// SafeOpenAIResponseToClaude is OpenAIResponseToClaude returning a Result.
func SafeOpenAIResponseToClaude(data []byte) Result { return Safe(OpenAIResponseToClaude, data) }

func marshal(v any) ([]byte, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding converted payload: %w", err)
	}
	return out, nil
}

// ParseClaudeRequest exposes the Messages API request parser for callers
// that need the IR itself, such as token counting.
func ParseClaudeRequest(data []byte) (*ir.Request, error) {
	return toclaude.ParseRequest(data)
}

// ParseOpenAIRequest exposes the Chat Completions request parser.
func ParseOpenAIRequest(data []byte) (*ir.Request, error) {
	return toopenai.ParseRequest(data)
}

// ParseResponsesRequest exposes the Responses API request parser.
func ParseResponsesRequest(data []byte) (*ir.Request, error) {
	return toopenai.ParseResponsesRequest(data)
}
