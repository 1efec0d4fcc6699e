// Package storage records translated exchanges for later inspection.
package storage

import (
	"context"
	"encoding/json"
	"time"
)

// Direction names the translation path an exchange took.
type Direction string

const (
	// DirectionClaudeToOpenAI is a Messages-shaped request served by an
	// OpenAI upstream.
	DirectionClaudeToOpenAI Direction = "claude_to_openai"
	// DirectionOpenAIToClaude is a Chat Completions-shaped request served
	// by an Anthropic upstream.
	DirectionOpenAIToClaude Direction = "openai_to_claude"
	// DirectionResponsesToClaude is a Responses-shaped request served by
	// an Anthropic upstream.
	DirectionResponsesToClaude Direction = "responses_to_claude"
)

// ExchangeStatus is the terminal state of an exchange.
type ExchangeStatus string

const (
	StatusCompleted ExchangeStatus = "completed"
	StatusFailed    ExchangeStatus = "failed"
)

// Exchange is one translated request/response pair, kept in both client and
// upstream wire shapes.
type Exchange struct {
	ID        string         `json:"id"`
	Direction Direction      `json:"direction"`
	Model     string         `json:"model"`
	Streaming bool           `json:"streaming"`
	Status    ExchangeStatus `json:"status"`
	Duration  time.Duration  `json:"duration_ns"`

	// ClientRequest and UpstreamRequest are the request as received and as
	// sent upstream after translation.
	ClientRequest   json.RawMessage `json:"client_request,omitempty"`
	UpstreamRequest json.RawMessage `json:"upstream_request,omitempty"`

	// UpstreamResponse and ClientResponse are the response as received from
	// upstream and as returned after translation. For streams ClientResponse
	// holds the raw SSE transcript.
	UpstreamResponse json.RawMessage `json:"upstream_response,omitempty"`
	ClientResponse   json.RawMessage `json:"client_response,omitempty"`

	FinishReason string          `json:"finish_reason,omitempty"`
	Usage        json.RawMessage `json:"usage,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ExchangeSummary is the listing projection of an Exchange.
type ExchangeSummary struct {
	ID           string         `json:"id"`
	Direction    Direction      `json:"direction"`
	Model        string         `json:"model"`
	Streaming    bool           `json:"streaming"`
	Status       ExchangeStatus `json:"status"`
	Duration     time.Duration  `json:"duration_ns"`
	FinishReason string         `json:"finish_reason,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ListOptions bounds and filters exchange listings.
type ListOptions struct {
	Limit     int
	Offset    int
	Direction Direction
	Model     string
}

// Recorder persists exchanges.
type Recorder interface {
	SaveExchange(ctx context.Context, ex *Exchange) error
	GetExchange(ctx context.Context, id string) (*Exchange, error)
	ListExchanges(ctx context.Context, opts ListOptions) ([]ExchangeSummary, error)
	Close() error
}
