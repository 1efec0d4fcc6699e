package translator

import (
	"strings"

	fromclaude "github.com/tjfontaine/wirebridge/internal/fromir/claude"
	fromopenai "github.com/tjfontaine/wirebridge/internal/fromir/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
	toclaude "github.com/tjfontaine/wirebridge/internal/toir/claude"
	toopenai "github.com/tjfontaine/wirebridge/internal/toir/openai"
)

// StreamConverter transforms one protocol's SSE text into another's,
// chunk by chunk. ConvertChunk returns the translated wire text; an empty
// string means the chunk decoded to zero events and nothing should be
// forwarded.
type StreamConverter interface {
	ConvertChunk(raw string) (string, error)
}

// ClaudeToOpenAIStream converts Messages API streams into Chat Completions
// chunks.
type ClaudeToOpenAIStream struct {
	out *fromopenai.ChatStream
}

// NewClaudeToOpenAIStream returns a converter for one stream.
func NewClaudeToOpenAIStream(model string) *ClaudeToOpenAIStream {
	return &ClaudeToOpenAIStream{out: fromopenai.NewChatStream(model)}
}

func (c *ClaudeToOpenAIStream) ConvertChunk(raw string) (string, error) {
	return pump(toclaude.ParseChunk(raw), c.out.Chunk), nil
}

// OpenAIToClaudeStream converts Chat Completions or Responses API streams
// into Messages API events.
type OpenAIToClaudeStream struct {
	out *fromclaude.StreamState
}

// NewOpenAIToClaudeStream returns a converter for one stream.
func NewOpenAIToClaudeStream(model string) *OpenAIToClaudeStream {
	return &OpenAIToClaudeStream{out: fromclaude.NewStreamState(model)}
}

func (c *OpenAIToClaudeStream) ConvertChunk(raw string) (string, error) {
	return pump(toopenai.ParseChunk(raw), c.out.Chunk), nil
}

// ClaudeToResponsesStream converts Messages API streams into Responses API
// events.
type ClaudeToResponsesStream struct {
	out *fromopenai.ResponsesStream
}

// NewClaudeToResponsesStream returns a converter for one stream.
func NewClaudeToResponsesStream(model string) *ClaudeToResponsesStream {
	return &ClaudeToResponsesStream{out: fromopenai.NewResponsesStream(model)}
}

func (c *ClaudeToResponsesStream) ConvertChunk(raw string) (string, error) {
	return pump(toclaude.ParseChunk(raw), c.out.Chunk), nil
}

// OpenAIToResponsesStream converts Chat Completions streams into Responses
// API events.
type OpenAIToResponsesStream struct {
	out *fromopenai.ResponsesStream
}

// NewOpenAIToResponsesStream returns a converter for one stream.
func NewOpenAIToResponsesStream(model string) *OpenAIToResponsesStream {
	return &OpenAIToResponsesStream{out: fromopenai.NewResponsesStream(model)}
}

func (c *OpenAIToResponsesStream) ConvertChunk(raw string) (string, error) {
	return pump(toopenai.ParseChunk(raw), c.out.Chunk), nil
}

func pump(events []ir.Event, emit func(ir.Event) string) string {
	var b strings.Builder
	for _, ev := range events {
		b.WriteString(emit(ev))
	}
	return b.String()
}

var (
	_ StreamConverter = (*ClaudeToOpenAIStream)(nil)
	_ StreamConverter = (*OpenAIToClaudeStream)(nil)
	_ StreamConverter = (*ClaudeToResponsesStream)(nil)
	_ StreamConverter = (*OpenAIToResponsesStream)(nil)
)
