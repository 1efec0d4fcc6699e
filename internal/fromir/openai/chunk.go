package openai

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/ir"
	"github.com/tjfontaine/wirebridge/internal/sse"
)

// ChatStream renders canonical events as Chat Completions chunks. Chunk
// generation is stateless apart from the stream identity, the one-time
// assistant role delta, and the terminal [DONE] guard.
type ChatStream struct {
	ID      string
	Model   string
	Created int64

	sentRole bool
	finished bool
}

// NewChatStream returns a stream with a fresh completion id.
func NewChatStream(model string) *ChatStream {
	return &ChatStream{
		ID:      "chatcmpl-" + uuid.NewString(),
		Model:   model,
		Created: time.Now().Unix(),
	}
}

// Chunk converts one canonical event into wire text. An empty string means
// the event produced no output.
func (s *ChatStream) Chunk(ev ir.Event) string {
	if s.finished {
		return ""
	}

	switch ev.Type {
	case ir.EventToken:
		return s.deltaChunk(openai.ChunkDelta{Content: ev.Content})

	case ir.EventReasoning:
		return s.deltaChunk(openai.ChunkDelta{
			ReasoningContent:   ev.Reasoning,
			ReasoningSignature: ev.Signature,
		})

	case ir.EventReasoningSummary:
		return s.deltaChunk(openai.ChunkDelta{ReasoningContent: ev.Summary})

	case ir.EventToolCall:
		if ev.ToolCall == nil {
			return ""
		}
		tc := openai.ToolCallChunk{Index: ev.Index, ID: ev.ToolCall.ID}
		if ev.ToolCall.IsCustom {
			tc.Type = "custom"
			tc.Custom = &openai.CustomCallChunk{Name: ev.ToolCall.Name, Input: ev.ToolCall.Arguments}
		} else {
			tc.Type = "function"
			tc.Function = &openai.FunctionCallChunk{Name: ev.ToolCall.Name, Arguments: ev.ToolCall.Arguments}
		}
		return s.deltaChunk(openai.ChunkDelta{ToolCalls: []openai.ToolCallChunk{tc}})

	case ir.EventToolCallDelta:
		if ev.ToolCall == nil || ev.ToolCall.Arguments == "" {
			// Completion markers have no Chat Completions wire shape.
			return ""
		}
		tc := openai.ToolCallChunk{Index: ev.Index}
		if ev.ToolCall.IsCustom {
			tc.Custom = &openai.CustomCallChunk{Input: ev.ToolCall.Arguments}
		} else {
			tc.Function = &openai.FunctionCallChunk{Arguments: ev.ToolCall.Arguments}
		}
		return s.deltaChunk(openai.ChunkDelta{ToolCalls: []openai.ToolCallChunk{tc}})

	case ir.EventFinish:
		s.finished = true
		reason := ir.FinishToOpenAI(ev.FinishReason)
		chunk := s.newChunk()
		chunk.Choices = []openai.ChunkChoice{{Index: 0, FinishReason: &reason}}
		chunk.Usage = usageToChat(ev.Usage)
		data, _ := json.Marshal(chunk)
		var b strings.Builder
		b.WriteString(sse.Format("", string(data)))
		b.WriteString(sse.Format("", "[DONE]"))
		return b.String()

	case ir.EventError:
		s.finished = true
		payload, _ := json.Marshal(openai.ErrorResponse{Error: &openai.APIError{
			Type:    "api_error",
			Message: ev.Error,
		}})
		var b strings.Builder
		b.WriteString(sse.Format("", string(payload)))
		b.WriteString(sse.Format("", "[DONE]"))
		return b.String()
	}

	return ""
}

func (s *ChatStream) deltaChunk(delta openai.ChunkDelta) string {
	if !s.sentRole {
		delta.Role = "assistant"
		s.sentRole = true
	}
	chunk := s.newChunk()
	chunk.Choices = []openai.ChunkChoice{{Index: 0, Delta: delta}}
	data, _ := json.Marshal(chunk)
	return sse.Format("", string(data))
}

func (s *ChatStream) newChunk() *openai.ChatCompletionChunk {
	return &openai.ChatCompletionChunk{
		ID:      s.ID,
		Object:  "chat.completion.chunk",
		Created: s.Created,
		Model:   s.Model,
	}
}
