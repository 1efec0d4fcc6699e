// Package ir defines the canonical intermediate representation every wire
// protocol is parsed into and generated from. The types here are
// protocol-neutral: parsers in toir/ produce them, generators in fromir/
// consume them, and nothing in this package performs I/O.
package ir

// Role is a canonical conversation role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// NormalizeRole maps an arbitrary wire role onto the four canonical roles.
// "developer" collapses into system; unknown roles are treated as user.
func NormalizeRole(s string) Role {
	switch s {
	case "assistant", "model":
		return RoleAssistant
	case "system", "developer":
		return RoleSystem
	case "tool", "function":
		return RoleTool
	default:
		return RoleUser
	}
}

// ContentType tags a ContentPart variant.
type ContentType string

const (
	ContentText       ContentType = "text"
	ContentReasoning  ContentType = "reasoning"
	ContentImage      ContentType = "image"
	ContentFile       ContentType = "file"
	ContentToolResult ContentType = "tool_result"
)

// ContentPart is one element of a message body. Exactly one variant is
// populated, selected by Type.
type ContentPart struct {
	Type ContentType `json:"type"`

	// Text holds the body for ContentText parts.
	Text string `json:"text,omitempty"`

	// Reasoning and Signature hold model thinking for ContentReasoning
	// parts. Signature is the provider's opaque thought signature and must
	// survive a round trip untouched.
	Reasoning string `json:"reasoning,omitempty"`
	Signature string `json:"signature,omitempty"`

	Image      *ImageData  `json:"image,omitempty"`
	File       *FileData   `json:"file,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// ImageData carries either inline base64 data with a media type or a URL.
type ImageData struct {
	MimeType string `json:"mime_type,omitempty"`
	Data     string `json:"data,omitempty"`
	URL      string `json:"url,omitempty"`
}

// FileData references an uploaded or inline file.
type FileData struct {
	FileID   string `json:"file_id,omitempty"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Data     string `json:"data,omitempty"`
}

// ToolResult is the outcome of a prior tool call, attached to a tool-role
// message.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// ToolCall is an assistant-initiated tool invocation. Arguments is the raw
// JSON argument text; during streaming it accumulates fragments in arrival
// order and IsComplete marks the final fragment.
type ToolCall struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Arguments  string `json:"arguments"`
	IsCustom   bool   `json:"is_custom,omitempty"`
	IsComplete bool   `json:"is_complete,omitempty"`
}

// Message is one conversation turn.
type Message struct {
	Role      Role          `json:"role"`
	Content   []ContentPart `json:"content,omitempty"`
	ToolCalls []ToolCall    `json:"tool_calls,omitempty"`
}

// ToolDefinition declares a tool the model may call. Parameters is a JSON
// schema cleaned of validator-only keywords (see CleanSchema).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	IsCustom    bool           `json:"is_custom,omitempty"`
}

// ToolChoice constrains how the model may use tools.
type ToolChoice struct {
	// Mode is auto, none, required, or tool.
	Mode string `json:"mode"`
	// Name is set when Mode is tool.
	Name string `json:"name,omitempty"`
}

// ResponseFormat requests structured output.
type ResponseFormat struct {
	// Type is text, json_object, or json_schema.
	Type       string         `json:"type"`
	SchemaName string         `json:"schema_name,omitempty"`
	Schema     map[string]any `json:"schema,omitempty"`
	Strict     bool           `json:"strict,omitempty"`
}

// ThinkingConfig captures a request's reasoning settings. Budget is a token
// budget where 0 disables thinking and a negative value defers to the
// provider default; Effort, when set, takes precedence over Budget on
// effort-based providers.
type ThinkingConfig struct {
	Budget  int    `json:"budget"`
	Effort  Effort `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Request is the canonical chat request.
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Tools          []ToolDefinition `json:"tools,omitempty"`
	ToolChoice     *ToolChoice     `json:"tool_choice,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	TopP           *float64        `json:"top_p,omitempty"`
	TopK           *int            `json:"top_k,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	StopSequences  []string        `json:"stop_sequences,omitempty"`
	Thinking       *ThinkingConfig `json:"thinking,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
}

// FinishReason is the canonical stream/response termination cause.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishContentFilter FinishReason = "content_filter"
	FinishError         FinishReason = "error"
	FinishUnknown       FinishReason = "unknown"
)

// Usage is the canonical token accounting. The detail fields are optional
// and survive only on protocols that carry them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	CachedTokens             int `json:"cached_tokens,omitempty"`
	AudioPromptTokens        int `json:"audio_prompt_tokens,omitempty"`
	ReasoningTokens          int `json:"reasoning_tokens,omitempty"`
	AudioCompletionTokens    int `json:"audio_completion_tokens,omitempty"`
	AcceptedPredictionTokens int `json:"accepted_prediction_tokens,omitempty"`
	RejectedPredictionTokens int `json:"rejected_prediction_tokens,omitempty"`
}

// Response is a complete (non-streaming) model turn: the assistant message
// plus the bookkeeping needed to regenerate either protocol's response shape.
type Response struct {
	ID           string       `json:"id,omitempty"`
	Model        string       `json:"model,omitempty"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason"`
	Usage        *Usage       `json:"usage,omitempty"`
}

// EventType tags a streaming Event.
type EventType string

const (
	EventToken            EventType = "token"
	EventReasoning        EventType = "reasoning"
	EventReasoningSummary EventType = "reasoning_summary"
	EventToolCall         EventType = "tool_call"
	EventToolCallDelta    EventType = "tool_call_delta"
	EventImage            EventType = "image"
	EventFinish           EventType = "finish"
	EventError            EventType = "error"
)

// Event is one canonical streaming increment. Index identifies the source
// block or tool-call slot so that generators can correlate deltas.
type Event struct {
	Type EventType `json:"type"`

	Content   string `json:"content,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	Signature string `json:"signature,omitempty"`
	Summary   string `json:"summary,omitempty"`

	Index    int       `json:"index,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
	Image    *ImageData `json:"image,omitempty"`

	FinishReason FinishReason `json:"finish_reason,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`

	Error string `json:"error,omitempty"`
}
