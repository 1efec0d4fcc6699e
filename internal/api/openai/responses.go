package openai

import "encoding/json"

// ResponsesRequest is a Responses API request body.
type ResponsesRequest struct {
	Model              string           `json:"model"`
	Input              ResponsesInput   `json:"input,omitempty"`
	Instructions       string           `json:"instructions,omitempty"`
	MaxOutputTokens    int              `json:"max_output_tokens,omitempty"`
	Temperature        *float64         `json:"temperature,omitempty"`
	TopP               *float64         `json:"top_p,omitempty"`
	Stream             bool             `json:"stream,omitempty"`
	Store              *bool            `json:"store,omitempty"`
	PreviousResponseID string           `json:"previous_response_id,omitempty"`
	Reasoning          *ReasoningConfig `json:"reasoning,omitempty"`
	Tools              []ResponsesTool  `json:"tools,omitempty"`
	ToolChoice         any              `json:"tool_choice,omitempty"`
	Text               *ResponsesText   `json:"text,omitempty"`
	Metadata           map[string]any   `json:"metadata,omitempty"`
}

// ResponsesText configures output formatting.
type ResponsesText struct {
	Format *ResponsesTextFormat `json:"format,omitempty"`
}

// ResponsesTextFormat is the structured-output format selector.
type ResponsesTextFormat struct {
	Type   string `json:"type"` // text, json_object, json_schema
	Name   string `json:"name,omitempty"`
	Schema any    `json:"schema,omitempty"`
	Strict bool   `json:"strict,omitempty"`
}

// ResponsesTool is a flattened tool declaration. Unlike Chat Completions the
// function fields sit directly on the tool object.
type ResponsesTool struct {
	Type        string `json:"type"` // function, custom
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
	Strict      *bool  `json:"strict,omitempty"`
}

// ResponsesInput accepts both a plain string and an array of input items.
type ResponsesInput struct {
	Text    string
	Items   []ResponsesItem
	IsItems bool
}

func (r *ResponsesInput) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		r.Text = str
		return nil
	}
	var items []ResponsesItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	r.Items = items
	r.IsItems = true
	return nil
}

func (r ResponsesInput) MarshalJSON() ([]byte, error) {
	if r.IsItems {
		return json.Marshal(r.Items)
	}
	return json.Marshal(r.Text)
}

// ResponsesItem is one input or output item. Type selects which fields are
// meaningful: message, reasoning, function_call, function_call_output,
// custom_tool_call, custom_tool_call_output.
type ResponsesItem struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`

	// message
	Role    string                  `json:"role,omitempty"`
	Content ResponsesMessageContent `json:"content,omitempty"`

	// reasoning
	Summary          []ResponsesSummaryPart `json:"summary,omitempty"`
	EncryptedContent string                 `json:"encrypted_content,omitempty"`

	// function_call / custom_tool_call
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Input     string `json:"input,omitempty"`

	// function_call_output / custom_tool_call_output
	Output string `json:"output,omitempty"`
}

// ResponsesMessageContent accepts both a string and an array of typed parts.
type ResponsesMessageContent []ResponsesContentPart

func (c *ResponsesMessageContent) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*c = ResponsesMessageContent{{Type: "input_text", Text: str}}
		return nil
	}
	var parts []ResponsesContentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	*c = parts
	return nil
}

func (c ResponsesMessageContent) MarshalJSON() ([]byte, error) {
	return json.Marshal([]ResponsesContentPart(c))
}

// ResponsesContentPart is one content element of a message item.
type ResponsesContentPart struct {
	Type     string `json:"type"` // input_text, output_text, input_image, input_file, refusal
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	FileID   string `json:"file_id,omitempty"`
	Filename string `json:"filename,omitempty"`
	Refusal  string `json:"refusal,omitempty"`
}

// ResponsesSummaryPart is one reasoning-summary element.
type ResponsesSummaryPart struct {
	Type string `json:"type"` // summary_text
	Text string `json:"text"`
}

// Response is a Responses API response object, used both as the non-streaming
// body and as the snapshot embedded in lifecycle events.
type Response struct {
	ID           string          `json:"id"`
	Object       string          `json:"object"`
	CreatedAt    int64           `json:"created_at"`
	Status       string          `json:"status"` // in_progress, completed, incomplete, failed
	Model        string          `json:"model"`
	Output       []ResponsesItem `json:"output"`
	Usage        *ResponsesUsage `json:"usage,omitempty"`
	Error        *ResponsesError `json:"error,omitempty"`
	Instructions string          `json:"instructions,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}

// ResponsesUsage is the Responses API token accounting.
type ResponsesUsage struct {
	InputTokens         int                  `json:"input_tokens"`
	OutputTokens        int                  `json:"output_tokens"`
	TotalTokens         int                  `json:"total_tokens"`
	InputTokensDetails  *InputTokensDetails  `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
}

// InputTokensDetails breaks down input tokens.
type InputTokensDetails struct {
	CachedTokens int `json:"cached_tokens,omitempty"`
}

// OutputTokensDetails breaks down output tokens.
type OutputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens,omitempty"`
}

// ResponsesError is the error payload on a failed response or error event.
type ResponsesError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Streaming event payloads. Every frame carries a monotonically increasing
// sequence_number.

// ResponsesStreamEvent is the discriminator envelope for incoming frames; the
// event name may arrive either as the SSE event field or in the type field.
type ResponsesStreamEvent struct {
	Type           string          `json:"type"`
	SequenceNumber int             `json:"sequence_number"`
	Response       *Response       `json:"response,omitempty"`
	OutputIndex    int             `json:"output_index,omitempty"`
	ContentIndex   int             `json:"content_index,omitempty"`
	SummaryIndex   int             `json:"summary_index,omitempty"`
	ItemID         string          `json:"item_id,omitempty"`
	Item           *ResponsesItem  `json:"item,omitempty"`
	Part           *ResponsesContentPart `json:"part,omitempty"`
	Delta          string          `json:"delta,omitempty"`
	Text           string          `json:"text,omitempty"`
	Arguments      string          `json:"arguments,omitempty"`
	Input          string          `json:"input,omitempty"`
	Error          *ResponsesError `json:"error,omitempty"`
}

// Event payload structs used on the generation side. Kept separate from the
// inbound envelope so each frame serializes only its own fields.

// ResponseLifecycleEvent is response.created / response.in_progress /
// response.completed / response.failed.
type ResponseLifecycleEvent struct {
	Type           string   `json:"type"`
	SequenceNumber int      `json:"sequence_number"`
	Response       Response `json:"response"`
}

// OutputItemEvent is response.output_item.added / response.output_item.done.
type OutputItemEvent struct {
	Type           string        `json:"type"`
	SequenceNumber int           `json:"sequence_number"`
	OutputIndex    int           `json:"output_index"`
	Item           ResponsesItem `json:"item"`
}

// ContentPartEvent is response.content_part.added / response.content_part.done.
type ContentPartEvent struct {
	Type           string               `json:"type"`
	SequenceNumber int                  `json:"sequence_number"`
	ItemID         string               `json:"item_id"`
	OutputIndex    int                  `json:"output_index"`
	ContentIndex   int                  `json:"content_index"`
	Part           ResponsesContentPart `json:"part"`
}

// TextDeltaEvent is response.output_text.delta and
// response.reasoning_summary_text.delta (with SummaryIndex set).
type TextDeltaEvent struct {
	Type           string `json:"type"`
	SequenceNumber int    `json:"sequence_number"`
	ItemID         string `json:"item_id"`
	OutputIndex    int    `json:"output_index"`
	ContentIndex   int    `json:"content_index,omitempty"`
	SummaryIndex   int    `json:"summary_index,omitempty"`
	Delta          string `json:"delta"`
}

// TextDoneEvent is response.output_text.done and
// response.reasoning_summary_text.done.
type TextDoneEvent struct {
	Type           string `json:"type"`
	SequenceNumber int    `json:"sequence_number"`
	ItemID         string `json:"item_id"`
	OutputIndex    int    `json:"output_index"`
	ContentIndex   int    `json:"content_index,omitempty"`
	SummaryIndex   int    `json:"summary_index,omitempty"`
	Text           string `json:"text"`
}

// ArgumentsDeltaEvent is response.function_call_arguments.delta and
// response.custom_tool_call_input.delta.
type ArgumentsDeltaEvent struct {
	Type           string `json:"type"`
	SequenceNumber int    `json:"sequence_number"`
	ItemID         string `json:"item_id"`
	OutputIndex    int    `json:"output_index"`
	Delta          string `json:"delta"`
}

// ArgumentsDoneEvent is response.function_call_arguments.done and
// response.custom_tool_call_input.done.
type ArgumentsDoneEvent struct {
	Type           string `json:"type"`
	SequenceNumber int    `json:"sequence_number"`
	ItemID         string `json:"item_id"`
	OutputIndex    int    `json:"output_index"`
	Arguments      string `json:"arguments,omitempty"`
	Input          string `json:"input,omitempty"`
}

// ErrorEvent is the error frame.
type ErrorEvent struct {
	Type           string         `json:"type"`
	SequenceNumber int            `json:"sequence_number"`
	Error          ResponsesError `json:"error"`
}
