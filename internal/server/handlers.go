package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	anthropicapi "github.com/tjfontaine/wirebridge/internal/api/anthropic"
	openaiapi "github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/overrides"
	"github.com/tjfontaine/wirebridge/internal/storage"
	"github.com/tjfontaine/wirebridge/internal/telemetry"
	"github.com/tjfontaine/wirebridge/internal/tokens"
	"github.com/tjfontaine/wirebridge/internal/translator"
)

// Handlers implement the bridge endpoints. Each proxy endpoint accepts one
// protocol's request shape, sends the translated request to the opposite
// provider, and translates the response back.
type Handlers struct {
	logger    *slog.Logger
	anthropic *anthropicapi.Client
	openai    *openaiapi.Client
	counter   *tokens.Registry
	rules     *overrides.Engine
	recorder  storage.Recorder
}

// NewHandlers wires the handler dependencies. rules and recorder may be nil.
func NewHandlers(logger *slog.Logger, anthropic *anthropicapi.Client, openai *openaiapi.Client, counter *tokens.Registry, rules *overrides.Engine, recorder storage.Recorder) *Handlers {
	if rules == nil {
		rules = overrides.NewEngine(nil)
	}
	return &Handlers{
		logger:    logger,
		anthropic: anthropic,
		openai:    openai,
		counter:   counter,
		rules:     rules,
		recorder:  recorder,
	}
}

// proxySpec binds one endpoint to its translation direction.
type proxySpec struct {
	direction         storage.Direction
	translateRequest  func([]byte) ([]byte, error)
	translateResponse func([]byte) ([]byte, error)
	newStream         func(model string) translator.StreamConverter
	create            func(context.Context, []byte) ([]byte, error)
	stream            func(context.Context, []byte) (io.ReadCloser, error)
	writeError        func(http.ResponseWriter, int, string)
}

// Messages serves Anthropic Messages requests against the OpenAI upstream.
func (h *Handlers) Messages(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, proxySpec{
		direction:         storage.DirectionClaudeToOpenAI,
		translateRequest:  translator.ClaudeRequestToOpenAI,
		translateResponse: translator.OpenAIResponseToClaude,
		newStream: func(model string) translator.StreamConverter {
			return translator.NewOpenAIToClaudeStream(model)
		},
		create:     h.openai.CreateChatCompletion,
		stream:     h.openai.StreamChatCompletion,
		writeError: writeClaudeError,
	})
}

// ChatCompletions serves OpenAI Chat Completions requests against the
// Anthropic upstream.
func (h *Handlers) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, proxySpec{
		direction:         storage.DirectionOpenAIToClaude,
		translateRequest:  translator.OpenAIRequestToClaude,
		translateResponse: translator.ClaudeResponseToOpenAI,
		newStream: func(model string) translator.StreamConverter {
			return translator.NewClaudeToOpenAIStream(model)
		},
		create:     h.anthropic.CreateMessage,
		stream:     h.anthropic.StreamMessage,
		writeError: writeOpenAIError,
	})
}

// Responses serves OpenAI Responses requests against the Anthropic upstream.
func (h *Handlers) Responses(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, proxySpec{
		direction:         storage.DirectionResponsesToClaude,
		translateRequest:  translator.ResponsesRequestToClaude,
		translateResponse: translator.ClaudeResponseToResponses,
		newStream: func(model string) translator.StreamConverter {
			return translator.NewClaudeToResponsesStream(model)
		},
		create:     h.anthropic.CreateMessage,
		stream:     h.anthropic.StreamMessage,
		writeError: writeOpenAIError,
	})
}

func (h *Handlers) proxy(w http.ResponseWriter, r *http.Request, spec proxySpec) {
	start := time.Now()

	ctx, span := telemetry.Tracer().Start(r.Context(), string(spec.direction))
	defer span.End()
	r = r.WithContext(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		spec.writeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	model := gjson.GetBytes(body, "model").String()
	streaming := gjson.GetBytes(body, "stream").Bool()
	AddLogField(r.Context(), "model", model)

	upstreamReq, err := spec.translateRequest(body)
	if err != nil {
		AddError(r.Context(), err)
		spec.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	upstreamReq, err = h.rules.Apply(upstreamReq)
	if err != nil {
		AddError(r.Context(), err)
		spec.writeError(w, http.StatusInternalServerError, fmt.Sprintf("applying overrides: %v", err))
		return
	}

	ex := &storage.Exchange{
		ID:              uuid.New().String(),
		Direction:       spec.direction,
		Model:           model,
		Streaming:       streaming,
		ClientRequest:   body,
		UpstreamRequest: upstreamReq,
	}

	if streaming {
		rc, err := spec.stream(r.Context(), upstreamReq)
		if err != nil {
			AddError(r.Context(), err)
			h.failExchange(r.Context(), ex, start, err)
			spec.writeError(w, upstreamStatus(err), err.Error())
			return
		}
		defer rc.Close()

		transcript, err := h.pumpStream(w, rc, spec.newStream(model))
		// Transcripts are SSE text, stored as a JSON string
		ex.ClientResponse, _ = json.Marshal(transcript)
		if err != nil {
			// Headers are already out; record the failure and stop
			AddError(r.Context(), err)
			h.failExchange(r.Context(), ex, start, err)
			return
		}
	} else {
		raw, err := spec.create(r.Context(), upstreamReq)
		if err != nil {
			AddError(r.Context(), err)
			h.failExchange(r.Context(), ex, start, err)
			spec.writeError(w, upstreamStatus(err), err.Error())
			return
		}
		ex.UpstreamResponse = raw

		out, err := spec.translateResponse(raw)
		if err != nil {
			AddError(r.Context(), err)
			h.failExchange(r.Context(), ex, start, err)
			spec.writeError(w, http.StatusBadGateway, fmt.Sprintf("invalid upstream response: %v", err))
			return
		}
		ex.ClientResponse = out
		ex.FinishReason = finishFromPayload(out)
		if usage := gjson.GetBytes(out, "usage"); usage.Exists() {
			ex.Usage = []byte(usage.Raw)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(out)
	}

	ex.Status = storage.StatusCompleted
	ex.Duration = time.Since(start)
	h.record(r.Context(), ex)
}

// CountTokens counts prompt tokens for a Messages-shaped request.
func (h *Handlers) CountTokens(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeClaudeError(w, http.StatusBadRequest, "reading request body")
		return
	}

	req, err := translator.ParseClaudeRequest(body)
	if err != nil {
		AddError(r.Context(), err)
		writeClaudeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	res, err := h.counter.Count(r.Context(), req)
	if err != nil {
		AddError(r.Context(), err)
		writeClaudeError(w, http.StatusInternalServerError, fmt.Sprintf("counting tokens: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"input_tokens": res.InputTokens})
}

// ListExchanges lists recorded exchanges, newest first.
func (h *Handlers) ListExchanges(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeOpenAIError(w, http.StatusNotFound, "exchange recording is disabled")
		return
	}

	opts := storage.ListOptions{
		Direction: storage.Direction(r.URL.Query().Get("direction")),
		Model:     r.URL.Query().Get("model"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		opts.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		opts.Offset, _ = strconv.Atoi(v)
	}

	list, err := h.recorder.ListExchanges(r.Context(), opts)
	if err != nil {
		AddError(r.Context(), err)
		writeOpenAIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []storage.ExchangeSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"exchanges": list})
}

// GetExchange returns one recorded exchange with full payloads.
func (h *Handlers) GetExchange(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeOpenAIError(w, http.StatusNotFound, "exchange recording is disabled")
		return
	}

	ex, err := h.recorder.GetExchange(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeOpenAIError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ex)
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) record(ctx context.Context, ex *storage.Exchange) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.SaveExchange(ctx, ex); err != nil {
		h.logger.Error("failed to record exchange",
			slog.String("id", ex.ID),
			slog.String("error", err.Error()))
	}
}

func (h *Handlers) failExchange(ctx context.Context, ex *storage.Exchange, start time.Time, err error) {
	ex.Status = storage.StatusFailed
	ex.ErrorMessage = err.Error()
	ex.Duration = time.Since(start)
	h.record(ctx, ex)
}

// upstreamStatus extracts the HTTP status an upstream error arrived with,
// defaulting to 502 for transport failures.
func upstreamStatus(err error) int {
	switch e := err.(type) {
	case *anthropicapi.APIError:
		if e.StatusCode != 0 {
			return e.StatusCode
		}
	case *openaiapi.APIError:
		if e.StatusCode != 0 {
			return e.StatusCode
		}
	}
	return http.StatusBadGateway
}

func finishFromPayload(out []byte) string {
	if v := gjson.GetBytes(out, "stop_reason"); v.Exists() {
		return v.String()
	}
	if v := gjson.GetBytes(out, "choices.0.finish_reason"); v.Exists() {
		return v.String()
	}
	return gjson.GetBytes(out, "status").String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeClaudeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"type": "error",
		"error": map[string]string{
			"type":    claudeErrorType(status),
			"message": msg,
		},
	})
}

func writeOpenAIError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"type":    openaiErrorType(status),
			"message": msg,
		},
	})
}

func claudeErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request_error"
	case http.StatusUnauthorized:
		return "authentication_error"
	case http.StatusForbidden:
		return "permission_error"
	case http.StatusNotFound:
		return "not_found_error"
	case http.StatusTooManyRequests:
		return "rate_limit_error"
	case 529:
		return "overloaded_error"
	default:
		return "api_error"
	}
}

func openaiErrorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusNotFound:
		return "invalid_request_error"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "authentication_error"
	case http.StatusTooManyRequests:
		return "rate_limit_error"
	default:
		return "api_error"
	}
}
