package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/tjfontaine/wirebridge/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	// In-memory SQLite, one database per test
	store, err := New("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveExchange(t *testing.T) {
	store := newTestStore(t)

	ex := &storage.Exchange{
		ID:              "ex-1",
		Direction:       storage.DirectionClaudeToOpenAI,
		Model:           "gpt-4o",
		Streaming:       true,
		Status:          storage.StatusCompleted,
		Duration:        250 * time.Millisecond,
		ClientRequest:   json.RawMessage(`{"model":"gpt-4o"}`),
		UpstreamRequest: json.RawMessage(`{"model":"gpt-4o","max_tokens":4096}`),
		ClientResponse:  json.RawMessage(`{"id":"msg_1"}`),
		FinishReason:    "end_turn",
		Usage:           json.RawMessage(`{"prompt_tokens":10,"completion_tokens":5}`),
	}

	if err := store.SaveExchange(context.Background(), ex); err != nil {
		t.Fatalf("SaveExchange() error = %v", err)
	}

	got, err := store.GetExchange(context.Background(), "ex-1")
	if err != nil {
		t.Fatalf("GetExchange() error = %v", err)
	}

	if got.Direction != storage.DirectionClaudeToOpenAI {
		t.Errorf("Direction = %v, want %v", got.Direction, storage.DirectionClaudeToOpenAI)
	}
	if got.Model != "gpt-4o" {
		t.Errorf("Model = %v, want gpt-4o", got.Model)
	}
	if !got.Streaming {
		t.Error("Streaming = false, want true")
	}
	if got.Status != storage.StatusCompleted {
		t.Errorf("Status = %v, want completed", got.Status)
	}
	if got.Duration != 250*time.Millisecond {
		t.Errorf("Duration = %v, want 250ms", got.Duration)
	}
	if string(got.UpstreamRequest) != `{"model":"gpt-4o","max_tokens":4096}` {
		t.Errorf("UpstreamRequest = %s", got.UpstreamRequest)
	}
	if got.FinishReason != "end_turn" {
		t.Errorf("FinishReason = %v, want end_turn", got.FinishReason)
	}
}

func TestStore_GetExchange_NotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetExchange(context.Background(), "missing"); err == nil {
		t.Error("GetExchange() expected error for missing id")
	}
}

func TestStore_SaveExchange_Failed(t *testing.T) {
	store := newTestStore(t)

	ex := &storage.Exchange{
		ID:           "ex-err",
		Direction:    storage.DirectionOpenAIToClaude,
		Model:        "claude-sonnet-4",
		Status:       storage.StatusFailed,
		ErrorMessage: "upstream returned 529",
	}

	if err := store.SaveExchange(context.Background(), ex); err != nil {
		t.Fatalf("SaveExchange() error = %v", err)
	}

	got, err := store.GetExchange(context.Background(), "ex-err")
	if err != nil {
		t.Fatalf("GetExchange() error = %v", err)
	}
	if got.Status != storage.StatusFailed {
		t.Errorf("Status = %v, want failed", got.Status)
	}
	if got.ErrorMessage != "upstream returned 529" {
		t.Errorf("ErrorMessage = %q", got.ErrorMessage)
	}
}

func TestStore_ListExchanges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	records := []*storage.Exchange{
		{ID: "a", Direction: storage.DirectionClaudeToOpenAI, Model: "gpt-4o", Status: storage.StatusCompleted, CreatedAt: base},
		{ID: "b", Direction: storage.DirectionOpenAIToClaude, Model: "claude-sonnet-4", Status: storage.StatusCompleted, CreatedAt: base.Add(time.Minute)},
		{ID: "c", Direction: storage.DirectionClaudeToOpenAI, Model: "gpt-4o", Status: storage.StatusFailed, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, ex := range records {
		if err := store.SaveExchange(ctx, ex); err != nil {
			t.Fatalf("SaveExchange(%s) error = %v", ex.ID, err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := store.ListExchanges(ctx, storage.ListOptions{})
		if err != nil {
			t.Fatalf("ListExchanges() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("ListExchanges() len = %d, want 3", len(got))
		}
		if got[0].ID != "c" || got[2].ID != "a" {
			t.Errorf("order = [%s %s %s], want [c b a]", got[0].ID, got[1].ID, got[2].ID)
		}
	})

	t.Run("filter by direction", func(t *testing.T) {
		got, err := store.ListExchanges(ctx, storage.ListOptions{Direction: storage.DirectionOpenAIToClaude})
		if err != nil {
			t.Fatalf("ListExchanges() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "b" {
			t.Errorf("ListExchanges(direction) = %v, want [b]", got)
		}
	})

	t.Run("limit", func(t *testing.T) {
		got, err := store.ListExchanges(ctx, storage.ListOptions{Limit: 2})
		if err != nil {
			t.Fatalf("ListExchanges() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("ListExchanges(limit=2) len = %d, want 2", len(got))
		}
	})
}
