package anthropic

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tjfontaine/wirebridge/internal/testutil"
)

func TestClient_CreateMessage(t *testing.T) {
	rec, cleanup := testutil.NewVCRRecorder(t, "create_message")
	defer cleanup()

	client := NewClient("test-key", WithHTTPClient(testutil.VCRHTTPClient(rec)))

	body := []byte(`{"model":"claude-sonnet-4-20250514","max_tokens":1024,"messages":[{"role":"user","content":"Hello, Claude"}]}`)

	raw, err := client.CreateMessage(context.Background(), body)
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	var resp MessagesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.Role != "assistant" {
		t.Errorf("role = %q, want assistant", resp.Role)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("stop_reason = %q, want end_turn", resp.StopReason)
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		t.Error("expected text content in response")
	}
}

func TestClient_CountTokens(t *testing.T) {
	rec, cleanup := testutil.NewVCRRecorder(t, "count_tokens")
	defer cleanup()

	client := NewClient("test-key", WithHTTPClient(testutil.VCRHTTPClient(rec)))

	body := []byte(`{"model":"claude-sonnet-4-20250514","messages":[{"role":"user","content":[{"type":"text","text":"Hello, Claude"}]}]}`)

	raw, err := client.CountTokens(context.Background(), body)
	if err != nil {
		t.Fatalf("CountTokens() error = %v", err)
	}

	var resp CountTokensResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.InputTokens != 14 {
		t.Errorf("input_tokens = %d, want 14", resp.InputTokens)
	}
}
