package sse

import (
	"io"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Frame
	}{
		{
			"named frame",
			"event: message_start\ndata: {\"type\":\"message_start\"}\n\n",
			[]Frame{{Event: "message_start", Data: `{"type":"message_start"}`}},
		},
		{
			"bare data frame",
			"data: {\"id\":\"x\"}\n\n",
			[]Frame{{Data: `{"id":"x"}`}},
		},
		{
			"multiple frames",
			"data: one\n\ndata: two\n\n",
			[]Frame{{Data: "one"}, {Data: "two"}},
		},
		{
			"done sentinel",
			"data: [DONE]\n\n",
			[]Frame{{Data: "[DONE]"}},
		},
		{
			"missing trailing blank line",
			"event: ping\ndata: {}",
			[]Frame{{Event: "ping", Data: "{}"}},
		},
		{
			"empty input",
			"",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Parse() returned %d frames, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("frame %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	raw := Format("content_block_delta", `{"type":"content_block_delta"}`)
	frames := Parse(raw)
	if len(frames) != 1 {
		t.Fatalf("got %d frames", len(frames))
	}
	if frames[0].Event != "content_block_delta" {
		t.Errorf("event = %q", frames[0].Event)
	}
}

func TestScanner(t *testing.T) {
	r := strings.NewReader("event: a\ndata: 1\n\ndata: 2\n\n")
	sc := NewScanner(r)
	f, err := sc.Next()
	if err != nil || f.Event != "a" || f.Data != "1" {
		t.Fatalf("first frame = %+v, %v", f, err)
	}
	f, err = sc.Next()
	if err != nil || f.Data != "2" {
		t.Fatalf("second frame = %+v, %v", f, err)
	}
	if _, err = sc.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}
