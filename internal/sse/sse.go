// Package sse provides minimal server-sent-event frame parsing and
// formatting shared by the stream parsers and generators.
package sse

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Frame is one SSE frame: an optional event name and the concatenated data
// payload.
type Frame struct {
	Event string
	Data  string
}

// Parse splits raw into frames. A chunk may contain any number of complete
// frames; partial trailing lines are tolerated and yield what was complete.
// Comment lines and unknown fields are skipped.
func Parse(raw string) []Frame {
	var frames []Frame
	cur := Frame{}
	flush := func() {
		if cur.Event != "" || cur.Data != "" {
			frames = append(frames, cur)
		}
		cur = Frame{}
	}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "event:"):
			cur.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimPrefix(line, "data:")
			data = strings.TrimPrefix(data, " ")
			if cur.Data != "" {
				cur.Data += "\n"
			}
			cur.Data += data
		}
	}
	flush()
	return frames
}

// Format renders a frame. An empty event name produces a bare data frame.
func Format(event, data string) string {
	if event == "" {
		return fmt.Sprintf("data: %s\n\n", data)
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)
}

// Writer writes frames to an http response, flushing after each one when the
// underlying writer supports it.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter prepares w for streaming and returns a frame writer. It sets the
// standard SSE response headers when w is an http.ResponseWriter.
func NewWriter(w io.Writer) *Writer {
	sw := &Writer{w: w}
	if rw, ok := w.(http.ResponseWriter); ok {
		rw.Header().Set("Content-Type", "text/event-stream")
		rw.Header().Set("Cache-Control", "no-cache")
		rw.Header().Set("Connection", "keep-alive")
	}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	return sw
}

// WriteRaw writes pre-formatted frame text verbatim.
func (s *Writer) WriteRaw(raw string) error {
	if raw == "" {
		return nil
	}
	if _, err := io.WriteString(s.w, raw); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Scanner reads frames from a stream one at a time. It buffers up to 1MB per
// line to accommodate large data payloads.
type Scanner struct {
	sc  *bufio.Scanner
	cur Frame
}

// NewScanner wraps r for frame-at-a-time reading.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Scanner{sc: sc}
}

// Next returns the next complete frame, or io.EOF when the stream ends.
func (s *Scanner) Next() (Frame, error) {
	cur := Frame{}
	for s.sc.Scan() {
		line := strings.TrimSuffix(s.sc.Text(), "\r")
		switch {
		case line == "":
			if cur.Event != "" || cur.Data != "" {
				return cur, nil
			}
		case strings.HasPrefix(line, "event:"):
			cur.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimPrefix(line, "data:")
			data = strings.TrimPrefix(data, " ")
			if cur.Data != "" {
				cur.Data += "\n"
			}
			cur.Data += data
		}
	}
	if err := s.sc.Err(); err != nil {
		return Frame{}, err
	}
	if cur.Event != "" || cur.Data != "" {
		return cur, nil
	}
	return Frame{}, io.EOF
}
