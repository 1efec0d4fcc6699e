package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/tjfontaine/wirebridge/internal/sse"
	"github.com/tjfontaine/wirebridge/internal/translator"
)

// pumpStream reads SSE frames from the upstream body, converts each through
// conv, and writes the translated frames to the client, flushing as it goes.
// It returns the full translated transcript for recording.
func (h *Handlers) pumpStream(w http.ResponseWriter, r io.Reader, conv translator.StreamConverter) (string, error) {
	out := sse.NewWriter(w)
	scanner := sse.NewScanner(r)

	var transcript strings.Builder
	for {
		frame, err := scanner.Next()
		if err == io.EOF {
			return transcript.String(), nil
		}
		if err != nil {
			return transcript.String(), err
		}

		chunk, err := conv.ConvertChunk(sse.Format(frame.Event, frame.Data))
		if err != nil {
			return transcript.String(), err
		}
		if chunk == "" {
			continue
		}

		transcript.WriteString(chunk)
		if err := out.WriteRaw(chunk); err != nil {
			return transcript.String(), err
		}
	}
}
