// Package sse frames streamed increments as server-sent events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DoneSentinel is the reserved content value marking clean stream completion.
const DoneSentinel = "[DONE]"

// frame is the JSON payload of one event line.
type frame struct {
	Content string `json:"content"`
}

// Writer serializes increments onto a persistent event-stream response.
// Frames are written and flushed one at a time in call order; no batching.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter wraps a response writer. It fails when the underlying writer
// cannot flush, since streaming depends on it.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported by response writer")
	}
	return &Writer{w: w, flusher: flusher}, nil
}

// WriteHeaders declares the event-stream response and commits the 200.
func (s *Writer) WriteHeaders() {
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()
}

// WriteContent emits one content frame.
func (s *Writer) WriteContent(text string) error {
	return s.writeFrame(text)
}

// WriteDone emits the terminal sentinel frame.
func (s *Writer) WriteDone() error {
	return s.writeFrame(DoneSentinel)
}

func (s *Writer) writeFrame(content string) error {
	payload, err := json.Marshal(frame{Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	s.flusher.Flush()
	return nil
}
