// Package client consumes the chat server's event stream and drives the
// conversation state machine shown by the UI.
package client

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"strings"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

const (
	framePrefix  = "data: "
	doneSentinel = "[DONE]"
)

// frame is the JSON payload of one event line.
type frame struct {
	Content string `json:"content"`
}

// StreamReader decodes text increments from an event-stream body. It is a
// lazy, non-restartable sequence: call Next until it returns io.EOF (clean
// completion via the sentinel) or domain.ErrTruncatedStream (the body ended
// with no sentinel, which signals a mid-stream server failure).
type StreamReader struct {
	r    *bufio.Reader
	body io.Closer
	done bool
}

// NewStreamReader wraps a response body.
func NewStreamReader(body io.ReadCloser) *StreamReader {
	return &StreamReader{r: bufio.NewReader(body), body: body}
}

// Next returns the next decoded increment. Malformed frames are logged and
// skipped, never fatal.
func (s *StreamReader) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for {
		line, err := s.r.ReadString('\n')

		// A partial trailing line is still a candidate frame.
		text, ok := s.parseLine(line)
		if ok {
			if text == doneSentinel {
				s.done = true
				return "", io.EOF
			}
			return text, nil
		}

		if err != nil {
			s.done = true
			if err == io.EOF {
				return "", domain.ErrTruncatedStream
			}
			return "", err
		}
	}
}

// Close closes the underlying body.
func (s *StreamReader) Close() error {
	return s.body.Close()
}

// parseLine extracts a frame payload from one line. Returns false for blank
// lines, non-data lines and malformed payloads.
func (s *StreamReader) parseLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, framePrefix) {
		return "", false
	}

	var f frame
	if err := json.Unmarshal([]byte(strings.TrimPrefix(line, framePrefix)), &f); err != nil {
		log.Printf("WARN: skipping malformed frame: %v", err)
		return "", false
	}
	return f.Content, true
}
