package client

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

// State of the chat controller.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateStreaming
	StateError
)

// DefaultCredits is the starting conversation quota shown by the UI.
const DefaultCredits = 5

// Controller owns the client-side conversation state: the message list, the
// input text, the streaming flag and the last error. It sequences request
// submission, optimistic message-list mutation and stream consumption.
//
// All state access is mutex-guarded; Submit blocks for the duration of the
// stream and is expected to run off the UI goroutine.
type Controller struct {
	client *Client

	mu       sync.Mutex
	state    State
	messages []domain.Message
	input    string
	lastErr  error
	credits  int

	// Defaults applied to each submission.
	AgentID      string
	Namespace    string
	SystemPrompt string

	// OnChange is invoked after every state mutation, outside the lock.
	OnChange func()
}

// NewController creates an idle controller.
func NewController(c *Client) *Controller {
	return &Controller{client: c, credits: DefaultCredits}
}

// State returns the current controller state.
func (ctl *Controller) State() State {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.state
}

// Streaming reports whether a submission is in flight.
func (ctl *Controller) Streaming() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.state == StateSubmitting || ctl.state == StateStreaming
}

// Messages returns a copy of the message list.
func (ctl *Controller) Messages() []domain.Message {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	out := make([]domain.Message, len(ctl.messages))
	copy(out, ctl.messages)
	return out
}

// SetInput replaces the pending input text.
func (ctl *Controller) SetInput(text string) {
	ctl.mu.Lock()
	ctl.input = text
	ctl.mu.Unlock()
	ctl.notify()
}

// Input returns the pending input text.
func (ctl *Controller) Input() string {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.input
}

// Err returns the last recorded error, nil once dismissed.
func (ctl *Controller) Err() error {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.lastErr
}

// DismissError clears the error banner.
func (ctl *Controller) DismissError() {
	ctl.mu.Lock()
	ctl.lastErr = nil
	ctl.mu.Unlock()
	ctl.notify()
}

// Credits returns the remaining conversation quota.
func (ctl *Controller) Credits() int {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.credits
}

// AppendOpeningMessage seeds the conversation with an assistant greeting.
func (ctl *Controller) AppendOpeningMessage(content string) {
	ctl.mu.Lock()
	ctl.messages = append(ctl.messages, domain.Message{
		ID:        newMessageID(),
		Role:      domain.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	})
	ctl.mu.Unlock()
	ctl.notify()
}

// Submit sends the pending input as one conversation turn and folds the
// streamed reply into an assistant message. It is a no-op when the input is
// blank or a submission is already in flight. It blocks until the stream
// ends.
func (ctl *Controller) Submit(ctx context.Context, files ...FileUpload) error {
	ctl.mu.Lock()
	text := strings.TrimSpace(ctl.input)
	if text == "" || ctl.state == StateSubmitting || ctl.state == StateStreaming {
		ctl.mu.Unlock()
		return nil
	}

	// Optimistic: the user message appears before the request is sent.
	userMsg := domain.Message{
		ID:        newMessageID(),
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	}
	for _, f := range files {
		userMsg.Files = append(userMsg.Files, domain.FileAttachment{
			Name: f.Name,
			Size: int64(len(f.Data)),
		})
	}
	ctl.messages = append(ctl.messages, userMsg)
	ctl.input = ""
	ctl.lastErr = nil
	ctl.state = StateSubmitting
	agentID, namespace, systemPrompt := ctl.AgentID, ctl.Namespace, ctl.SystemPrompt
	ctl.mu.Unlock()
	ctl.notify()

	stream, err := ctl.client.SendMessage(ctx, ChatRequest{
		Message:      text,
		SessionID:    uuid.New().String(),
		Namespace:    namespace,
		SystemPrompt: systemPrompt,
		AgentID:      agentID,
		Files:        files,
	})
	if err != nil {
		ctl.fail(err)
		return err
	}
	defer stream.Close()

	// The assistant placeholder is created empty and mutated in place.
	assistantID := newMessageID()
	ctl.mu.Lock()
	ctl.messages = append(ctl.messages, domain.Message{
		ID:        assistantID,
		Role:      domain.RoleAssistant,
		Timestamp: time.Now(),
	})
	ctl.state = StateStreaming
	ctl.mu.Unlock()
	ctl.notify()

	var full strings.Builder
	for {
		text, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			ctl.fail(err)
			return err
		}

		full.WriteString(text)
		// Accumulate-and-replace: the whole content is rewritten on each
		// increment.
		ctl.setMessageContent(assistantID, full.String())
		ctl.notify()
	}

	ctl.mu.Lock()
	ctl.state = StateIdle
	exhausted := false
	if ctl.credits > 0 {
		ctl.credits--
		exhausted = ctl.credits == 0
	}
	if exhausted {
		ctl.messages = append(ctl.messages, domain.Message{
			ID:        newMessageID(),
			Role:      domain.RoleAssistant,
			Timestamp: time.Now(),
			IsPricing: true,
		})
	}
	ctl.mu.Unlock()
	ctl.notify()
	return nil
}

// Feedback records a rating against a message id.
func (ctl *Controller) Feedback(messageID, rating string) {
	ctl.mu.Lock()
	for i := range ctl.messages {
		if ctl.messages[i].ID == messageID {
			ctl.messages[i].Feedback = &domain.Feedback{
				MessageID: messageID,
				Rating:    rating,
			}
			break
		}
	}
	ctl.mu.Unlock()
	ctl.notify()
}

// EditMessage overwrites a message's content in place. Client-only; no
// server update call exists for it.
func (ctl *Controller) EditMessage(messageID, content string) {
	ctl.mu.Lock()
	for i := range ctl.messages {
		if ctl.messages[i].ID == messageID {
			ctl.messages[i].Content = content
			break
		}
	}
	ctl.mu.Unlock()
	ctl.notify()
}

// fail records the error and returns to Idle: errors are advisory, the
// conversation stays editable.
func (ctl *Controller) fail(err error) {
	ctl.mu.Lock()
	ctl.lastErr = err
	ctl.state = StateError
	ctl.mu.Unlock()
	ctl.notify()

	ctl.mu.Lock()
	ctl.state = StateIdle
	ctl.mu.Unlock()
	ctl.notify()
}

func (ctl *Controller) setMessageContent(messageID, content string) {
	ctl.mu.Lock()
	for i := range ctl.messages {
		if ctl.messages[i].ID == messageID {
			ctl.messages[i].Content = content
			break
		}
	}
	ctl.mu.Unlock()
}

func (ctl *Controller) notify() {
	if ctl.OnChange != nil {
		ctl.OnChange()
	}
}

// newMessageID returns a time-derived message id.
func newMessageID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
