// Package llm invokes the completion service in streaming mode and relays
// increments over a channel.
package llm

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
	"github.com/boneycanute/bare-bones-chat/internal/memory"
)

// DefaultSystemPrompt is used when a request supplies no system instruction.
const DefaultSystemPrompt = "You are a helpful assistant."

const temperature = 0.7

// Increment is one unit of streamed model output. A stream is zero or more
// Text increments followed by exactly one Done or one Err, after which the
// channel is closed.
type Increment struct {
	Text string
	Err  error
	Done bool
}

// completionStream is the read surface of an open completion stream.
// *openai.ChatCompletionStream satisfies it.
type completionStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

// Invoker submits prompts to the completion service configured for
// streaming output.
type Invoker struct {
	model string

	openStream func(ctx context.Context, req openai.ChatCompletionRequest) (completionStream, error)
}

// NewInvoker creates an invoker over an OpenAI client.
func NewInvoker(client *openai.Client, model string) *Invoker {
	return &Invoker{
		model: model,
		openStream: func(ctx context.Context, req openai.ChatCompletionRequest) (completionStream, error) {
			return client.CreateChatCompletionStream(ctx, req)
		},
	}
}

// Stream submits prompt plus prior transcript turns and returns a channel of
// increments in token arrival order. Errors opening the stream are returned
// synchronously, before any response bytes are committed.
//
// Transcript side effect: the user turn is appended before the call and the
// assistant turn is appended with whatever content accumulated, on both
// completion and mid-stream failure. Memory is best effort, not
// transactional.
func (inv *Invoker) Stream(ctx context.Context, prompt, systemPrompt string, transcript *memory.Transcript) (<-chan Increment, error) {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	for _, turn := range transcript.Turns() {
		messages = append(messages, openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: domain.RoleUser, Content: prompt})

	stream, err := inv.openStream(ctx, openai.ChatCompletionRequest{
		Model:       inv.model,
		Messages:    messages,
		Temperature: temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}

	transcript.AppendUser(prompt)

	out := make(chan Increment)
	go func() {
		defer close(out)
		defer stream.Close()

		var full string
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				transcript.AppendAssistant(full)
				out <- Increment{Done: true}
				return
			}
			if err != nil {
				// Partial transcript is kept on purpose.
				transcript.AppendAssistant(full)
				out <- Increment{Err: err}
				return
			}

			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			full += delta
			out <- Increment{Text: delta}
		}
	}()

	return out, nil
}
