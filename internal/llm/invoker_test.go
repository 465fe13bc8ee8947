package llm

import (
	"context"
	"errors"
	"io"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
	"github.com/boneycanute/bare-bones-chat/internal/memory"
)

// fakeStream replays canned responses then a terminal error.
type fakeStream struct {
	responses []openai.ChatCompletionStreamResponse
	finalErr  error
	closed    bool
}

func (f *fakeStream) Recv() (openai.ChatCompletionStreamResponse, error) {
	if len(f.responses) == 0 {
		return openai.ChatCompletionStreamResponse{}, f.finalErr
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

func deltaResponse(text string) openai.ChatCompletionStreamResponse {
	return openai.ChatCompletionStreamResponse{
		Choices: []openai.ChatCompletionStreamChoice{
			{Delta: openai.ChatCompletionStreamChoiceDelta{Content: text}},
		},
	}
}

func newFakeInvoker(stream *fakeStream, capture *openai.ChatCompletionRequest) *Invoker {
	return &Invoker{
		model: "gpt-4",
		openStream: func(ctx context.Context, req openai.ChatCompletionRequest) (completionStream, error) {
			if capture != nil {
				*capture = req
			}
			return stream, nil
		},
	}
}

func collect(t *testing.T, ch <-chan Increment) []Increment {
	t.Helper()
	var out []Increment
	for inc := range ch {
		out = append(out, inc)
	}
	return out
}

func TestStreamTokenOrderAndDone(t *testing.T) {
	stream := &fakeStream{
		responses: []openai.ChatCompletionStreamResponse{
			deltaResponse("Hel"), deltaResponse("lo"),
		},
		finalErr: io.EOF,
	}
	inv := newFakeInvoker(stream, nil)
	transcript := &memory.Transcript{}

	ch, err := inv.Stream(context.Background(), "2+2", "", transcript)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	incs := collect(t, ch)
	if len(incs) != 3 {
		t.Fatalf("expected 3 increments, got %+v", incs)
	}
	if incs[0].Text != "Hel" || incs[1].Text != "lo" {
		t.Fatalf("tokens out of order: %+v", incs)
	}
	if !incs[2].Done || incs[2].Err != nil {
		t.Fatalf("expected terminal Done, got %+v", incs[2])
	}
	if !stream.closed {
		t.Fatalf("stream not closed")
	}

	turns := transcript.Turns()
	if len(turns) != 2 {
		t.Fatalf("expected user+assistant turns, got %+v", turns)
	}
	if turns[0].Role != domain.RoleUser || turns[0].Content != "2+2" {
		t.Fatalf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Role != domain.RoleAssistant || turns[1].Content != "Hello" {
		t.Fatalf("unexpected assistant turn: %+v", turns[1])
	}
}

func TestStreamMidStreamErrorKeepsPartialTranscript(t *testing.T) {
	wantErr := errors.New("connection reset")
	stream := &fakeStream{
		responses: []openai.ChatCompletionStreamResponse{deltaResponse("par")},
		finalErr:  wantErr,
	}
	inv := newFakeInvoker(stream, nil)
	transcript := &memory.Transcript{}

	ch, err := inv.Stream(context.Background(), "q", "", transcript)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	incs := collect(t, ch)
	last := incs[len(incs)-1]
	if !errors.Is(last.Err, wantErr) || last.Done {
		t.Fatalf("expected terminal Err, got %+v", last)
	}

	turns := transcript.Turns()
	if len(turns) != 2 || turns[1].Content != "par" {
		t.Fatalf("expected partial assistant turn, got %+v", turns)
	}
}

func TestStreamDefaultSystemPromptAndHistory(t *testing.T) {
	var captured openai.ChatCompletionRequest
	stream := &fakeStream{finalErr: io.EOF}
	inv := newFakeInvoker(stream, &captured)

	transcript := &memory.Transcript{}
	transcript.AppendUser("earlier question")
	transcript.AppendAssistant("earlier answer")

	ch, err := inv.Stream(context.Background(), "now", "", transcript)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	collect(t, ch)

	if len(captured.Messages) != 4 {
		t.Fatalf("expected system+2 history+user, got %+v", captured.Messages)
	}
	if captured.Messages[0].Role != openai.ChatMessageRoleSystem || captured.Messages[0].Content != DefaultSystemPrompt {
		t.Fatalf("unexpected system message: %+v", captured.Messages[0])
	}
	if captured.Messages[3].Content != "now" {
		t.Fatalf("prompt not last: %+v", captured.Messages)
	}
	if captured.Temperature != 0.7 {
		t.Fatalf("unexpected temperature: %v", captured.Temperature)
	}
	if !captured.Stream {
		t.Fatalf("request not marked streaming")
	}
}

func TestStreamOpenFailureIsSynchronous(t *testing.T) {
	wantErr := errors.New("auth failed")
	inv := &Invoker{
		model: "gpt-4",
		openStream: func(ctx context.Context, req openai.ChatCompletionRequest) (completionStream, error) {
			return nil, wantErr
		},
	}
	transcript := &memory.Transcript{}

	if _, err := inv.Stream(context.Background(), "q", "", transcript); !errors.Is(err, wantErr) {
		t.Fatalf("expected synchronous open error, got %v", err)
	}
	if len(transcript.Turns()) != 0 {
		t.Fatalf("transcript must stay empty when the stream never opened")
	}
}
