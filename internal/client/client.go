package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

// FileUpload is one file attached to a submission.
type FileUpload struct {
	Name string
	Data []byte
}

// ChatRequest is one conversation submission.
type ChatRequest struct {
	Message      string
	SessionID    string
	Namespace    string
	SystemPrompt string
	AgentID      string
	Files        []FileUpload
}

// APIError is a JSON error body returned before streaming starts.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("chat API error [%d]: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("chat API error [%d]: %s", e.Status, e.Message)
}

// Client is the chat server HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given server base URL. Streaming responses
// stay open for the duration of a reply, so the client carries no timeout;
// cancellation comes from the request context.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// SendMessage submits one conversation turn and returns the reply stream.
// A non-200 response is decoded into an APIError.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (*StreamReader, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"message":       req.Message,
		"sessionId":     req.SessionID,
		"namespace":     req.Namespace,
		"system_prompt": req.SystemPrompt,
		"agent_id":      req.AgentID,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	for _, f := range req.Files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write file part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return nil, apiErr
	}

	return NewStreamReader(resp.Body), nil
}

// GetAgent fetches a stored agent configuration.
func (c *Client) GetAgent(ctx context.Context, agentID string) (*domain.AgentRecord, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/agents/"+agentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrAgentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var agent domain.AgentRecord
	if err := json.Unmarshal(respBody, &agent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent: %w", err)
	}
	return &agent, nil
}
