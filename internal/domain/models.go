// Package domain defines the core types shared by the chat server and client.
package domain

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Feedback ratings.
const (
	RatingPositive = "positive"
	RatingNegative = "negative"
)

// Feedback records a user rating against a message.
type Feedback struct {
	MessageID string `json:"message_id"`
	Rating    string `json:"rating"` // positive, negative
	Text      string `json:"text,omitempty"`
}

// FileAttachment describes an uploaded file shown alongside a message.
type FileAttachment struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type,omitempty"`
}

// Message is a single unit of conversation. The assistant message for a turn
// is created empty and its Content is replaced in place while the reply
// streams in.
type Message struct {
	ID        string           `json:"id"`
	Role      string           `json:"role"` // user, assistant
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp,omitempty"`
	Feedback  *Feedback        `json:"feedback,omitempty"`
	Files     []FileAttachment `json:"files,omitempty"`
	IsPricing bool             `json:"is_pricing"`
}

// Snippet is a context fragment retrieved from the vector index.
// Source is the 1-based similarity rank.
type Snippet struct {
	Content string `json:"content"`
	Source  int    `json:"source"`
}

// FileContent is the decoded text of one uploaded file.
type FileContent struct {
	Name string
	Text string
}

// Turn is one (role, content) entry in a session transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AgentRecord is a stored agent configuration, fetched once per conversation.
type AgentRecord struct {
	AgentID        string    `json:"agent_id"`
	Name           string    `json:"agent_name"`
	Description    string    `json:"description,omitempty"`
	SystemPrompt   string    `json:"system_prompt,omitempty"`
	Namespace      string    `json:"namespace,omitempty"`
	PrimaryModel   string    `json:"primary_model,omitempty"`
	FallbackModel  string    `json:"fallback_model,omitempty"`
	OpeningMessage string    `json:"opening_message,omitempty"`
	QuickMessages  []string  `json:"quick_messages,omitempty"`
	IsPaid         bool      `json:"is_paid"`
	Credits        int       `json:"credits"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
