package api

import (
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
	"github.com/boneycanute/bare-bones-chat/internal/policy"
	"github.com/boneycanute/bare-bones-chat/internal/prompt"
	"github.com/boneycanute/bare-bones-chat/internal/sse"
)

// Chat handles a conversation turn and streams the reply as server-sent
// events.
// POST /api/chat (multipart form)
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	message := c.FormValue("message")
	sessionID := c.FormValue("sessionId")
	namespace := c.FormValue("namespace")
	systemPrompt := c.FormValue("system_prompt")
	agentID := c.FormValue("agent_id")

	var fileHeaders []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		fileHeaders = form.File["files"]
	}

	if message == "" && len(fileHeaders) == 0 {
		log.Printf("WARN: chat request with no message or files")
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "No message or files provided",
		})
	}

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	var totalSize int64
	for _, fh := range fileHeaders {
		totalSize += fh.Size
	}
	if h.config.MaxUploadBytes > 0 && totalSize > h.config.MaxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": "uploaded files exceed size limit",
		})
	}

	// Agent record supplies defaults for fields the form left empty.
	if agentID != "" && h.store != nil {
		agent, err := h.store.GetAgent(ctx, agentID)
		if err != nil {
			log.Printf("WARN: failed to load agent %s: %v", agentID, err)
		} else if agent != nil {
			if systemPrompt == "" {
				systemPrompt = agent.SystemPrompt
			}
			if namespace == "" {
				namespace = agent.Namespace
			}
		}
	}

	if h.policy != nil {
		decision, err := h.policy.Evaluate(ctx, map[string]interface{}{
			"message_length": len(message),
			"namespace":      namespace,
			"file_count":     len(fileHeaders),
		})
		if err != nil {
			log.Printf("ERROR: policy evaluation failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error":   "An unexpected error occurred",
				"details": err.Error(),
			})
		}
		if decision == policy.DecisionBlock {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "request blocked by policy",
			})
		}
	}

	release, err := h.memory.Acquire(sessionID)
	if err != nil {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": domain.ErrSessionBusy.Error(),
		})
	}
	defer release()

	var snippets []domain.Snippet
	if namespace != "" && h.retriever != nil {
		snippets, err = h.retriever.Retrieve(ctx, message, namespace)
		if err != nil {
			log.Printf("ERROR: vector search failed for namespace %s: %v", namespace, err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error":   "Failed to retrieve contextual information",
				"details": err.Error(),
			})
		}
	} else if namespace != "" {
		log.Printf("WARN: vector search backend not configured, skipping retrieval")
	}

	files, err := readFiles(fileHeaders)
	if err != nil {
		log.Printf("ERROR: failed to read uploaded files: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "An unexpected error occurred",
			"details": err.Error(),
		})
	}

	transcript := h.memory.GetOrCreate(sessionID)
	fullPrompt := prompt.Compose(snippets, files, message)

	increments, err := h.invoker.Stream(ctx, fullPrompt, systemPrompt, transcript)
	if err != nil {
		log.Printf("ERROR: failed to start completion stream: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "An unexpected error occurred",
			"details": err.Error(),
		})
	}

	if agentID != "" && h.store != nil {
		if err := h.store.DecrementCredits(ctx, agentID); err != nil {
			log.Printf("WARN: failed to decrement credits for agent %s: %v", agentID, err)
		}
	}

	writer, err := sse.NewWriter(c.Response())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "An unexpected error occurred",
			"details": err.Error(),
		})
	}
	writer.WriteHeaders()

	for inc := range increments {
		if inc.Err != nil {
			// Headers are already committed; abort the stream with no
			// terminal frame so the client sees a truncated reply.
			log.Printf("ERROR: completion stream failed mid-stream: %v", inc.Err)
			return nil
		}
		if inc.Done {
			if err := writer.WriteDone(); err != nil {
				log.Printf("WARN: failed to write completion frame: %v", err)
			}
			return nil
		}
		if err := writer.WriteContent(inc.Text); err != nil {
			log.Printf("WARN: client went away mid-stream: %v", err)
			// Drain so the invoker goroutine can finish recording memory.
			for range increments {
			}
			return nil
		}
	}
	return nil
}

// readFiles decodes each uploaded part as UTF-8 text labeled by file name.
func readFiles(fileHeaders []*multipart.FileHeader) ([]domain.FileContent, error) {
	var files []domain.FileContent
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, domain.FileContent{Name: fh.Filename, Text: string(data)})
	}
	return files, nil
}
