// Package api provides the HTTP handlers for the chat server.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boneycanute/bare-bones-chat/internal/config"
	"github.com/boneycanute/bare-bones-chat/internal/domain"
	"github.com/boneycanute/bare-bones-chat/internal/llm"
	"github.com/boneycanute/bare-bones-chat/internal/memory"
	"github.com/boneycanute/bare-bones-chat/internal/policy"
	"github.com/boneycanute/bare-bones-chat/internal/store"
)

// Streamer submits a composed prompt in streaming mode.
type Streamer interface {
	Stream(ctx context.Context, prompt, systemPrompt string, transcript *memory.Transcript) (<-chan llm.Increment, error)
}

// Retriever fetches context snippets for a query. A nil Retriever on the
// handler means the backend is unconfigured and retrieval is skipped.
type Retriever interface {
	Retrieve(ctx context.Context, query, namespace string) ([]domain.Snippet, error)
}

// Handler handles HTTP requests.
type Handler struct {
	config    *config.Config
	store     store.Store
	memory    *memory.Store
	retriever Retriever
	invoker   Streamer
	policy    *policy.Engine
}

// NewHandler creates a new handler.
func NewHandler(cfg *config.Config, st store.Store, mem *memory.Store, retriever Retriever, invoker Streamer, engine *policy.Engine) *Handler {
	return &Handler{
		config:    cfg,
		store:     st,
		memory:    mem,
		retriever: retriever,
		invoker:   invoker,
		policy:    engine,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/chat", h.Chat)

	e.GET("/api/agents/:agent_id", h.GetAgent)
	e.POST("/api/agents", h.UpsertAgent)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
