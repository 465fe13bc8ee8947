package api

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

// GetAgent returns a stored agent configuration.
// GET /api/agents/:agent_id
func (h *Handler) GetAgent(c echo.Context) error {
	ctx := c.Request().Context()
	agentID := c.Param("agent_id")

	agent, err := h.store.GetAgent(ctx, agentID)
	if err != nil {
		log.Printf("ERROR: failed to get agent: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get agent"})
	}
	if agent == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": domain.ErrAgentNotFound.Error()})
	}

	return c.JSON(http.StatusOK, agent)
}

// UpsertAgent creates or replaces an agent configuration.
// POST /api/agents
func (h *Handler) UpsertAgent(c echo.Context) error {
	ctx := c.Request().Context()

	var agent domain.AgentRecord
	if err := c.Bind(&agent); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if agent.AgentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "agent_id is required"})
	}
	if agent.Name == "" {
		agent.Name = agent.AgentID
	}

	now := time.Now()
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = now
	}
	agent.UpdatedAt = now

	if err := h.store.UpsertAgent(ctx, &agent); err != nil {
		log.Printf("ERROR: failed to upsert agent: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save agent"})
	}

	return c.JSON(http.StatusOK, agent)
}
