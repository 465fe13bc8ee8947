package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

func TestUpsertThenGetAgent(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &fakeStreamer{}, nil)

	body := `{
		"agent_id": "a1",
		"agent_name": "Tutor",
		"system_prompt": "You are a math tutor.",
		"namespace": "math-docs",
		"opening_message": "Hi, ask me anything about math.",
		"quick_messages": ["What is calculus?", "Explain primes"],
		"credits": 5
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/agents", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.UpsertAgent(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/agents/a1", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("agent_id")
	c.SetParamValues("a1")
	if err := h.GetAgent(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var agent domain.AgentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &agent); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if agent.Name != "Tutor" || agent.SystemPrompt != "You are a math tutor." {
		t.Fatalf("unexpected agent: %+v", agent)
	}
	if len(agent.QuickMessages) != 2 {
		t.Fatalf("quick messages lost: %+v", agent.QuickMessages)
	}
}

func TestGetAgentNotFound(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &fakeStreamer{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/agents/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("agent_id")
	c.SetParamValues("missing")

	if err := h.GetAgent(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpsertAgentRequiresID(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &fakeStreamer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agents", strings.NewReader(`{"agent_name":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.UpsertAgent(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &fakeStreamer{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	if err := h.Health(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
