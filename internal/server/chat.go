package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumina-ai/lumina/internal/chat"
)

// ChatHandler serves the conversation endpoint.
type ChatHandler struct {
	orch *chat.Orchestrator
}

func NewChatHandler(orch *chat.Orchestrator) *ChatHandler {
	return &ChatHandler{orch: orch}
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
	Stream    bool   `json:"stream"`
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body must contain JSON data")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message content cannot be empty")
	}
	if req.SessionID == "" {
		req.SessionID = "default_session"
	}
	if req.ClientID == "" {
		req.ClientID = "demo_client"
	}

	turn := chat.Request{Message: req.Message, SessionID: req.SessionID, ClientID: req.ClientID}
	if req.Stream {
		return h.stream(c, turn)
	}

	reply, err := h.orch.Handle(c.Request().Context(), turn)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("Error processing request: %v", err))
	}
	return ok(c, reply, "")
}

func (h *ChatHandler) stream(c echo.Context, turn chat.Request) error {
	events, err := h.orch.HandleStream(c.Request().Context(), turn)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("Error processing request: %v", err))
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	flusher, okFlush := resp.Writer.(http.Flusher)
	if !okFlush {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "streaming unsupported")
	}

	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(resp.Writer, "data: %s\n\n", payload); err != nil {
			// client went away; drain so the turn still finishes server-side
			for range events {
			}
			return nil
		}
		flusher.Flush()
	}
	return nil
}
