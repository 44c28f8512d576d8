package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/proptalk/proptalk/internal/errors"
	"github.com/proptalk/proptalk/internal/model"
	"github.com/proptalk/proptalk/internal/service"
)

// ChatHandler exposes the assistant conversation over HTTP.
type ChatHandler struct {
	assistant *service.AssistantService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(assistant *service.AssistantService) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

// Chat handles POST /api/v1/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, verrs)
			return
		}
		apierrors.BadRequest(c, "Invalid request: "+err.Error(), nil)
		return
	}

	resp, err := h.assistant.Chat(c.Request.Context(), &req)
	if err != nil {
		apierrors.InternalServerError(c, "Chat failed", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ChatStream handles POST /api/v1/chat/stream. Progress is pushed as SSE
// events (funnel, criteria, searching, results, content) followed by the
// full response and a done marker.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, verrs)
			return
		}
		apierrors.BadRequest(c, "Invalid request: "+err.Error(), nil)
		return
	}

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Transfer-Encoding", "chunked")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		apierrors.InternalServerError(c, "Streaming not supported", nil)
		return
	}

	sendSSE(c, "start", map[string]any{"message": req.Message})
	flusher.Flush()

	resp, err := h.assistant.ChatStream(c.Request.Context(), &req, func(event string, data any) error {
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})

	if err != nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "response", resp)
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// sendSSE sends a Server-Sent Event.
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
