package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// CreateChat creates a new chat session.
// POST /v1/chats
func (h *Handler) CreateChat(c echo.Context) error {
	var req domain.CreateChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ChatResponse{Success: false, Error: "invalid request body"})
	}

	chat, err := h.service.CreateChat(c.Request().Context(), currentUser(c), req.Title)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, chat)
}

// ListChats lists the caller's chats.
// GET /v1/chats
func (h *Handler) ListChats(c echo.Context) error {
	chats, err := h.service.ListChats(c.Request().Context(), currentUser(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"chats": chats,
	})
}

// GetChatMessages retrieves the ordered history of a chat.
// GET /v1/chats/:chat_id/messages
func (h *Handler) GetChatMessages(c echo.Context) error {
	messages, err := h.service.GetMessages(c.Request().Context(), currentUser(c), c.Param("chat_id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// AppendChatMessage appends a user message to a chat.
// POST /v1/chats/:chat_id/messages
func (h *Handler) AppendChatMessage(c echo.Context) error {
	var req domain.AppendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ChatResponse{Success: false, Error: "invalid request body"})
	}

	msg, err := h.service.AppendMessage(c.Request().Context(), currentUser(c), c.Param("chat_id"), &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// GetUsage returns the caller's usage counters.
// GET /v1/usage
func (h *Handler) GetUsage(c echo.Context) error {
	usage, err := h.service.GetUsage(c.Request().Context(), currentUser(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, usage)
}
