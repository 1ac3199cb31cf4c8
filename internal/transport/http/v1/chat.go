package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// HandleChat runs one orchestration round for a chat.
// POST /v1/chat
func (h *Handler) HandleChat(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ChatResponse{Success: false, Error: "invalid request body"})
	}

	reply, err := h.service.HandleChat(c.Request().Context(), currentUser(c), &req)
	if err != nil {
		return httpError(c, err)
	}

	return c.JSON(http.StatusOK, domain.ChatResponse{
		Success: true,
		Message: reply,
	})
}
