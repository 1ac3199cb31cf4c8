// Package v1 provides HTTP handlers for the chat service.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chat2geo/chat2geo/internal/auth"
	"github.com/chat2geo/chat2geo/internal/domain"
	"github.com/chat2geo/chat2geo/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	auth    auth.Resolver
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, auth auth.Resolver) *Handler {
	return &Handler{
		service: service,
		auth:    auth,
	}
}

// RegisterRoutes registers routes with the echo server. Everything under
// /v1 requires a bearer token.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/v1", h.RequireUser)

	g.POST("/chat", h.HandleChat)

	g.POST("/chats", h.CreateChat)
	g.GET("/chats", h.ListChats)
	g.GET("/chats/:chat_id/messages", h.GetChatMessages)
	g.POST("/chats/:chat_id/messages", h.AppendChatMessage)

	g.GET("/usage", h.GetUsage)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// httpError maps a pipeline error to its HTTP status and error envelope.
func httpError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrMissingChatID),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidRole):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrChatNotFound):
		status = http.StatusNotFound
	case domain.IsProviderError(err):
		status = http.StatusBadGateway
	}
	return c.JSON(status, domain.ChatResponse{Success: false, Error: err.Error()})
}
