// Package client implements the chat client send path.
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// API is the HTTP client for the chat service.
type API struct {
	http *resty.Client
}

// NewAPI creates a new API client authenticated with the given bearer token.
func NewAPI(baseURL, token string) *API {
	c := resty.New()
	c.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	c.SetAuthToken(token)
	c.SetTimeout(2 * time.Minute)
	return &API{http: c}
}

// apiError extracts the server's error message from a non-success response.
func apiError(resp *resty.Response) error {
	if env, ok := resp.Error().(*domain.ChatResponse); ok && env.Error != "" {
		return fmt.Errorf("%s", env.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode())
}

// CreateChat creates a new chat session.
func (a *API) CreateChat(ctx context.Context, title string) (*domain.Chat, error) {
	var chat domain.Chat
	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(domain.CreateChatRequest{Title: title}).
		SetResult(&chat).
		SetError(&domain.ChatResponse{}).
		Post("/v1/chats")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &chat, nil
}

// ListChats lists the caller's chats.
func (a *API) ListChats(ctx context.Context) ([]domain.Chat, error) {
	var result struct {
		Chats []domain.Chat `json:"chats"`
	}
	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&domain.ChatResponse{}).
		Get("/v1/chats")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return result.Chats, nil
}

// ListMessages retrieves the full ordered history of a chat.
func (a *API) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	var result struct {
		Messages []domain.Message `json:"messages"`
	}
	resp, err := a.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&domain.ChatResponse{}).
		Get("/v1/chats/" + chatID + "/messages")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return result.Messages, nil
}

// AppendMessage writes a user message to a chat.
func (a *API) AppendMessage(ctx context.Context, chatID string, content domain.Content) (*domain.Message, error) {
	var msg domain.Message
	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(domain.AppendMessageRequest{Role: domain.RoleUser, Content: content}).
		SetResult(&msg).
		SetError(&domain.ChatResponse{}).
		Post("/v1/chats/" + chatID + "/messages")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &msg, nil
}

// Chat invokes the orchestrator and returns the assistant reply.
func (a *API) Chat(ctx context.Context, chatID string, messages []domain.ContextMessage) (string, error) {
	var result domain.ChatResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(domain.ChatRequest{ChatID: chatID, Messages: messages}).
		SetResult(&result).
		SetError(&domain.ChatResponse{}).
		Post("/v1/chat")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiError(resp)
	}
	if !result.Success {
		if result.Error != "" {
			return "", fmt.Errorf("%s", result.Error)
		}
		return "", fmt.Errorf("failed to get AI response")
	}
	return result.Message, nil
}
