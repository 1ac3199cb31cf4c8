package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// CreateChat creates a new chat owned by the user.
func (s *Service) CreateChat(ctx context.Context, user *domain.User, title string) (*domain.Chat, error) {
	chat := &domain.Chat{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Title:     strings.TrimSpace(title),
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return chat, nil
}

// ListChats lists the user's chats.
func (s *Service) ListChats(ctx context.Context, user *domain.User) ([]domain.Chat, error) {
	chats, err := s.store.ListChats(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// GetMessages returns the full ordered history of a chat the user may access.
func (s *Service) GetMessages(ctx context.Context, user *domain.User, chatID string) ([]domain.Message, error) {
	if chatID == "" {
		return nil, domain.ErrMissingChatID
	}
	if _, err := s.authorizeChat(ctx, user, chatID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// AppendMessage appends a user-authored message to a chat. Assistant turns
// are written by HandleChat only.
func (s *Service) AppendMessage(ctx context.Context, user *domain.User, chatID string, req *domain.AppendMessageRequest) (*domain.Message, error) {
	if chatID == "" {
		return nil, domain.ErrMissingChatID
	}
	if req.Role != "" && req.Role != domain.RoleUser {
		return nil, domain.ErrInvalidRole
	}
	if strings.TrimSpace(req.Content.Canonical()) == "" {
		return nil, domain.ErrEmptyContent
	}
	if _, err := s.authorizeChat(ctx, user, chatID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		Role:      domain.RoleUser,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}

// GetUsage returns the user's usage counters.
func (s *Service) GetUsage(ctx context.Context, user *domain.User) (*domain.Usage, error) {
	usage, err := s.store.GetUsage(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	return usage, nil
}
