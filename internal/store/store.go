// Package store provides durable storage for users, chats and messages.
package store

import (
	"context"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// Store is the persistence interface consumed by the service layer.
// Append operations are durable before they return; ListMessages preserves
// insertion order within equal timestamps.
type Store interface {
	// Users and tokens
	CreateUser(ctx context.Context, user *domain.User) error
	CreateToken(ctx context.Context, token, userID string) error
	GetUserByToken(ctx context.Context, token string) (*domain.User, error)

	// Chats
	CreateChat(ctx context.Context, chat *domain.Chat) error
	GetChat(ctx context.Context, chatID string) (*domain.Chat, error)
	ListChats(ctx context.Context, userID string) ([]domain.Chat, error)

	// Messages
	AppendMessage(ctx context.Context, message *domain.Message) error
	ListMessages(ctx context.Context, chatID string) ([]domain.Message, error)

	// Usage accounting
	IncrementRequestCount(ctx context.Context, userID string) error
	IncrementDocCount(ctx context.Context, userID string) error
	GetUsage(ctx context.Context, userID string) (*domain.Usage, error)

	Close() error
}
