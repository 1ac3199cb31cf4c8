package service

import (
	"context"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// AssembleContext reconstructs the conversation context for a chat from
// the full ordered message history. Content is canonicalized to text;
// nothing is deduplicated or reordered. The result is ephemeral and
// re-derived on every round so the provider always sees the freshest
// committed history.
func (s *Service) AssembleContext(ctx context.Context, chatID string) ([]domain.ContextMessage, error) {
	messages, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	contextMessages := make([]domain.ContextMessage, 0, len(messages))
	for _, msg := range messages {
		contextMessages = append(contextMessages, domain.ContextMessage{
			Role:    string(msg.Role),
			Content: msg.Content.Canonical(),
		})
	}
	return contextMessages, nil
}
