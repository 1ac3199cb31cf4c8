// Package service implements the chat orchestration pipeline.
package service

import (
	"context"

	"github.com/chat2geo/chat2geo/internal/adapter/completion"
	"github.com/chat2geo/chat2geo/internal/domain"
	"github.com/chat2geo/chat2geo/internal/store"
	"github.com/chat2geo/chat2geo/policy"
)

type Service struct {
	store        store.Store
	provider     completion.Provider
	policyEngine *policy.Engine
}

func New(store store.Store, provider completion.Provider, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        store,
		provider:     provider,
		policyEngine: policyEngine,
	}
}

// authorizeChat loads a chat and checks the access policy. A missing chat
// and a denied one are indistinguishable to the caller.
func (s *Service) authorizeChat(ctx context.Context, user *domain.User, chatID string) (*domain.Chat, error) {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, domain.ErrChatNotFound
	}

	decision, err := s.policyEngine.Evaluate(ctx, policy.AccessInput{
		UserID:  user.ID,
		Role:    string(user.Role),
		OwnerID: chat.UserID,
	})
	if err != nil {
		return nil, err
	}
	if decision != policy.DecisionAllow {
		return nil, domain.ErrChatNotFound
	}
	return chat, nil
}
