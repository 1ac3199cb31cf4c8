package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// systemPrompt is the fixed instruction sent ahead of every assembled
// context.
const systemPrompt = `You are a helpful geospatial AI assistant for Chat2Geo. You specialize in:
- Geographic information systems (GIS)
- Remote sensing and satellite imagery
- Spatial analysis and mapping
- Geospatial data processing
- OpenStreetMap and open source mapping tools

You can help users analyze geographic data, explore datasets, and work with maps. Be concise but informative, and suggest specific actions when appropriate.`

// HandleChat runs one orchestration round: authorize the chat, re-derive
// the conversation context from the store, generate a reply, then persist
// the reply and bump usage accounting best-effort.
//
// The client-supplied history in req.Messages is deliberately not trusted;
// context always comes from committed storage.
func (s *Service) HandleChat(ctx context.Context, user *domain.User, req *domain.ChatRequest) (string, error) {
	if req.ChatID == "" {
		return "", domain.ErrMissingChatID
	}
	log.Printf("chat request: chat_id=%s client_messages=%d", req.ChatID, len(req.Messages))

	if _, err := s.authorizeChat(ctx, user, req.ChatID); err != nil {
		return "", err
	}

	contextMessages, err := s.AssembleContext(ctx, req.ChatID)
	if err != nil {
		return "", err
	}

	reply, err := s.provider.Complete(ctx, systemPrompt, contextMessages)
	if err != nil {
		return "", err
	}

	// Best-effort from here on: the user gets the reply even if the
	// bookkeeping below fails.
	assistantMsg := &domain.Message{
		ID:        uuid.New().String(),
		ChatID:    req.ChatID,
		Role:      domain.RoleAssistant,
		Content:   domain.Text(reply),
		CreatedAt: time.Now(),
	}
	if err := s.store.AppendMessage(ctx, assistantMsg); err != nil {
		log.Printf("WARN: failed to save assistant message: %v", err)
	}

	if err := s.store.IncrementRequestCount(ctx, user.ID); err != nil {
		log.Printf("WARN: failed to increment usage count: %v", err)
	}

	return reply, nil
}
