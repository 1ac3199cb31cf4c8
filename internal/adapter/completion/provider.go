// Package completion provides the gateway to the LLM completion provider.
package completion

import (
	"context"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// Provider produces a single assistant reply for an assembled context.
type Provider interface {
	// Complete sends the system instruction plus the ordered context and
	// returns the reply text. Upstream failures surface as *domain.ProviderError.
	Complete(ctx context.Context, systemPrompt string, messages []domain.ContextMessage) (string, error)
}

// Ensure implementations satisfy Provider.
var (
	_ Provider = (*Client)(nil)
	_ Provider = (*OfflineProvider)(nil)
)
