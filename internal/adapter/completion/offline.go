package completion

import (
	"context"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// offlineReply is the fixed reply returned when no provider credential is
// configured. It is byte-stable across calls.
const offlineReply = "Hello! I'm your geospatial AI assistant. I can help you with:\n\n" +
	"• Analyzing geographic data\n" +
	"• Searching through your knowledge base\n" +
	"• Exploring datasets\n" +
	"• Map interactions and spatial analysis\n\n" +
	"Note: This is a development response. Please configure your GROQ_API_KEY to enable full AI capabilities."

// OfflineProvider is the deterministic fallback used when no credential is
// configured, so the orchestrator stays runnable and testable without a
// live provider.
type OfflineProvider struct{}

// NewOfflineProvider creates the offline provider.
func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

// Complete returns the fixed capability text regardless of input.
func (p *OfflineProvider) Complete(ctx context.Context, systemPrompt string, messages []domain.ContextMessage) (string, error) {
	return offlineReply, nil
}
