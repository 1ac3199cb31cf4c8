package completion

import (
	"log"
	"time"
)

// NewProvider selects the provider from explicit configuration: a live
// client when an API key is present, the deterministic offline provider
// otherwise.
func NewProvider(baseURL, apiKey, model string, timeout time.Duration) Provider {
	if apiKey == "" {
		log.Println("no completion API key configured, using offline provider")
		return NewOfflineProvider()
	}
	return NewClient(baseURL, apiKey, model, timeout)
}
