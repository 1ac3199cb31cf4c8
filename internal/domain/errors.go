package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the orchestration pipeline. Forbidden and not-found
// collapse into ErrChatNotFound so a caller cannot probe for chats it does
// not own.
var (
	ErrMissingChatID   = errors.New("chat id is required")
	ErrEmptyContent    = errors.New("message content is empty")
	ErrUnauthenticated = errors.New("invalid authentication")
	ErrChatNotFound    = errors.New("chat not found or access denied")
	ErrInvalidRole     = errors.New("invalid message role")
)

// ProviderError wraps a failure reported by the completion provider. The
// upstream detail is passed through to the caller unmodified.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("completion provider error [%d]: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("completion provider error: %s", e.Message)
}

// IsProviderError reports whether err is (or wraps) a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
