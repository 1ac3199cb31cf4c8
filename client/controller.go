package client

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// ErrSendInFlight is returned when Send is called while a previous send for
// the same controller has not finished. Re-entrant sends are rejected, not
// queued.
var ErrSendInFlight = errors.New("a send is already in flight")

// View is the UI surface the controller drives. The controller never
// renders an assistant reply it has not read back from the server; the
// store is the single source of truth.
type View interface {
	// ClearInput clears the input box optimistically before the send runs.
	ClearInput()
	// SetSending toggles the pending indicator and submit gating.
	SetSending(sending bool)
	// RenderMessages replaces the rendered history.
	RenderMessages(messages []domain.Message)
	// NotifyError surfaces a dismissible error to the user.
	NotifyError(message string)
}

// Controller sequences one chat view's send path.
type Controller struct {
	api    *API
	chatID string
	view   View
	busy   atomic.Bool
}

// NewController creates a controller for one chat view.
func NewController(api *API, chatID string, view View) *Controller {
	return &Controller{
		api:    api,
		chatID: chatID,
		view:   view,
	}
}

// Sending reports whether a send is in flight.
func (c *Controller) Sending() bool {
	return c.busy.Load()
}

// Refresh re-reads the history and renders it.
func (c *Controller) Refresh(ctx context.Context) error {
	messages, err := c.api.ListMessages(ctx, c.chatID)
	if err != nil {
		return err
	}
	c.view.RenderMessages(messages)
	return nil
}

// Send runs one send round: persist the user message, re-read and render,
// invoke the orchestrator, then re-read and render again to pick up the
// persisted reply. Each step is a hard dependency on the previous one; any
// failure surfaces to the user and aborts the rest. The user message
// written in the first step is never rolled back.
func (c *Controller) Send(ctx context.Context, rawText string) error {
	text := strings.TrimSpace(rawText)
	if text == "" || c.chatID == "" {
		return nil
	}
	if !c.busy.CompareAndSwap(false, true) {
		return ErrSendInFlight
	}
	defer c.busy.Store(false)

	c.view.ClearInput()
	c.view.SetSending(true)
	defer c.view.SetSending(false)

	if _, err := c.api.AppendMessage(ctx, c.chatID, domain.Text(text)); err != nil {
		return c.fail(err)
	}

	// Show the user their own message before the reply arrives.
	if err := c.Refresh(ctx); err != nil {
		return c.fail(err)
	}

	// Re-read the committed history for the request context. The server
	// re-derives its own context; this keeps the wire shape of the
	// original client.
	history, err := c.api.ListMessages(ctx, c.chatID)
	if err != nil {
		return c.fail(err)
	}
	contextMessages := make([]domain.ContextMessage, 0, len(history))
	for _, msg := range history {
		contextMessages = append(contextMessages, domain.ContextMessage{
			Role:    string(msg.Role),
			Content: msg.Content.Canonical(),
		})
	}

	if _, err := c.api.Chat(ctx, c.chatID, contextMessages); err != nil {
		return c.fail(err)
	}

	if err := c.Refresh(ctx); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Controller) fail(err error) error {
	c.view.NotifyError("Failed to send message: " + err.Error())
	return err
}
