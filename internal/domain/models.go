// Package domain defines the core domain models for the chat service.
package domain

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// UserRole is the account-level role from the user directory.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is an authenticated account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Chat is a user-owned container for an ordered message history.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a single immutable entry in a chat history. Within a chat,
// messages are totally ordered by (CreatedAt, Seq); Seq breaks timestamp
// ties with insertion order.
type Message struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chat_id"`
	Seq        int64     `json:"-"`
	Role       Role      `json:"role"`
	Content    Content   `json:"content"`
	ToolResult Content   `json:"tool_result,omitempty"`
	ReportID   string    `json:"report_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Usage tracks per-user request and document counters. The pipeline only
// ever increments these.
type Usage struct {
	UserID       string    `json:"user_id"`
	RequestCount int64     `json:"request_count"`
	DocCount     int64     `json:"doc_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContextMessage is one (role, content) pair of the conversation context
// submitted to the completion provider.
type ContextMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the orchestrator entry payload. Messages carries the
// client's view of the history for wire compatibility; the server re-derives
// context from the store and does not trust it.
type ChatRequest struct {
	ChatID   string           `json:"chat_id"`
	Messages []ContextMessage `json:"messages,omitempty"`
}

// ChatResponse is the orchestrator entry envelope.
type ChatResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AppendMessageRequest is the client-side user message write.
type AppendMessageRequest struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// CreateChatRequest creates a new chat session.
type CreateChatRequest struct {
	Title string `json:"title,omitempty"`
}
