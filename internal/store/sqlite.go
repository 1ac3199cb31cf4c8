package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chat2geo/chat2geo/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS api_tokens (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			chat_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(user_id, created_at)`,
		// seq breaks created_at ties with insertion order.
		`CREATE TABLE IF NOT EXISTS messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id TEXT NOT NULL UNIQUE,
			chat_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tool_result TEXT,
			report_id TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (chat_id) REFERENCES chats(chat_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, created_at, seq)`,
		`CREATE TABLE IF NOT EXISTS user_usage (
			user_id TEXT PRIMARY KEY,
			request_count INTEGER NOT NULL DEFAULT 0,
			doc_count INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(user_id)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser creates a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, email, name, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.Role, user.CreatedAt)
	return err
}

// CreateToken binds a bearer token to a user.
func (s *SQLiteStore) CreateToken(ctx context.Context, token, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_tokens (token, user_id) VALUES (?, ?)`,
		token, userID)
	return err
}

// GetUserByToken resolves a bearer token to its user. Returns nil if the
// token is unknown.
func (s *SQLiteStore) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT u.user_id, u.email, u.name, u.role, u.created_at
		 FROM api_tokens t JOIN users u ON u.user_id = t.user_id
		 WHERE t.token = ?`,
		token).Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateChat creates a new chat.
func (s *SQLiteStore) CreateChat(ctx context.Context, chat *domain.Chat) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (chat_id, user_id, title, created_at) VALUES (?, ?, ?, ?)`,
		chat.ID, chat.UserID, nullString(chat.Title), chat.CreatedAt)
	return err
}

// GetChat retrieves a chat by ID. Returns nil if the chat does not exist.
func (s *SQLiteStore) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	var chat domain.Chat
	var title sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT chat_id, user_id, title, created_at FROM chats WHERE chat_id = ?`,
		chatID).Scan(&chat.ID, &chat.UserID, &title, &chat.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if title.Valid {
		chat.Title = title.String
	}
	return &chat, nil
}

// ListChats lists a user's chats, newest first.
func (s *SQLiteStore) ListChats(ctx context.Context, userID string) ([]domain.Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, user_id, title, created_at FROM chats WHERE user_id = ? ORDER BY created_at DESC, chat_id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		var chat domain.Chat
		var title sql.NullString
		if err := rows.Scan(&chat.ID, &chat.UserID, &title, &chat.CreatedAt); err != nil {
			return nil, err
		}
		if title.Valid {
			chat.Title = title.String
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// AppendMessage appends a message to a chat. The write is durable before
// the call returns; the assigned seq is stored back into message.
func (s *SQLiteStore) AppendMessage(ctx context.Context, message *domain.Message) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, chat_id, role, content, tool_result, report_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		message.ID, message.ChatID, message.Role, string(message.Content),
		nullStringBytes(message.ToolResult), nullString(message.ReportID), message.CreatedAt)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	message.Seq = seq
	return nil
}

// ListMessages retrieves all messages for a chat in creation order, ties
// broken by insertion order.
func (s *SQLiteStore) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, message_id, chat_id, role, content, tool_result, report_id, created_at
		 FROM messages WHERE chat_id = ? ORDER BY created_at ASC, seq ASC`,
		chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var content string
		var toolResult, reportID sql.NullString
		if err := rows.Scan(&msg.Seq, &msg.ID, &msg.ChatID, &msg.Role, &content, &toolResult, &reportID, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Content = domain.Content(content)
		if toolResult.Valid {
			msg.ToolResult = domain.Content(toolResult.String)
		}
		if reportID.Valid {
			msg.ReportID = reportID.String
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// IncrementRequestCount bumps the per-user request counter.
func (s *SQLiteStore) IncrementRequestCount(ctx context.Context, userID string) error {
	return s.incrementUsage(ctx, userID, "request_count")
}

// IncrementDocCount bumps the per-user knowledge base document counter.
func (s *SQLiteStore) IncrementDocCount(ctx context.Context, userID string) error {
	return s.incrementUsage(ctx, userID, "doc_count")
}

func (s *SQLiteStore) incrementUsage(ctx context.Context, userID, column string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO user_usage (user_id, %[1]s, updated_at) VALUES (?, 1, ?)
		 ON CONFLICT(user_id) DO UPDATE SET %[1]s = %[1]s + 1, updated_at = excluded.updated_at`,
		column), userID, now)
	return err
}

// GetUsage retrieves a user's usage counters. A user with no recorded
// activity reads as zero counts.
func (s *SQLiteStore) GetUsage(ctx context.Context, userID string) (*domain.Usage, error) {
	var usage domain.Usage
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, request_count, doc_count, updated_at FROM user_usage WHERE user_id = ?`,
		userID).Scan(&usage.UserID, &usage.RequestCount, &usage.DocCount, &usage.UpdatedAt)
	if err == sql.ErrNoRows {
		return &domain.Usage{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
