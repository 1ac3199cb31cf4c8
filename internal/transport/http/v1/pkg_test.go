package v1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chat2geo/chat2geo/internal/adapter/completion"
	"github.com/chat2geo/chat2geo/internal/auth"
	"github.com/chat2geo/chat2geo/internal/domain"
	"github.com/chat2geo/chat2geo/internal/service"
	"github.com/chat2geo/chat2geo/internal/store"
	"github.com/chat2geo/chat2geo/policy"
)

// newTestHandler builds a handler over an in-memory store and the offline
// provider.
func newTestHandler(t *testing.T) (*Handler, *store.SQLiteStore) {
	t.Helper()
	db, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	svc := service.New(db, completion.NewOfflineProvider(), engine)
	return NewHandler(svc, auth.NewStoreResolver(db)), db
}

func seedUserWithToken(t *testing.T, db *store.SQLiteStore, userID, token string) *domain.User {
	t.Helper()
	ctx := context.Background()
	user := &domain.User{
		ID:        userID,
		Email:     userID + "@example.com",
		Name:      userID,
		Role:      domain.UserRoleUser,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.CreateUser(ctx, user))
	if token != "" {
		require.NoError(t, db.CreateToken(ctx, token, userID))
	}
	return user
}

func seedChat(t *testing.T, db *store.SQLiteStore, chatID, userID string) {
	t.Helper()
	chat := &domain.Chat{ID: chatID, UserID: userID, CreatedAt: time.Now()}
	require.NoError(t, db.CreateChat(context.Background(), chat))
}
