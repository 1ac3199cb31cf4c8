// Package auth resolves bearer tokens to authenticated users.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/chat2geo/chat2geo/internal/domain"
	"github.com/chat2geo/chat2geo/internal/store"
)

// Resolver resolves a bearer token to a user.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// StoreResolver resolves tokens against the api_tokens table.
type StoreResolver struct {
	store store.Store
}

// NewStoreResolver creates a store-backed resolver.
func NewStoreResolver(s store.Store) *StoreResolver {
	return &StoreResolver{store: s}
}

// Ensure StoreResolver implements Resolver.
var _ Resolver = (*StoreResolver)(nil)

// Resolve returns the user owning the token, or ErrUnauthenticated when the
// token is absent or unknown.
func (r *StoreResolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := r.store.GetUserByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
