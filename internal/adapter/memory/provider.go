package memory

import (
	"context"
	"errors"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/auth"
)

// Provider hands out clients backed by a shared in-memory store.
type Provider struct {
	store  *Store
	tokens *auth.TokenStore
}

func NewProvider(store *Store, tokens *auth.TokenStore) *Provider {
	return &Provider{store: store, tokens: tokens}
}

func (p *Provider) ClientFor(ctx context.Context, sessionID string) (adapter.CourseAPI, error) {
	token, err := p.tokens.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) {
			return NewClient(p.store, ""), nil
		}
		return nil, err
	}
	return NewClient(p.store, token), nil
}
