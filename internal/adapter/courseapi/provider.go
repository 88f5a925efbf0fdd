package courseapi

import (
	"context"
	"errors"

	"github.com/coursedeck/backend/internal/adapter"
	"github.com/coursedeck/backend/internal/auth"
)

// Provider resolves the caller's stored bearer token into a Client. A
// session without a stored token still gets a client; the upstream
// rejects the individual endpoints that need authentication.
type Provider struct {
	baseURL string
	tokens  *auth.TokenStore
}

func NewProvider(baseURL string, tokens *auth.TokenStore) *Provider {
	return &Provider{baseURL: baseURL, tokens: tokens}
}

func (p *Provider) ClientFor(ctx context.Context, sessionID string) (adapter.CourseAPI, error) {
	token, err := p.tokens.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) {
			return New(p.baseURL, ""), nil
		}
		return nil, err
	}
	return New(p.baseURL, token), nil
}
