package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/convexim/botgo/models"
)

// GetTokenPath is the token-issuance route template.
const GetTokenPath = "/api/v2/botx/bots/{bot_id}/token"

// EnsureToken makes sure a token for the binding's host is cached,
// acquiring one if needed.
func (c *Client) EnsureToken(ctx context.Context, bind models.Binding) error {
	_, err := c.ensureToken(ctx, bind)
	return err
}

// ensureToken returns the cached token for the binding's host, acquiring
// one first if the cache is empty.
func (c *Client) ensureToken(ctx context.Context, bind models.Binding) (string, error) {
	if token, ok := c.creds.Token(bind.Host); ok {
		return token, nil
	}
	return c.acquireToken(ctx, bind)
}

// acquireToken requests a fresh token and stores it. Concurrent callers may
// each issue a request; the last stored token wins.
func (c *Client) acquireToken(ctx context.Context, bind models.Binding) (string, error) {
	token, err := c.GetToken(ctx, bind)
	if err != nil {
		return "", err
	}
	if err := c.creds.SetToken(bind.Host, token); err != nil {
		return "", err
	}
	return token, nil
}

// GetToken performs the signed token-issuance request for the binding.
func (c *Client) GetToken(ctx context.Context, bind models.Binding) (string, error) {
	signature, err := c.creds.Signature(bind.Host, bind.BotID)
	if err != nil {
		return "", err
	}

	m := Method{
		Verb:       http.MethodGet,
		Path:       GetTokenPath,
		PathParams: map[string]string{"bot_id": bind.BotID.String()},
		Query:      url.Values{"signature": {signature}},
		NoAuth:     true,
		ErrorHandlers: map[int][]ErrorHandler{
			http.StatusUnauthorized: {func(env *ErrorEnvelope, rc RequestContext) error {
				return &UnauthorizedError{APIError{rc}}
			}},
			http.StatusNotFound: {func(env *ErrorEnvelope, rc RequestContext) error {
				return &BotNotFoundError{APIError: APIError{rc}, BotID: bind.BotID}
			}},
		},
	}

	var token string
	if err := c.Perform(ctx, bind, m, &token); err != nil {
		return "", fmt.Errorf("acquiring token for %s: %w", bind.Host, err)
	}
	return token, nil
}
