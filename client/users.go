package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/convexim/botgo/models"
)

// User search route templates.
const (
	UserByHUIDPath  = "/api/v3/botx/users/by_huid"
	UserByEmailPath = "/api/v3/botx/users/by_email"
	UserByLoginPath = "/api/v3/botx/users/by_login"
)

// UserFromSearch is the profile returned by the user search endpoints.
type UserFromSearch struct {
	HUID       uuid.UUID  `json:"user_huid"`
	ADLogin    string     `json:"ad_login"`
	ADDomain   string     `json:"ad_domain"`
	Name       string     `json:"name"`
	Company    string     `json:"company"`
	Position   string     `json:"company_position"`
	Department string     `json:"department"`
	Emails     []string   `json:"emails"`
	OtherID    *uuid.UUID `json:"other_id"`
}

func userErrorHandlers() map[int][]ErrorHandler {
	return map[int][]ErrorHandler{
		http.StatusNotFound: {func(env *ErrorEnvelope, rc RequestContext) error {
			return &UserNotFoundError{APIError{rc}}
		}},
	}
}

func (c *Client) searchUser(ctx context.Context, bind models.Binding, path string, query url.Values) (*UserFromSearch, error) {
	m := Method{
		Verb:          http.MethodGet,
		Path:          path,
		Query:         query,
		ErrorHandlers: userErrorHandlers(),
	}
	var user UserFromSearch
	if err := c.Perform(ctx, bind, m, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUserByHUID finds a user profile by messenger id.
func (c *Client) SearchUserByHUID(ctx context.Context, bind models.Binding, huid uuid.UUID) (*UserFromSearch, error) {
	return c.searchUser(ctx, bind, UserByHUIDPath, url.Values{"user_huid": {huid.String()}})
}

// SearchUserByEmail finds a user profile by email address.
func (c *Client) SearchUserByEmail(ctx context.Context, bind models.Binding, email string) (*UserFromSearch, error) {
	return c.searchUser(ctx, bind, UserByEmailPath, url.Values{"email": {email}})
}

// SearchUserByLogin finds a user profile by AD login and domain.
func (c *Client) SearchUserByLogin(ctx context.Context, bind models.Binding, adLogin, adDomain string) (*UserFromSearch, error) {
	return c.searchUser(ctx, bind, UserByLoginPath, url.Values{
		"ad_login":  {adLogin},
		"ad_domain": {adDomain},
	})
}
