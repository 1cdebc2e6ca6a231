package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azizo-B/microservices/pkg/authclient"
	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httpclient"
)

// UserDetails is the subset of the user-service user record the event
// handlers need to address a notification.
type UserDetails struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// UserClient fetches user records from the user-service, authenticated with
// the service account credential.
type UserClient struct {
	http    *httpclient.Client
	baseURL string
	tokens  *authclient.TokenSource
}

// NewUserClient creates a user-service client for event processing.
func NewUserClient(baseURL string, hc *httpclient.Client, tokens *authclient.TokenSource) *UserClient {
	return &UserClient{
		http:    hc,
		baseURL: baseURL,
		tokens:  tokens,
	}
}

// FetchUser retrieves a user by ID. A rejected service credential is
// invalidated and the request retried once with a fresh login.
func (c *UserClient) FetchUser(ctx context.Context, userID string) (*UserDetails, error) {
	user, err := c.fetch(ctx, userID)
	if err != nil && errors.Is(err, apperrors.ErrUnauthorized) {
		c.tokens.Invalidate()
		return c.fetch(ctx, userID)
	}
	return user, err
}

func (c *UserClient) fetch(ctx context.Context, userID string) (*UserDetails, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/api/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.ServiceUnavailable("user service unreachable")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "user-service")
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Data UserDetails `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	if body.Data.Email == "" {
		return nil, fmt.Errorf("user response missing email")
	}

	return &body.Data, nil
}
