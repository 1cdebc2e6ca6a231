package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httpclient"
)

// refreshMargin is how long before expiry a cached service token is treated
// as stale.
const refreshMargin = 30 * time.Second

// TokenSource logs a service account into the user-service and caches the
// resulting credential until shortly before it expires. Safe for concurrent
// use; at most one login is in flight at a time.
type TokenSource struct {
	http     *httpclient.Client
	baseURL  string
	appID    string
	email    string
	password string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenSource creates a token source for the given service credentials.
func NewTokenSource(cfg Config, hc *httpclient.Client) *TokenSource {
	return &TokenSource{
		http:     hc,
		baseURL:  cfg.BaseURL,
		appID:    cfg.ServiceAppID,
		email:    cfg.ServiceEmail,
		password: cfg.ServicePassword,
	}
}

// Token returns a live service credential, logging in when the cache is empty
// or stale.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expiresAt.Add(-refreshMargin)) {
		return ts.token, nil
	}

	token, expiresAt, err := ts.login(ctx)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiresAt = expiresAt
	return token, nil
}

// Invalidate discards the cached credential. Call after a downstream 401 so
// the next Token call performs a fresh login.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	ts.token = ""
	ts.expiresAt = time.Time{}
	ts.mu.Unlock()
}

func (ts *TokenSource) login(ctx context.Context) (string, time.Time, error) {
	payload, err := json.Marshal(map[string]string{
		"appId":    ts.appID,
		"email":    ts.email,
		"password": ts.password,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal login payload: %w", err)
	}

	u := ts.baseURL + "/api/tokens/sessions"
	resp, err := ts.http.Post(ctx, u, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", time.Time{}, apperrors.ServiceUnavailable("authentication service unreachable")
	}

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, httpclient.ParseResponseError(resp, "user-service")
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", time.Time{}, fmt.Errorf("decode login response: %w", err)
	}
	if body.Data.Token == "" {
		return "", time.Time{}, fmt.Errorf("login response missing token")
	}

	return body.Data.Token, tokenExpiry(body.Data.Token), nil
}

// tokenExpiry reads the exp claim without verification, purely to schedule the
// refresh. A credential with no readable expiry is cached for one minute.
func tokenExpiry(credential string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return time.Now().Add(time.Minute)
}
