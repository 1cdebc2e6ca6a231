// Package authclient authenticates and authorizes requests against the
// user-service from peer services that have no signing secret and no token
// database of their own.
package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/Azizo-B/microservices/pkg/errors"
	"github.com/Azizo-B/microservices/pkg/httpclient"
)

// Config holds the user-service connection settings for a peer service.
type Config struct {
	// BaseURL is the user-service root, e.g. "http://user-service:9000".
	BaseURL string
	// ServiceAppID is the application the service account belongs to. The
	// user-service scopes accounts per application, so login requires it.
	ServiceAppID string
	// ServiceEmail and ServicePassword are the peer service's own account
	// credentials, used by the TokenSource for service-to-service calls.
	ServiceEmail    string
	ServicePassword string
}

// Client talks to the user-service token introspection and permission
// endpoints.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

// New creates an auth client backed by the shared retrying HTTP client.
func New(cfg Config, hc *httpclient.Client) *Client {
	return &Client{
		http:    hc,
		baseURL: cfg.BaseURL,
	}
}

// Subject extracts the sub and jti claims from a credential WITHOUT verifying
// its signature. The result is only trustworthy after Introspect confirms the
// credential with the user-service.
func Subject(credential string) (userID, tokenID string, err error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return "", "", apperrors.Unauthorized("Invalid authentication token.")
	}

	userID, _ = claims["sub"].(string)
	tokenID, _ = claims["jti"].(string)
	if userID == "" || tokenID == "" {
		return "", "", apperrors.Unauthorized("Invalid authentication token.")
	}
	return userID, tokenID, nil
}

// Introspect confirms a credential with the user-service. A 204 means the
// credential is live (signed, known, unexpired, unrevoked). A 401 is returned
// to the caller with the user-service's message preserved verbatim.
func (c *Client) Introspect(ctx context.Context, credential string) error {
	u := fmt.Sprintf("%s/api/tokens/introspect?token=%s", c.baseURL, url.QueryEscape(credential))

	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return apperrors.ServiceUnavailable("authentication service unreachable")
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		_ = resp.Body.Close()
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		msg := downstreamMessage(resp)
		if msg == "" {
			msg = "Invalid authentication token."
		}
		return apperrors.Unauthorized(msg)
	default:
		return httpclient.ParseResponseError(resp, "user-service")
	}
}

// HasPermission asks the user-service whether the user holds the named
// permission. The permission query endpoint returns the matching permission
// names held by the user; the permission is granted iff the requested name is
// present in the response.
func (c *Client) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	u := fmt.Sprintf("%s/api/permissions?userId=%s&name=%s",
		c.baseURL, url.QueryEscape(userID), url.QueryEscape(permission))

	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return false, apperrors.ServiceUnavailable("authentication service unreachable")
	}

	if resp.StatusCode != http.StatusOK {
		return false, httpclient.ParseResponseError(resp, "user-service")
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Data struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode permission response: %w", err)
	}

	for _, item := range body.Data.Items {
		if item.Name == permission {
			return true, nil
		}
	}
	return false, nil
}

// downstreamMessage pulls the error message out of a standard error envelope,
// consuming and closing the body. Returns "" when the body is not in the
// expected shape.
func downstreamMessage(resp *http.Response) string {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ""
	}

	var downstream httpclient.DownstreamErrorResponse
	if json.Unmarshal(bodyBytes, &downstream) != nil || downstream.Error == nil {
		return ""
	}
	return downstream.Error.Message
}
