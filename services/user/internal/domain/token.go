package domain

import "time"

// TokenType enumerates the kinds of credentials the service issues.
type TokenType string

const (
	TokenTypeSession           TokenType = "session"
	TokenTypeRefresh           TokenType = "refresh"
	TokenTypePasswordReset     TokenType = "password_reset"
	TokenTypeEmailVerification TokenType = "email_verification"
)

// IsValid reports whether the type is one of the known token types.
func (t TokenType) IsValid() bool {
	switch t {
	case TokenTypeSession, TokenTypeRefresh, TokenTypePasswordReset, TokenTypeEmailVerification:
		return true
	}
	return false
}

// Token is the central lifecycle entity. The record id is embedded in the
// signed credential as the jti claim, so a presented credential can always be
// correlated back to its revocable row. A token is live iff revokedAt is null
// and expiresAt is in the future.
type Token struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	AppID     string     `json:"appId"`
	DeviceID  *string    `json:"deviceId,omitempty"`
	Type      TokenType  `json:"type"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// Live reports whether the token is neither revoked nor expired at the given
// instant. Exact expiry counts as expired.
func (t *Token) Live(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

const (
	TokenDetailExpired = "expired"
	TokenDetailRevoked = "revoked"
)

// TokenWithStatus augments a token with its computed validity.
type TokenWithStatus struct {
	Token
	IsValid bool    `json:"isValid"`
	Detail  *string `json:"detail"`
}

// WithStatus computes the validity view of the token at the given instant.
// Revocation takes precedence over expiry in the detail reason.
func (t Token) WithStatus(now time.Time) TokenWithStatus {
	ts := TokenWithStatus{Token: t, IsValid: t.Live(now)}
	if ts.IsValid {
		return ts
	}

	detail := TokenDetailExpired
	if t.RevokedAt != nil {
		detail = TokenDetailRevoked
	}
	ts.Detail = &detail
	return ts
}

// TokenFilter narrows token list queries. UserID is forced to the requester
// for callers without the list-any permission.
type TokenFilter struct {
	UserID   string
	AppID    string
	DeviceID string
	Type     TokenType
}
