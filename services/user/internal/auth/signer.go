package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Typed verification failures. Callers map these onto the 401 taxonomy.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims is the verified content of a credential.
type Claims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

// Signer issues and verifies HS256 credentials. The token record's id travels
// as the jti claim so a presented credential can be correlated back to its
// revocable row. Verification checks audience and issuer, not just the
// signature, so a credential minted for another issuer never validates here.
type Signer struct {
	secret   []byte
	audience string
	issuer   string
	expiry   time.Duration
}

// NewSigner creates a signer with the given shared secret and claim values.
func NewSigner(secret, audience, issuer string, expiry time.Duration) *Signer {
	return &Signer{
		secret:   []byte(secret),
		audience: audience,
		issuer:   issuer,
		expiry:   expiry,
	}
}

// Expiry returns the configured credential lifetime.
func (s *Signer) Expiry() time.Duration {
	return s.expiry
}

// Sign creates a credential for the given user and token record.
func (s *Signer) Sign(userID, tokenID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        tokenID,
		Audience:  jwt.ClaimStrings{s.audience},
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a credential, returning its claims. Expired
// credentials fail with ErrTokenExpired; every other parse or signature
// failure is ErrTokenMalformed.
func (s *Signer) Verify(credential string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(credential, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithAudience(s.audience),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &Claims{
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: expiresAt,
	}, nil
}
