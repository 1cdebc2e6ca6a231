// Package crypto encrypts sender credentials at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Encryptor seals and opens credential blobs with AES-256-GCM. The key is
// derived from the configured secret, so the secret can be any length.
type Encryptor struct {
	aead cipher.AEAD
}

// New creates an Encryptor from the configured secret.
func New(secret string) (*Encryptor, error) {
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &Encryptor{aead: aead}, nil
}

// Encrypt seals the plaintext and returns "hex(nonce):hex(ciphertext)".
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (e *Encryptor) Decrypt(encrypted string) (string, error) {
	nonceHex, sealedHex, ok := strings.Cut(encrypted, ":")
	if !ok {
		return "", fmt.Errorf("invalid encrypted format")
	}

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != e.aead.NonceSize() {
		return "", fmt.Errorf("invalid nonce")
	}

	sealed, err := hex.DecodeString(sealedHex)
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext")
	}

	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt credentials: %w", err)
	}

	return string(plaintext), nil
}
