package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Memory is expressed in KiB as argon2 expects.
const (
	hashTimeCost   = 6
	hashMemoryKiB  = 1 << 17 // 128 MiB
	hashKeyLength  = 32
	hashSaltLength = 16
)

// PasswordHasher hashes and verifies passwords with argon2id. The salt is
// embedded in the encoded hash string, so no separate salt column is needed.
type PasswordHasher struct {
	timeCost  uint32
	memoryKiB uint32
	threads   uint8
	keyLen    uint32
}

// NewPasswordHasher creates a hasher with the standard cost parameters.
func NewPasswordHasher() *PasswordHasher {
	threads := runtime.NumCPU()
	if threads > 4 {
		threads = 4
	}
	return &PasswordHasher{
		timeCost:  hashTimeCost,
		memoryKiB: hashMemoryKiB,
		threads:   uint8(threads),
		keyLen:    hashKeyLength,
	}
}

// Hash derives an argon2id hash of the plaintext and returns it in the
// standard encoded form "$argon2id$v=19$m=...,t=...,p=...$salt$key".
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, hashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.timeCost, h.memoryKiB, h.threads, h.keyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memoryKiB,
		h.timeCost,
		h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether the plaintext matches the encoded hash. Malformed
// hashes never error; they simply fail verification. The comparison is
// constant time.
func (h *PasswordHasher) Verify(plaintext, encoded string) bool {
	memoryKiB, timeCost, threads, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	derived := argon2.IDKey([]byte(plaintext), salt, timeCost, memoryKiB, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(derived, key) == 1
}

// decodeHash parses the encoded argon2id hash form back into its parameters.
func decodeHash(encoded string) (memoryKiB, timeCost uint32, threads uint8, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed version: %w", err)
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memoryKiB, &timeCost, &p); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed parameters: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("decode key: %w", err)
	}

	return memoryKiB, timeCost, p, salt, key, nil
}
