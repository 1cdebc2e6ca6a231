package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptor_RoundTrip(t *testing.T) {
	enc, err := New("test-encryption-secret")
	require.NoError(t, err)

	plaintext := `{"smtpHost":"smtp.test","smtpPort":587,"email":"a@b.c","password":"hunter2"}`

	encrypted, err := enc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, encrypted, "hunter2")
	assert.Contains(t, encrypted, ":")

	decrypted, err := enc.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptor_EncryptionsDiffer(t *testing.T) {
	enc, err := New("test-encryption-secret")
	require.NoError(t, err)

	first, err := enc.Encrypt("same plaintext")
	require.NoError(t, err)
	second, err := enc.Encrypt("same plaintext")
	require.NoError(t, err)

	// Fresh nonce per call.
	assert.NotEqual(t, first, second)
}

func TestEncryptor_Decrypt_Tampered(t *testing.T) {
	enc, err := New("test-encryption-secret")
	require.NoError(t, err)

	encrypted, err := enc.Encrypt("secret payload")
	require.NoError(t, err)

	// Flip the last ciphertext nibble.
	tampered := encrypted[:len(encrypted)-1]
	if strings.HasSuffix(encrypted, "0") {
		tampered += "1"
	} else {
		tampered += "0"
	}

	_, err = enc.Decrypt(tampered)
	assert.Error(t, err)
}

func TestEncryptor_Decrypt_WrongKey(t *testing.T) {
	enc, err := New("test-encryption-secret")
	require.NoError(t, err)
	other, err := New("a-different-secret")
	require.NoError(t, err)

	encrypted, err := enc.Encrypt("secret payload")
	require.NoError(t, err)

	_, err = other.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestEncryptor_Decrypt_BadFormat(t *testing.T) {
	enc, err := New("test-encryption-secret")
	require.NoError(t, err)

	for _, input := range []string{
		"",
		"no-separator",
		"nothex:deadbeef",
		"deadbeef:nothex",
		"dead:beef",
	} {
		_, err := enc.Decrypt(input)
		assert.Error(t, err, "input %q", input)
	}
}
