package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAppSalt = []byte("test-application-salt-16bytes-min")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("AIzaSyTestKey1234567890abcdefghijklmn")

	payload, err := EncryptCredentials(plaintext, testAppSalt, nil)
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, uint8(1), payload.Version)
	assert.Len(t, payload.Salt, 32)
	assert.Len(t, payload.Nonce, 12)
	assert.Len(t, payload.AuthTag, 16)
	assert.NotZero(t, payload.Timestamp)
	assert.NotEqual(t, plaintext, payload.Ciphertext)

	credentials, err := DecryptCredentials(payload, testAppSalt, nil)
	require.NoError(t, err)
	defer credentials.Clear()

	assert.Equal(t, plaintext, credentials.Data())
}

func TestEncryptRejectsEmptyPlaintext(t *testing.T) {
	_, err := EncryptCredentials(nil, testAppSalt, nil)
	assert.Error(t, err)
}

func TestEncryptRejectsShortSalt(t *testing.T) {
	_, err := EncryptCredentials([]byte("secret"), []byte("short"), nil)
	assert.Error(t, err)
}

func TestDecryptWrongAppSalt(t *testing.T) {
	payload, err := EncryptCredentials([]byte("secret-key-material-1"), testAppSalt, nil)
	require.NoError(t, err)

	_, err = DecryptCredentials(payload, []byte("different-application-salt-xx"), nil)
	assert.Error(t, err, "payload must be bound to the application salt")
}

func TestDecryptDetectsTampering(t *testing.T) {
	payload, err := EncryptCredentials([]byte("secret-key-material-2"), testAppSalt, nil)
	require.NoError(t, err)

	payload.Ciphertext[0] ^= 0xFF

	_, err = DecryptCredentials(payload, testAppSalt, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integrity")
}

func TestDecryptRejectsUnknownVersion(t *testing.T) {
	payload, err := EncryptCredentials([]byte("secret-key-material-3"), testAppSalt, nil)
	require.NoError(t, err)

	payload.Version = 9

	_, err = DecryptCredentials(payload, testAppSalt, nil)
	assert.Error(t, err)
}

func TestSecureCredentialsClear(t *testing.T) {
	payload, err := EncryptCredentials([]byte("wipe-me-please-000000"), testAppSalt, nil)
	require.NoError(t, err)

	credentials, err := DecryptCredentials(payload, testAppSalt, nil)
	require.NoError(t, err)
	require.NotNil(t, credentials.Data())

	credentials.Clear()
	assert.Nil(t, credentials.Data())

	// Clearing twice must not panic.
	credentials.Clear()
}

func TestValidateEncryptionConfig(t *testing.T) {
	assert.NoError(t, ValidateEncryptionConfig(DefaultEncryptionConfig()))

	weak := DefaultEncryptionConfig()
	weak.SCryptN = 1024
	assert.Error(t, ValidateEncryptionConfig(weak))

	badKey := DefaultEncryptionConfig()
	badKey.SCryptKeyLen = 16
	assert.Error(t, ValidateEncryptionConfig(badKey))

	assert.Error(t, ValidateEncryptionConfig(nil))
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare([]byte("abc"), []byte("abc")))
	assert.False(t, SecureCompare([]byte("abc"), []byte("abd")))
	assert.False(t, SecureCompare([]byte("abc"), []byte("abcd")))
}
