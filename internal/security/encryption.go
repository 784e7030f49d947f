package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/scrypt"
)

// EncryptionConfig defines the key derivation and cipher parameters.
type EncryptionConfig struct {
	// SCRYPT parameters
	SCryptN      int // CPU/memory cost (32768 minimum)
	SCryptR      int // block size (8)
	SCryptP      int // parallelization (1)
	SCryptKeyLen int // key length in bytes (32 for AES-256)

	// AES-GCM parameters
	NonceSize int // 96-bit nonce
	TagSize   int // 128-bit authentication tag
}

// SecureCredentials holds decrypted secret material and supports wiping it.
type SecureCredentials struct {
	data    []byte
	cleared bool
}

// EncryptedPayload is the on-disk representation of an encrypted secret.
type EncryptedPayload struct {
	Version    uint8  `json:"version"`
	Salt       []byte `json:"salt"`       // SCRYPT salt (32 bytes)
	Nonce      []byte `json:"nonce"`      // AES-GCM nonce (12 bytes)
	Ciphertext []byte `json:"ciphertext"` // encrypted secret
	AuthTag    []byte `json:"auth_tag"`   // GCM authentication tag (16 bytes)
	Integrity  []byte `json:"integrity"`  // payload integrity hash
	Timestamp  int64  `json:"timestamp"`  // when the payload was written
}

// DefaultEncryptionConfig returns the standard parameters.
func DefaultEncryptionConfig() *EncryptionConfig {
	return &EncryptionConfig{
		SCryptN:      32768,
		SCryptR:      8,
		SCryptP:      1,
		SCryptKeyLen: 32,
		NonceSize:    12,
		TagSize:      16,
	}
}

// Data returns the decrypted secret, or nil after Clear.
func (sc *SecureCredentials) Data() []byte {
	if sc.cleared {
		return nil
	}
	return sc.data
}

// Clear wipes the secret from memory. Safe to call more than once.
func (sc *SecureCredentials) Clear() {
	if sc.cleared {
		return
	}

	if sc.data != nil {
		for i := range sc.data {
			sc.data[i] = 0x00
		}
		rand.Read(sc.data)
		for i := range sc.data {
			sc.data[i] = 0x00
		}
	}

	sc.cleared = true
	sc.data = nil
}

// EncryptCredentials encrypts secret material using AES-256-GCM with an
// SCRYPT-derived key. The application salt binds the ciphertext to this
// program so a payload copied into another tool will not decrypt.
func EncryptCredentials(plaintext []byte, appSalt []byte, config *EncryptionConfig) (*EncryptedPayload, error) {
	if len(plaintext) == 0 {
		return nil, errors.New("plaintext cannot be empty")
	}

	if len(appSalt) < 16 {
		return nil, errors.New("application salt must be at least 16 bytes")
	}

	if config == nil {
		config = DefaultEncryptionConfig()
	}

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	combinedSalt := append(append([]byte{}, appSalt...), salt...)

	key, err := scrypt.Key(combinedSalt, salt, config.SCryptN, config.SCryptR, config.SCryptP, config.SCryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	defer wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, config.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	// Seal appends the tag; store it separately for the payload format.
	authTag := sealed[len(sealed)-config.TagSize:]
	ciphertext := sealed[:len(sealed)-config.TagSize]

	payload := &EncryptedPayload{
		Version:    1,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		AuthTag:    authTag,
		Integrity:  integrityHash(ciphertext, salt, nonce),
		Timestamp:  time.Now().Unix(),
	}

	return payload, nil
}

// DecryptCredentials decrypts a payload produced by EncryptCredentials.
func DecryptCredentials(payload *EncryptedPayload, appSalt []byte, config *EncryptionConfig) (*SecureCredentials, error) {
	if payload == nil {
		return nil, errors.New("payload cannot be nil")
	}

	if len(appSalt) < 16 {
		return nil, errors.New("application salt must be at least 16 bytes")
	}

	if config == nil {
		config = DefaultEncryptionConfig()
	}

	if payload.Version != 1 {
		return nil, fmt.Errorf("unsupported payload version: %d", payload.Version)
	}

	// Verify integrity before paying for key derivation.
	expected := integrityHash(payload.Ciphertext, payload.Salt, payload.Nonce)
	if subtle.ConstantTimeCompare(payload.Integrity, expected) != 1 {
		return nil, errors.New("integrity verification failed, payload may be corrupted or tampered")
	}

	combinedSalt := append(append([]byte{}, appSalt...), payload.Salt...)

	key, err := scrypt.Key(combinedSalt, payload.Salt, config.SCryptN, config.SCryptR, config.SCryptP, config.SCryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	defer wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	sealed := append(append([]byte{}, payload.Ciphertext...), payload.AuthTag...)

	plaintext, err := gcm.Open(nil, payload.Nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return &SecureCredentials{data: plaintext}, nil
}

// integrityHash covers the ciphertext, salt and nonce with a domain
// separator so payloads from other tools never verify here.
func integrityHash(ciphertext, salt, nonce []byte) []byte {
	h := sha256.New()
	h.Write([]byte("APBD-INTEGRITY-V1"))
	h.Write(ciphertext)
	h.Write(salt)
	h.Write(nonce)
	return h.Sum(nil)
}

// wipe zeroes key material in place.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ValidateEncryptionConfig rejects parameters weaker than the defaults.
func ValidateEncryptionConfig(config *EncryptionConfig) error {
	if config == nil {
		return errors.New("encryption config cannot be nil")
	}

	if config.SCryptN < 32768 {
		return errors.New("SCryptN must be at least 32768")
	}

	if config.SCryptR < 8 {
		return errors.New("SCryptR must be at least 8")
	}

	if config.SCryptP < 1 {
		return errors.New("SCryptP must be at least 1")
	}

	if config.SCryptKeyLen != 32 {
		return errors.New("SCryptKeyLen must be 32 for AES-256")
	}

	if config.NonceSize != 12 {
		return errors.New("NonceSize must be 12 for AES-GCM")
	}

	if config.TagSize != 16 {
		return errors.New("TagSize must be 16 for AES-GCM")
	}

	return nil
}

// SecureCompare performs constant-time comparison of two byte slices.
func SecureCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
