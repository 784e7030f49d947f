package security

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"
)

// ApplicationSalt binds encrypted payloads to this program. Changing it
// invalidates every stored key.
const ApplicationSalt = "APBD-Insight-Budget-Analyzer-v1.0-2026"

// EnvAPIKey overrides the stored key when set, which keeps CI and
// containerized deployments away from the keystore file entirely.
const EnvAPIKey = "APBD_GEMINI_API_KEY"

// ErrAPIKeyNotFound indicates no key has been stored yet.
var ErrAPIKeyNotFound = errors.New("no API key stored")

// KeyStore persists the Gemini API key encrypted at rest. The key is
// entered once through the CLI's -save-key flag and decrypted on demand
// for narrative generation.
type KeyStore struct {
	path    string
	appSalt []byte
	logger  *slog.Logger

	mu          sync.Mutex
	accessCount int64
	lastAccess  time.Time
}

// NewKeyStore creates a key store backed by the given file path.
func NewKeyStore(path string, logger *slog.Logger) *KeyStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeyStore{
		path:    path,
		appSalt: []byte(ApplicationSalt),
		logger:  logger.With(slog.String("component", "keystore")),
	}
}

// Save validates, encrypts and writes the API key. The file is created
// with owner-only permissions.
func (ks *KeyStore) Save(ctx context.Context, apiKey string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	apiKey = strings.TrimSpace(apiKey)
	if err := ValidateAPIKeyFormat(apiKey); err != nil {
		ks.auditEvent(ctx, "key_save_rejected", false, err.Error())
		return err
	}

	payload, err := EncryptCredentials([]byte(apiKey), ks.appSalt, nil)
	if err != nil {
		ks.auditEvent(ctx, "key_encrypt_failed", false, err.Error())
		return fmt.Errorf("failed to encrypt API key: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if dir := filepath.Dir(ks.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			ks.auditEvent(ctx, "key_save_failed", false, err.Error())
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}

	if err := os.WriteFile(ks.path, data, 0o600); err != nil {
		ks.auditEvent(ctx, "key_save_failed", false, err.Error())
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	ks.auditEvent(ctx, "key_saved", true, "")
	return nil
}

// Load reads and decrypts the stored key. Callers must Clear the result.
func (ks *KeyStore) Load(ctx context.Context) (*SecureCredentials, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	data, err := os.ReadFile(ks.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAPIKeyNotFound
		}
		ks.auditEvent(ctx, "key_load_failed", false, err.Error())
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var payload EncryptedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		ks.auditEvent(ctx, "key_load_failed", false, err.Error())
		return nil, fmt.Errorf("credentials file is not a valid payload: %w", err)
	}

	credentials, err := DecryptCredentials(&payload, ks.appSalt, nil)
	if err != nil {
		ks.auditEvent(ctx, "key_decrypt_failed", false, err.Error())
		return nil, fmt.Errorf("failed to decrypt API key: %w", err)
	}

	ks.accessCount++
	ks.lastAccess = time.Now()
	ks.auditEvent(ctx, "key_accessed", true, "")

	return credentials, nil
}

// APIKey returns the stored key as a string and wipes the intermediate
// buffer. The environment variable is not consulted; use ResolveAPIKey
// for the full lookup order.
func (ks *KeyStore) APIKey(ctx context.Context) (string, error) {
	credentials, err := ks.Load(ctx)
	if err != nil {
		return "", err
	}
	defer credentials.Clear()

	return string(credentials.Data()), nil
}

// ResolveAPIKey returns the key from the environment when set, otherwise
// from the store.
func (ks *KeyStore) ResolveAPIKey(ctx context.Context) (string, error) {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		ks.auditEvent(ctx, "key_resolved_from_env", true, "")
		return key, nil
	}
	return ks.APIKey(ctx)
}

// Exists reports whether a credentials file is present.
func (ks *KeyStore) Exists() bool {
	_, err := os.Stat(ks.path)
	return err == nil
}

// Delete removes the stored key.
func (ks *KeyStore) Delete(ctx context.Context) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if err := os.Remove(ks.path); err != nil {
		if os.IsNotExist(err) {
			return ErrAPIKeyNotFound
		}
		ks.auditEvent(ctx, "key_delete_failed", false, err.Error())
		return fmt.Errorf("failed to delete credentials file: %w", err)
	}

	ks.auditEvent(ctx, "key_deleted", true, "")
	return nil
}

// Stats returns keystore metrics for the health endpoint.
func (ks *KeyStore) Stats() map[string]interface{} {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	return map[string]interface{}{
		"key_present":  ks.Exists() || os.Getenv(EnvAPIKey) != "",
		"access_count": ks.accessCount,
		"last_access":  ks.lastAccess,
	}
}

// ValidateAPIKeyFormat checks that a key is plausible before it is
// encrypted: Google API keys are printable ASCII around 39 characters,
// so anything outside 20..128 or containing whitespace is a paste error.
func ValidateAPIKeyFormat(apiKey string) error {
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	if len(apiKey) < 20 || len(apiKey) > 128 {
		return fmt.Errorf("API key length %d is outside the expected range", len(apiKey))
	}

	for _, r := range apiKey {
		if r > unicode.MaxASCII || unicode.IsControl(r) || unicode.IsSpace(r) {
			return errors.New("API key contains whitespace or non-printable characters")
		}
	}

	return nil
}

// auditEvent logs key lifecycle events for security auditing.
func (ks *KeyStore) auditEvent(ctx context.Context, eventType string, success bool, errorMessage string) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}

	ks.logger.Log(ctx, level, "credential event",
		slog.String("event_type", eventType),
		slog.Bool("success", success),
		slog.String("error_message", errorMessage),
		slog.Int("process_id", os.Getpid()),
		slog.Int64("access_count", ks.accessCount),
	)
}
