package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/ports"
)

// EnvelopeKey is the context key holding the encrypted payload.
const EnvelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new records.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt a record.
	FallbackKeys [][]byte

	// AllowPlaintext returns records written before encryption was enabled
	// unchanged instead of failing the read.
	AllowPlaintext bool
}

type encryptionMiddleware struct {
	next   ports.EventLog
	config EncryptionConfig
}

// payload is the encrypted part of a record. States, labels and timestamps
// stay in clear so the log can still be ordered and validated.
type payload struct {
	Context  map[string]any `json:"context,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewEncryptionMiddleware creates a middleware that encrypts record payloads using AES-GCM.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.EventLog) ports.EventLog {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Append(ctx context.Context, record domain.TransitionRecord) error {
	plainText, err := json.Marshal(payload{Context: record.Context, Metadata: record.Metadata})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt payload: %w", err)
	}

	envelope := record
	envelope.Context = map[string]any{
		EnvelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
	}
	envelope.Metadata = nil

	return m.next.Append(ctx, envelope)
}

func (m *encryptionMiddleware) Read(ctx context.Context, entityType, entityID, attribute string) ([]domain.TransitionRecord, error) {
	records, err := m.next.Read(ctx, entityType, entityID, attribute)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if err := m.open(&records[i]); err != nil {
			return nil, fmt.Errorf("record %s: %w", records[i].ID, err)
		}
	}
	return records, nil
}

func (m *encryptionMiddleware) open(r *domain.TransitionRecord) error {
	encoded, ok := r.Context[EnvelopeKey].(string)
	if !ok {
		if m.config.AllowPlaintext {
			return nil
		}
		return errors.New("record is missing encrypted payload envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return fmt.Errorf("failed to decrypt payload: %w", err)
	}

	var p payload
	if err := json.Unmarshal(plainText, &p); err != nil {
		return fmt.Errorf("failed to unmarshal decrypted payload: %w", err)
	}
	r.Context, r.Metadata = p.Context, p.Metadata
	return nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// DecodeKey parses a base64 encoded AES-256 key.
func DecodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("decode key: got %d bytes, want 32", len(key))
	}
	return key, nil
}
