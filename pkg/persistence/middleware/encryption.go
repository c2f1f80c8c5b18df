package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/ports"
)

// EnvelopeSlot is the slot that carries the ciphertext of an encrypted
// conversation.
const EnvelopeSlot = "__encrypted__"

// envelopeState marks snapshots that only hold ciphertext.
const envelopeState domain.State = "encrypted"

// ErrNotEncrypted is returned when a stored snapshot has no ciphertext.
var ErrNotEncrypted = errors.New("conversation is missing its encrypted envelope")

// EncryptionConfig holds the AES-256 keys.
type EncryptionConfig struct {
	// ActiveKey encrypts every save. Must be 32 bytes.
	ActiveKey []byte

	// FallbackKeys are tried in order when ActiveKey cannot decrypt, so keys
	// can be rotated without dropping live calls.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.ConversationStore
	config EncryptionConfig
}

// NewEncryptionMiddleware seals each conversation with AES-GCM. The backend
// only sees the id, status and timestamps.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, fmt.Errorf("active key must be 32 bytes, got %d", len(config.ActiveKey))
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes, got %d", i, len(k))
		}
	}
	return func(next ports.ConversationStore) ports.ConversationStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

// ParseKey decodes a 32 byte key given as hex or standard base64.
func ParseKey(s string) ([]byte, error) {
	if b, err := hex.DecodeString(s); err == nil && len(b) == 32 {
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.New("key is neither hex nor base64")
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(b))
	}
	return b, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, conv *domain.Conversation) error {
	plain, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	sealed, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("encrypt conversation: %w", err)
	}

	envelope := &domain.Conversation{
		ID:        conv.ID,
		State:     envelopeState,
		Slots:     domain.SlotContext{EnvelopeSlot: base64.StdEncoding.EncodeToString(sealed)},
		Status:    conv.Status,
		StartedAt: conv.StartedAt,
		UpdatedAt: conv.UpdatedAt,
	}
	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	encoded, ok := envelope.Slots[EnvelopeSlot].(string)
	if !ok {
		return nil, ErrNotEncrypted
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	keys := append([][]byte{m.config.ActiveKey}, m.config.FallbackKeys...)
	plain, err := decryptAny(sealed, keys)
	if err != nil {
		return nil, fmt.Errorf("decrypt conversation %s: %w", id, err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(plain, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return &conv, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plain, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decryptAny(sealed []byte, keys [][]byte) ([]byte, error) {
	for _, key := range keys {
		if plain, err := decrypt(sealed, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("no key could decrypt the data")
}

func decrypt(sealed, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
