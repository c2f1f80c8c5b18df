package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostline/pkg/adapters/memory"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/persistence/middleware"
	"github.com/aretw0/hostline/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := rand.Read(k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.ConversationStore, active []byte, fallback ...[]byte) ports.ConversationStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	require.NoError(t, err)
	return mw(next)
}

func bookingCall(id string) *domain.Conversation {
	now := time.Date(2024, 2, 10, 19, 0, 0, 0, time.UTC)
	conv := domain.NewConversation(id, map[string]any{
		domain.SlotCity:         "Bangalore",
		domain.SlotCustomerName: "Meera",
		domain.SlotPhoneNumber:  "9876543210",
	}, now)
	conv.State = domain.StateNewReservation
	conv.Transcript = []domain.Utterance{{State: domain.StateNewReservation, Text: "call me on +91 98765 43210", At: now}}
	return conv
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunConversationStoreContract(t, encrypted(t, memory.NewStore(), generateKey(t)))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	store := encrypted(t, backend, generateKey(t))

	require.NoError(t, store.Save(ctx, bookingCall("call-1")))

	raw, err := backend.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.NotContains(t, raw.Slots, domain.SlotCustomerName)
	assert.Contains(t, raw.Slots, middleware.EnvelopeSlot)
	assert.Empty(t, raw.Transcript)
	assert.Equal(t, domain.StatusActive, raw.Status)

	loaded, err := store.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateNewReservation, loaded.State)
	assert.Equal(t, "Meera", loaded.Slots[domain.SlotCustomerName])
	require.Len(t, loaded.Transcript, 1)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	oldStore := encrypted(t, backend, oldKey)
	require.NoError(t, oldStore.Save(ctx, bookingCall("call-2")))

	rotated := encrypted(t, backend, newKey, oldKey)
	conv, err := rotated.Load(ctx, "call-2")
	require.NoError(t, err)
	assert.Equal(t, "Bangalore", conv.Slots[domain.SlotCity])

	require.NoError(t, rotated.Save(ctx, conv))
	_, err = oldStore.Load(ctx, "call-2")
	assert.ErrorContains(t, err, "decrypt conversation call-2")
}

func TestEncryptionMiddleware_PlainSnapshot(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	require.NoError(t, backend.Save(ctx, bookingCall("plain")))

	_, err := encrypted(t, backend, generateKey(t)).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestNewEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorContains(t, err, "fallback key 0")
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"hex", hex.EncodeToString(key), false},
		{"base64", base64.StdEncoding.EncodeToString(key), false},
		{"short", base64.StdEncoding.EncodeToString(key[:16]), true},
		{"garbage", "not a key!", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := middleware.ParseKey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, key, got)
		})
	}
}
