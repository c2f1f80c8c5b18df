package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostline/pkg/adapters/memory"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"^phone_number$", "name"})
	require.NoError(t, err)
	store := mw(backend)

	conv := bookingCall("pii-1")
	conv.Slots["notes"] = map[string]any{"guest_name": "Ravi", "occasion": "birthday"}
	require.NoError(t, store.Save(ctx, conv))

	assert.Equal(t, "9876543210", conv.Slots[domain.SlotPhoneNumber], "caller copy must not change")
	assert.Equal(t, "call me on +91 98765 43210", conv.Transcript[0].Text)

	raw, err := backend.Load(ctx, "pii-1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, raw.Slots[domain.SlotPhoneNumber])
	assert.Equal(t, middleware.Mask, raw.Slots[domain.SlotCustomerName])
	assert.Equal(t, "Bangalore", raw.Slots[domain.SlotCity])
	notes := raw.Slots["notes"].(map[string]any)
	assert.Equal(t, middleware.Mask, notes["guest_name"])
	assert.Equal(t, "birthday", notes["occasion"])
	assert.Equal(t, "call me on ***", raw.Transcript[0].Text)
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_Order(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware([]string{"^customer_name$"})
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(backend, pii, enc)
	require.NoError(t, store.Save(ctx, bookingCall("chain-1")))

	loaded, err := store.Load(ctx, "chain-1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Slots[domain.SlotCustomerName])

	raw, err := backend.Load(ctx, "chain-1")
	require.NoError(t, err)
	assert.Contains(t, raw.Slots, middleware.EnvelopeSlot)
}

func TestPIIMiddleware_KeepsDates(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware(nil)
	require.NoError(t, err)

	conv := bookingCall("pii-2")
	conv.Transcript[0].Text = "on 2024-03-09 at 19:30, my number is 98765-43210"
	require.NoError(t, mw(backend).Save(ctx, conv))

	raw, err := backend.Load(ctx, "pii-2")
	require.NoError(t, err)
	assert.Equal(t, "on 2024-03-09 at 19:30, my number is ***", raw.Transcript[0].Text)
}
