package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostline/pkg/domain"
)

// RunConversationStoreContract verifies that a ConversationStore
// implementation honours the interface contract.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405.000000")
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Save and Load", func(t *testing.T) {
		conv := domain.NewConversation(id, map[string]any{domain.SlotCity: "Delhi"}, now)
		conv.State = domain.StateOutletCollection
		conv.Attempts = 2
		conv.Slots[domain.SlotPartySize] = 4
		conv.History = append(conv.History, domain.StateCityCollection, domain.StateOutletCollection)
		conv.Transcript = append(conv.Transcript, domain.Utterance{State: domain.StateGreeting, Text: "Delhi please", At: now})

		require.NoError(t, store.Save(ctx, conv))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StateOutletCollection, loaded.State)
		assert.Equal(t, 2, loaded.Attempts)
		assert.Equal(t, "Delhi", loaded.Slots[domain.SlotCity])
		// JSON-backed stores turn numbers into float64.
		assert.Equal(t, "4", loaded.Slots.String(domain.SlotPartySize))
		assert.Equal(t, conv.History, loaded.History)
		require.Len(t, loaded.Transcript, 1)
		assert.Equal(t, "Delhi please", loaded.Transcript[0].Text)
		assert.True(t, loaded.StartedAt.Equal(now))
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		loaded.Slots[domain.SlotCity] = "Bangalore"

		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Delhi", again.Slots[domain.SlotCity])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+id)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := id+"-1", id+"-2"
		require.NoError(t, store.Save(ctx, domain.NewConversation(id1, nil, now)))
		require.NoError(t, store.Save(ctx, domain.NewConversation(id2, nil, now)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
		assert.NoError(t, store.Delete(ctx, id))
	})
}
