package ports

import (
	"context"

	"github.com/aretw0/hostline/pkg/domain"
)

// ConversationStore persists conversation snapshots between turns.
type ConversationStore interface {
	// Save persists conv under conv.ID.
	Save(ctx context.Context, conv *domain.Conversation) error

	// Load retrieves a conversation.
	// Returns domain.ErrConversationNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Conversation, error)

	// Delete removes a conversation. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of stored conversations.
	List(ctx context.Context) ([]string, error)
}
