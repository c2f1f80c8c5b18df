package ports

import (
	"context"

	"github.com/aretw0/hostline/internal/runtime"
	"github.com/aretw0/hostline/pkg/domain"
)

// Engine is the conversation state machine as seen by adapters. It holds no
// conversation state of its own: callers load a snapshot, apply a turn and
// persist the result.
type Engine interface {
	// Start creates a conversation at the initial state.
	Start(ctx context.Context, id string, initial map[string]any) (*domain.Conversation, error)

	// Turn applies one caller turn and returns the new snapshot and prompt.
	Turn(ctx context.Context, conv *domain.Conversation, in runtime.TurnInput) (*runtime.TurnResult, error)

	// Render produces the prompt for a state from collected slots.
	Render(state domain.State, slots domain.SlotContext) (string, error)
}
