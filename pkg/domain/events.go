package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateEnter      EventType = "state_enter"
	EventStateLeave      EventType = "state_leave"
	EventStay            EventType = "stay"
	EventConversationEnd EventType = "conversation_end"
)

// StateEvent describes a movement (or non-movement) of a conversation.
type StateEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id"`
	State          State     `json:"state"`
	From           State     `json:"from,omitempty"`
	Attempts       int       `json:"attempts"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStateEnter      func(context.Context, *StateEvent)
	OnStateLeave      func(context.Context, *StateEvent)
	OnStay            func(context.Context, *StateEvent)
	OnConversationEnd func(context.Context, *StateEvent)
}

// Chain returns hooks that call h first and then next.
func (h LifecycleHooks) Chain(next LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStateEnter:      chain(h.OnStateEnter, next.OnStateEnter),
		OnStateLeave:      chain(h.OnStateLeave, next.OnStateLeave),
		OnStay:            chain(h.OnStay, next.OnStay),
		OnConversationEnd: chain(h.OnConversationEnd, next.OnConversationEnd),
	}
}

func chain(a, b func(context.Context, *StateEvent)) func(context.Context, *StateEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *StateEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
