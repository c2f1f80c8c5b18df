package domain

import "errors"

// ErrConversationNotFound is returned when a conversation ID cannot be found in the store.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrConversationEnded is returned when a turn is applied to a conversation that reached farewell.
var ErrConversationEnded = errors.New("conversation ended")

// ErrUnknownState is returned when a state name is not part of the machine.
var ErrUnknownState = errors.New("unknown state")
