// Package middleware wraps a ports.ConversationStore to change what reaches
// the backend: encryption at rest and redaction of caller details.
package middleware

import "github.com/aretw0/hostline/pkg/ports"

// Middleware wraps a ConversationStore to add behavior.
type Middleware func(ports.ConversationStore) ports.ConversationStore

// Chain applies middlewares so the first one listed sees calls first.
func Chain(store ports.ConversationStore, mws ...Middleware) ports.ConversationStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
