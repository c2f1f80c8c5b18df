package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/hostline/pkg/domain"
)

// Store implements ports.ConversationStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Conversation
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Conversation),
	}
}

// Save stores a copy of conv so later mutations by the caller are not seen.
func (s *Store) Save(_ context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[conv.ID] = conv.Clone()
	return nil
}

// Load returns a copy of the stored conversation.
func (s *Store) Load(_ context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.data[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return conv.Clone(), nil
}

// Delete removes the conversation.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored conversation ids in sorted order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
