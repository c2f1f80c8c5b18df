package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/hostline/internal/logging"
	"github.com/aretw0/hostline/internal/runtime"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serialises turns per conversation and persists every snapshot.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store  ports.ConversationStore
	engine ports.Engine

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lockTTL = d
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager persisting to store and advancing
// conversations with engine.
func NewManager(store ports.ConversationStore, engine ports.Engine, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		engine:  engine,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Start creates a conversation and returns it with its opening prompt.
// A conversation that already exists under id is returned unchanged.
func (m *Manager) Start(ctx context.Context, id string, initial map[string]any) (*domain.Conversation, string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	var (
		conv   *domain.Conversation
		prompt string
	)
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		existing, err := m.store.Load(ctx, id)
		switch {
		case err == nil:
			conv = existing
		case errors.Is(err, domain.ErrConversationNotFound):
			if conv, err = m.engine.Start(ctx, id, initial); err != nil {
				return err
			}
			if err := m.store.Save(ctx, conv); err != nil {
				return fmt.Errorf("failed to save new conversation: %w", err)
			}
		default:
			return fmt.Errorf("failed to check conversation existence: %w", err)
		}

		prompt, err = m.engine.Render(conv.State, conv.Slots)
		return err
	})
	return conv, prompt, err
}

// Turn applies one caller turn to the stored conversation.
func (m *Manager) Turn(ctx context.Context, id string, in runtime.TurnInput) (*runtime.TurnResult, error) {
	var res *runtime.TurnResult
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		conv, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		if res, err = m.engine.Turn(ctx, conv, in); err != nil {
			return err
		}
		if err := m.store.Save(ctx, res.Conversation); err != nil {
			return fmt.Errorf("failed to save conversation: %w", err)
		}
		return nil
	})
	return res, err
}

// Snapshot returns the stored conversation and the prompt of its current state.
func (m *Manager) Snapshot(ctx context.Context, id string) (*domain.Conversation, string, error) {
	conv, err := m.Load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	prompt, err := m.engine.Render(conv.State, conv.Slots)
	if err != nil {
		return nil, "", err
	}
	return conv, prompt, nil
}

// Load retrieves a conversation.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		conv, err = m.store.Load(ctx, id)
		return err
	})
	return conv, err
}

// Delete removes a conversation.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying store.
func (m *Manager) Store() ports.ConversationStore {
	return m.store
}

// WithLock runs fn while holding the lock for conversation id.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock, it will expire",
					"conversation_id", id,
					"error", err,
				)
			}
		}()
	}

	return fn(ctx)
}
