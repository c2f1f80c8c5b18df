package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/hostline/pkg/domain"
)

// DefaultPrefix namespaces conversation keys.
const DefaultPrefix = "hostline:conversation:"

// Store implements ports.ConversationStore on Redis.
//
// Each conversation is a JSON string at prefix+id. A sorted set at
// prefix+"index" maps ids to their expiry time so List can skip expired
// conversations without scanning the keyspace.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires conversations after d of inactivity. Zero keeps them forever.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		s.ttl = d
	}
}

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock replaces time.Now for index scoring.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New connects to the Redis server at addr.
func New(addr, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client { return s.client }

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(id string) string { return s.prefix + id }
func (s *Store) index() string        { return s.prefix + "index" }

// Save writes conv and refreshes its expiry.
func (s *Store) Save(ctx context.Context, conv *domain.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation %s: %w", conv.ID, err)
	}

	score := math.MaxFloat64
	if s.ttl > 0 {
		score = float64(s.now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(conv.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.index(), backend.Z{Score: score, Member: conv.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save conversation %s: %w", conv.ID, err)
	}
	return nil
}

// Load reads a conversation.
func (s *Store) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", id, err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to decode conversation %s: %w", id, err)
	}
	if conv.Slots == nil {
		conv.Slots = domain.SlotContext{}
	}
	return &conv, nil
}

// Delete removes a conversation and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.index(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}
	return nil
}

// List returns live conversation ids, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	cutoff := "(" + strconv.FormatInt(s.now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.index(), "-inf", cutoff).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune conversation index: %w", err)
	}
	ids, err := s.client.ZRange(ctx, s.index(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return ids, nil
}
