package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/hostline/pkg/catalog"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/flow"
	"github.com/aretw0/hostline/pkg/guard"
)

// Engine is the conversation state machine runner.
type Engine struct {
	table   *flow.Table
	catalog *catalog.Catalog
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	maxInput int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator replaces the random conversation id source.
func WithIDGenerator(gen func() string) EngineOption {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithMaxInputBytes bounds the size of one utterance.
func WithMaxInputBytes(n int) EngineOption {
	return func(e *Engine) {
		e.maxInput = n
	}
}

// NewEngine creates an engine over a transition table and a template catalog.
func NewEngine(table *flow.Table, cat *catalog.Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		table:   table,
		catalog: cat,
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TurnInput is what the caller contributed in one turn.
type TurnInput struct {
	// Transcript is the raw utterance, used by keyword guards.
	Transcript string `json:"transcript" mapstructure:"transcript"`
	// Slots are values already extracted upstream. Unset values are ignored.
	Slots map[string]any `json:"slots" mapstructure:"slots"`
}

// TurnResult is the outcome of one turn.
type TurnResult struct {
	Conversation *domain.Conversation     `json:"conversation"`
	From         domain.State             `json:"from"`
	Prompt       string                   `json:"prompt"`
	Transitioned bool                     `json:"transitioned"`
	Terminal     bool                     `json:"terminal"`
	Reason       string                   `json:"reason,omitempty"`
	Diff         *domain.ConversationDiff `json:"diff,omitempty"`
}

// Start creates a conversation at the initial state.
// An empty id is replaced by a generated one.
func (e *Engine) Start(ctx context.Context, id string, initial map[string]any) (*domain.Conversation, error) {
	if id == "" {
		id = e.newID()
	}
	conv := domain.NewConversation(id, initial, e.now())

	e.logger.Debug("conversation started", "conversation_id", conv.ID, "state", conv.State)
	e.emit(ctx, e.hooks.OnStateEnter, domain.EventStateEnter, conv, "")
	return conv, nil
}

// Turn applies one caller turn to conv and returns the updated snapshot.
// conv is not modified.
func (e *Engine) Turn(ctx context.Context, conv *domain.Conversation, in TurnInput) (*TurnResult, error) {
	if conv == nil {
		return nil, fmt.Errorf("turn: %w", domain.ErrConversationNotFound)
	}
	if conv.Ended() {
		return nil, fmt.Errorf("turn on %s: %w", conv.ID, domain.ErrConversationEnded)
	}
	if !conv.State.Valid() {
		return nil, fmt.Errorf("turn on %s: %w: %q", conv.ID, domain.ErrUnknownState, conv.State)
	}

	transcript, err := domain.SanitizeInput(strings.TrimSpace(in.Transcript), e.maxInput)
	if err != nil {
		return nil, fmt.Errorf("turn on %s: %w", conv.ID, err)
	}

	now := e.now()
	next := conv.Clone()
	if next.Slots == nil {
		next.Slots = domain.SlotContext{}
	}
	next.Slots.Merge(in.Slots)

	if transcript != "" {
		next.Transcript = append(next.Transcript, domain.Utterance{State: conv.State, Text: transcript, At: now})
	}

	tr, matched := e.table.Match(conv.State, guard.Input{
		Slots:      next.Slots,
		Attempts:   conv.Attempts,
		Transcript: transcript,
	})

	dest := conv.State
	reason := ""
	if matched {
		dest = tr.To
		reason = tr.Description
		if tr.Reset {
			next.Slots.Reset()
		}
	}

	if dest == conv.State {
		next.Attempts++
		e.logger.Debug("conversation stayed",
			"conversation_id", conv.ID, "state", dest, "attempts", next.Attempts)
		e.emit(ctx, e.hooks.OnStay, domain.EventStay, next, conv.State)
	} else {
		e.emit(ctx, e.hooks.OnStateLeave, domain.EventStateLeave, conv, "")
		next.State = dest
		next.Attempts = 0
		next.History = append(next.History, dest)
		e.logger.Debug("conversation transitioned",
			"conversation_id", conv.ID, "from", conv.State, "to", dest, "reason", reason)
		e.emit(ctx, e.hooks.OnStateEnter, domain.EventStateEnter, next, conv.State)
	}

	if dest.Terminal() {
		next.Status = domain.StatusEnded
		e.logger.Info("conversation ended", "conversation_id", conv.ID, "turns", len(next.History))
		e.emit(ctx, e.hooks.OnConversationEnd, domain.EventConversationEnd, next, conv.State)
	}
	next.UpdatedAt = now

	prompt, err := e.catalog.Render(dest, next.Slots)
	if err != nil {
		return nil, fmt.Errorf("turn on %s: %w", conv.ID, err)
	}

	return &TurnResult{
		Conversation: next,
		From:         conv.State,
		Prompt:       prompt,
		Transitioned: dest != conv.State,
		Terminal:     dest.Terminal(),
		Reason:       reason,
		Diff:         domain.Diff(conv, next),
	}, nil
}

// NextState decides the state after state given the collected slots and the
// attempt counter. It has no side effects.
func (e *Engine) NextState(state domain.State, slots domain.SlotContext, attempts int) (domain.State, error) {
	return e.Evaluate(state, guard.Input{Slots: slots, Attempts: attempts})
}

// Evaluate is NextState with a turn transcript for keyword guards.
func (e *Engine) Evaluate(state domain.State, in guard.Input) (domain.State, error) {
	if !state.Valid() {
		return "", fmt.Errorf("next state: %w: %q", domain.ErrUnknownState, state)
	}
	return e.table.Next(state, in), nil
}

// Render produces the prompt for state.
func (e *Engine) Render(state domain.State, slots domain.SlotContext) (string, error) {
	return e.catalog.Render(state, slots)
}

// Definition is the static shape of the machine, for export.
type Definition struct {
	Table   *flow.Table
	Catalog *catalog.Catalog
}

// Inspect returns the table and catalog the engine runs.
func (e *Engine) Inspect() Definition {
	return Definition{Table: e.table, Catalog: e.catalog}
}

func (e *Engine) emit(ctx context.Context, hook func(context.Context, *domain.StateEvent), typ domain.EventType, conv *domain.Conversation, from domain.State) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.StateEvent{
		Timestamp:      e.now(),
		Type:           typ,
		ConversationID: conv.ID,
		State:          conv.State,
		From:           from,
		Attempts:       conv.Attempts,
	})
}
