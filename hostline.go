package hostline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/hostline/internal/runtime"
	"github.com/aretw0/hostline/pkg/catalog"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/flow"
	"github.com/aretw0/hostline/pkg/guard"
	"github.com/aretw0/hostline/pkg/knowledge"
	"github.com/aretw0/hostline/pkg/publisher"
)

// Version of the hostline module.
const Version = "0.4.0"

// TurnInput is what the caller contributed in one turn.
type TurnInput = runtime.TurnInput

// TurnResult is the outcome of one turn.
type TurnResult = runtime.TurnResult

// Engine is the high-level entry point. It bundles the transition table,
// the prompt catalog and the flow engine that runs them.
type Engine struct {
	runtime   *runtime.Engine
	table     *flow.Table
	catalog   *catalog.Catalog
	knowledge *knowledge.Base

	templateDir string
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	clock       func() time.Time
	newID       func() string
	maxInput    int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTable replaces the default restaurant transition table.
func WithTable(t *flow.Table) Option {
	return func(e *Engine) {
		e.table = t
	}
}

// WithTemplateDir overlays prompt templates found in dir on the built-in
// ones.
func WithTemplateDir(dir string) Option {
	return func(e *Engine) {
		e.templateDir = dir
	}
}

// WithKnowledge takes the brand, assistant name and outlet directory used
// by the prompts from kb.
func WithKnowledge(kb *knowledge.Base) Option {
	return func(e *Engine) {
		e.knowledge = kb
	}
}

// WithClock sets the time source for conversation timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
	}
}

// WithIDGenerator sets the source of conversation ids.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// WithMaxInputBytes bounds the size of one caller utterance. Larger turns
// fail with domain.ErrInputTooLarge.
func WithMaxInputBytes(n int) Option {
	return func(e *Engine) {
		e.maxInput = n
	}
}

// New builds an engine. The table is validated before anything runs.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.table == nil {
		eng.table = flow.DefaultTable()
	}

	var overrides []catalog.Template
	if eng.templateDir != "" {
		var err error
		overrides, err = catalog.LoadOverrides(ctx, eng.templateDir)
		if err != nil {
			return nil, err
		}
		eng.logger.Info("template overrides loaded", "dir", eng.templateDir, "count", len(overrides))
	}

	var catOpts []catalog.Option
	if eng.knowledge != nil {
		catOpts = append(catOpts, catalog.WithPersona(PersonaOf(eng.knowledge)))
	}
	cat, err := catalog.Default(overrides, catOpts...)
	if err != nil {
		return nil, err
	}
	eng.catalog = cat

	if err := flow.Validate(eng.table); err != nil {
		return nil, fmt.Errorf("invalid transition table: %w", err)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithClock(eng.clock),
		runtime.WithIDGenerator(eng.newID),
		runtime.WithMaxInputBytes(eng.maxInput),
	}
	eng.runtime = runtime.NewEngine(eng.table, cat, runtimeOpts...)
	return eng, nil
}

// PersonaOf derives the prompt persona from a knowledge base.
func PersonaOf(kb *knowledge.Base) catalog.Persona {
	p := catalog.Persona{Brand: kb.Brand(), Assistant: kb.Assistant()}
	for _, c := range kb.Directory() {
		city := catalog.City{Name: c.Name}
		for _, o := range c.Outlets {
			city.Outlets = append(city.Outlets, o.Name)
		}
		p.Cities = append(p.Cities, city)
	}
	return p
}

// Start creates a conversation at the greeting state.
func (e *Engine) Start(ctx context.Context, id string, initial map[string]any) (*domain.Conversation, error) {
	return e.runtime.Start(ctx, id, initial)
}

// Turn applies one caller turn. conv is not modified.
func (e *Engine) Turn(ctx context.Context, conv *domain.Conversation, in TurnInput) (*TurnResult, error) {
	return e.runtime.Turn(ctx, conv, in)
}

// Render produces the agent instructions for state.
func (e *Engine) Render(state domain.State, slots domain.SlotContext) (string, error) {
	return e.runtime.Render(state, slots)
}

// NextState decides the state after state given the slots and attempts.
func (e *Engine) NextState(state domain.State, slots domain.SlotContext, attempts int) (domain.State, error) {
	return e.runtime.NextState(state, slots, attempts)
}

// Evaluate is NextState with a transcript for keyword rules.
func (e *Engine) Evaluate(state domain.State, in guard.Input) (domain.State, error) {
	return e.runtime.Evaluate(state, in)
}

// Table returns the transition table.
func (e *Engine) Table() *flow.Table { return e.table }

// Catalog returns the prompt catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Graph compiles the machine into the voice platform's agent graph.
func (e *Engine) Graph(opts ...publisher.Option) (publisher.Graph, error) {
	return publisher.Compile(e.table, e.catalog, opts...)
}
