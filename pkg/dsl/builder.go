package dsl

import (
	"fmt"

	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/flow"
	"github.com/aretw0/hostline/pkg/guard"
)

// Builder collects transitions in declaration order.
type Builder struct {
	edges []*EdgeBuilder
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{}
}

// Extend starts from the transitions of an existing table.
func Extend(t *flow.Table) *Builder {
	b := New()
	for _, tr := range t.Transitions() {
		b.edges = append(b.edges, &EdgeBuilder{tr: tr, builder: b})
	}
	return b
}

// StateBuilder names the source of the next transition.
type StateBuilder struct {
	from    domain.State
	builder *Builder
}

// From starts a transition leaving state.
func (b *Builder) From(state domain.State) *StateBuilder {
	return &StateBuilder{from: state, builder: b}
}

// To adds an unconditional transition to target. Refine it with the
// EdgeBuilder methods.
func (s *StateBuilder) To(target domain.State) *EdgeBuilder {
	e := &EdgeBuilder{
		tr:      flow.Transition{From: s.from, To: target},
		builder: s.builder,
	}
	s.builder.edges = append(s.builder.edges, e)
	return e
}

// Build validates the collected transitions and returns the table. Edges
// marked First come before all others, keeping their relative order.
func (b *Builder) Build() (*flow.Table, error) {
	ordered := make([]flow.Transition, 0, len(b.edges))
	for _, e := range b.edges {
		if e.first {
			ordered = append(ordered, e.tr)
		}
	}
	for _, e := range b.edges {
		if !e.first {
			ordered = append(ordered, e.tr)
		}
	}

	t := flow.NewTable(ordered...)
	if err := flow.Validate(t); err != nil {
		return nil, fmt.Errorf("invalid transition table: %w", err)
	}
	return t, nil
}

// MustBuild is Build for package-level tables. It panics on error.
func (b *Builder) MustBuild() *flow.Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// EdgeBuilder configures one transition.
type EdgeBuilder struct {
	tr      flow.Transition
	first   bool
	builder *Builder
}

// When sets the guard. Calling it again combines guards with guard.And.
func (e *EdgeBuilder) When(p guard.Predicate) *EdgeBuilder {
	if e.tr.Guard == nil {
		e.tr.Guard = p
	} else {
		e.tr.Guard = guard.And(e.tr.Guard, p)
	}
	return e
}

// OnKeywords guards the transition on any of the words in the transcript.
func (e *EdgeBuilder) OnKeywords(words ...string) *EdgeBuilder {
	return e.When(guard.KeywordPresent(words...))
}

// OnSlots guards the transition on every named slot being set.
func (e *EdgeBuilder) OnSlots(names ...string) *EdgeBuilder {
	return e.When(guard.AllSet(names...))
}

// AfterAttempts guards the transition on the caller having failed more
// than n times in the current state.
func (e *EdgeBuilder) AfterAttempts(n int) *EdgeBuilder {
	return e.When(guard.AttemptExceeds(n))
}

// Because sets the description shown in logs and graphs.
func (e *EdgeBuilder) Because(description string) *EdgeBuilder {
	e.tr.Description = description
	return e
}

// Resetting clears the slot context when the transition is taken.
func (e *EdgeBuilder) Resetting() *EdgeBuilder {
	e.tr.Reset = true
	return e
}

// First puts the transition ahead of the ones already declared, so it is
// tried before them.
func (e *EdgeBuilder) First() *EdgeBuilder {
	e.first = true
	return e
}

// From continues with a new transition on the same builder.
func (e *EdgeBuilder) From(state domain.State) *StateBuilder {
	return e.builder.From(state)
}

// Build finishes the chain. See Builder.Build.
func (e *EdgeBuilder) Build() (*flow.Table, error) {
	return e.builder.Build()
}
