package flow

import (
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/guard"
)

// Transition is one edge of the machine.
type Transition struct {
	From        domain.State
	To          domain.State
	Guard       guard.Predicate
	Description string
	// Reset clears the slot context when the transition is taken.
	Reset bool
}

// Table is an immutable, ordered list of transitions.
type Table struct {
	transitions []Transition
}

// NewTable builds a table. A nil guard is treated as Always.
func NewTable(ts ...Transition) *Table {
	cp := make([]Transition, len(ts))
	for i, t := range ts {
		if t.Guard == nil {
			t.Guard = guard.Always()
		}
		cp[i] = t
	}
	return &Table{transitions: cp}
}

// Transitions returns a copy of every transition in declaration order.
func (t *Table) Transitions() []Transition {
	return append([]Transition(nil), t.transitions...)
}

// Outgoing returns the transitions leaving from, in declaration order.
func (t *Table) Outgoing(from domain.State) []Transition {
	var out []Transition
	for _, tr := range t.transitions {
		if tr.From == from {
			out = append(out, tr)
		}
	}
	return out
}

// Match returns the first transition out of current whose guard holds.
func (t *Table) Match(current domain.State, in guard.Input) (Transition, bool) {
	for _, tr := range t.transitions {
		if tr.From != current {
			continue
		}
		if tr.Guard.Eval(in) {
			return tr, true
		}
	}
	return Transition{}, false
}

// Next returns the state the conversation moves to. Without a matching
// transition the current state is returned.
func (t *Table) Next(current domain.State, in guard.Input) domain.State {
	if tr, ok := t.Match(current, in); ok {
		return tr.To
	}
	return current
}
