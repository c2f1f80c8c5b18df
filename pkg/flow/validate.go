package flow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/hostline/pkg/domain"
)

// Validate checks that every transition names known states, that nothing
// leaves the terminal state, and that every state can be reached from the
// initial one.
func Validate(t *Table) error {
	var problems []string

	for i, tr := range t.transitions {
		if !tr.From.Valid() {
			problems = append(problems, fmt.Sprintf("transition %d: unknown source state '%s'", i+1, tr.From))
		}
		if !tr.To.Valid() {
			problems = append(problems, fmt.Sprintf("transition %d: unknown target state '%s'", i+1, tr.To))
		}
		if tr.From.Terminal() {
			problems = append(problems, fmt.Sprintf("transition %d: leaves terminal state '%s'", i+1, tr.From))
		}
	}

	visited := Reachable(t, domain.InitialState)
	for _, s := range domain.AllStates() {
		if !visited[s] {
			problems = append(problems, fmt.Sprintf("state '%s' is unreachable from '%s'", s, domain.InitialState))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

// Reachable walks the table breadth-first from start.
func Reachable(t *Table, start domain.State) map[domain.State]bool {
	visited := make(map[domain.State]bool)
	queue := []domain.State{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, tr := range t.Outgoing(current) {
			if !visited[tr.To] {
				queue = append(queue, tr.To)
			}
		}
	}
	return visited
}

// States returns every state referenced by the table, sorted by dialogue order.
func States(t *Table) []domain.State {
	seen := make(map[domain.State]bool)
	for _, tr := range t.transitions {
		seen[tr.From] = true
		seen[tr.To] = true
	}
	var out []domain.State
	for _, s := range domain.AllStates() {
		if seen[s] {
			out = append(out, s)
		}
	}
	var extra []domain.State
	for s := range seen {
		if !slices.Contains(out, s) {
			extra = append(extra, s)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
