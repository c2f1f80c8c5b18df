package flow

import (
	"maps"
	"slices"

	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/guard"
)

// EntrySlots reports, for every state of the table, the slots that are set
// on every path entering it from start. Slots persist between turns until a
// resetting transition clears them, so a state knows what its guards have
// already established upstream. States that cannot be reached know nothing.
func EntrySlots(t *Table, start domain.State) map[domain.State][]string {
	// A missing entry stands for "not yet constrained".
	known := map[domain.State]map[string]bool{start: {}}

	for changed := true; changed; {
		changed = false
		for _, s := range States(t) {
			if s == start {
				continue
			}
			next, ok := incoming(t, s, known)
			if !ok {
				continue
			}
			if prev, seen := known[s]; !seen || !maps.Equal(prev, next) {
				known[s] = next
				changed = true
			}
		}
	}

	out := make(map[domain.State][]string)
	for _, s := range States(t) {
		out[s] = slices.Sorted(maps.Keys(known[s]))
	}
	return out
}

// incoming intersects what each constrained transition into s carries.
// ok is false while no source of s is constrained yet.
func incoming(t *Table, s domain.State, known map[domain.State]map[string]bool) (map[string]bool, bool) {
	var acc map[string]bool
	for _, tr := range t.transitions {
		if tr.To != s {
			continue
		}
		carried := make(map[string]bool)
		if !tr.Reset {
			from, ok := known[tr.From]
			if !ok {
				continue
			}
			maps.Copy(carried, from)
		}
		for _, name := range guard.Guarantees(tr.Guard) {
			carried[name] = true
		}
		if acc == nil {
			acc = carried
			continue
		}
		maps.DeleteFunc(acc, func(name string, _ bool) bool { return !carried[name] })
	}
	return acc, acc != nil
}
