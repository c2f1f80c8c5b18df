package guard

import (
	"slices"
	"strings"
)

type not struct{ p Predicate }

// Not negates p.
func Not(p Predicate) Predicate { return not{p: p} }

func (n not) Eval(in Input) bool { return !n.p.Eval(in) }

func (n not) Expr() string {
	if s, ok := n.p.(slotSet); ok {
		return s.name + " == null"
	}
	return "!(" + n.p.Expr() + ")"
}

func (n not) String() string {
	if s, ok := n.p.(slotSet); ok {
		return s.name + " unset"
	}
	return "not " + n.p.String()
}

type and struct{ ps []Predicate }

// And holds when every operand holds. An empty And holds.
func And(ps ...Predicate) Predicate { return and{ps: ps} }

func (a and) Eval(in Input) bool {
	for _, p := range a.ps {
		if !p.Eval(in) {
			return false
		}
	}
	return true
}

func (a and) Expr() string   { return join(a.ps, " && ", true) }
func (a and) String() string { return describe(a.ps, " and ") }

type or struct{ ps []Predicate }

// Or holds when at least one operand holds. An empty Or does not hold.
func Or(ps ...Predicate) Predicate { return or{ps: ps} }

func (o or) Eval(in Input) bool {
	for _, p := range o.ps {
		if p.Eval(in) {
			return true
		}
	}
	return false
}

func (o or) Expr() string   { return join(o.ps, " || ", false) }
func (o or) String() string { return describe(o.ps, " or ") }

// AllSet holds when every named slot is set.
func AllSet(names ...string) Predicate {
	ps := make([]Predicate, len(names))
	for i, n := range names {
		ps[i] = SlotSet(n)
	}
	return And(ps...)
}

func join(ps []Predicate, sep string, wrapDisjunctions bool) string {
	if len(ps) == 0 {
		if wrapDisjunctions {
			return "true"
		}
		return "false"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		e := p.Expr()
		if wrapDisjunctions && strings.Contains(e, "||") {
			e = "(" + e + ")"
		}
		parts[i] = e
	}
	return strings.Join(parts, sep)
}

func describe(ps []Predicate, sep string) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, sep)
}

// Keywords collects every keyword referenced anywhere in p.
func Keywords(p Predicate) []string {
	var out []string
	walk(p, func(q Predicate) {
		if k, ok := q.(keywordPresent); ok {
			out = append(out, k.Keywords()...)
		}
	})
	return out
}

// Slots collects every slot name referenced anywhere in p.
func Slots(p Predicate) []string {
	var out []string
	walk(p, func(q Predicate) {
		switch t := q.(type) {
		case slotSet:
			out = append(out, t.name)
		case slotEquals:
			out = append(out, t.name)
		}
	})
	return out
}

// Guarantees returns the slots that are necessarily set whenever p holds.
// Conjunctions add up, disjunctions keep what every branch shares, and a
// negation guarantees nothing.
func Guarantees(p Predicate) []string {
	switch t := p.(type) {
	case slotSet:
		return []string{t.name}
	case slotEquals:
		if isSetValue(t.value) {
			return []string{t.name}
		}
	case and:
		var out []string
		for _, c := range t.ps {
			for _, name := range Guarantees(c) {
				if !slices.Contains(out, name) {
					out = append(out, name)
				}
			}
		}
		return out
	case or:
		if len(t.ps) == 0 {
			return nil
		}
		out := Guarantees(t.ps[0])
		for _, c := range t.ps[1:] {
			other := Guarantees(c)
			out = slices.DeleteFunc(out, func(name string) bool { return !slices.Contains(other, name) })
		}
		return out
	}
	return nil
}

func isSetValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	}
	return true
}

func walk(p Predicate, fn func(Predicate)) {
	fn(p)
	switch t := p.(type) {
	case not:
		walk(t.p, fn)
	case and:
		for _, c := range t.ps {
			walk(c, fn)
		}
	case or:
		for _, c := range t.ps {
			walk(c, fn)
		}
	}
}
