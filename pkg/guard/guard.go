package guard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/hostline/pkg/domain"
)

// Input is everything a predicate may look at.
type Input struct {
	Slots      domain.SlotContext
	Attempts   int
	Transcript string
}

// Predicate is a side-effect free condition over an Input.
type Predicate interface {
	// Eval reports whether the predicate holds.
	Eval(in Input) bool
	// Expr renders the predicate in the platform's expression syntax.
	Expr() string
	// String is a short human description used in logs and diagrams.
	String() string
}

type slotSet struct{ name string }

// SlotSet holds when the named slot is set.
func SlotSet(name string) Predicate { return slotSet{name: name} }

func (p slotSet) Eval(in Input) bool { return in.Slots.IsSet(p.name) }
func (p slotSet) Expr() string       { return p.name + " != null" }
func (p slotSet) String() string     { return p.name + " set" }

type slotEquals struct {
	name  string
	value any
}

// SlotEquals holds when the named slot equals value. Strings compare
// case-insensitively; booleans also accept "true"/"false" strings.
func SlotEquals(name string, value any) Predicate { return slotEquals{name: name, value: value} }

func (p slotEquals) Eval(in Input) bool {
	got, ok := in.Slots.Get(p.name)
	if !ok || got == nil {
		return false
	}
	return equalValue(got, p.value)
}

func (p slotEquals) Expr() string {
	return p.name + " == " + literal(p.value)
}

func (p slotEquals) String() string {
	return fmt.Sprintf("%s = %v", p.name, p.value)
}

type attemptExceeds struct{ n int }

// AttemptExceeds holds when the attempt counter is strictly greater than n.
func AttemptExceeds(n int) Predicate { return attemptExceeds{n: n} }

func (p attemptExceeds) Eval(in Input) bool { return in.Attempts > p.n }
func (p attemptExceeds) Expr() string       { return "attempt_count > " + strconv.Itoa(p.n) }
func (p attemptExceeds) String() string     { return "attempts > " + strconv.Itoa(p.n) }

type keywordPresent struct{ words []string }

// KeywordPresent holds when any of words appears in the turn transcript,
// compared case-insensitively and anchored at the start of a word, so
// "table" matches "tables" but not "vegetable".
func KeywordPresent(words ...string) Predicate {
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}
	return keywordPresent{words: lower}
}

func (p keywordPresent) Eval(in Input) bool {
	text := strings.ToLower(in.Transcript)
	for _, w := range p.words {
		if w != "" && containsWordPrefix(text, w) {
			return true
		}
	}
	return false
}

// containsWordPrefix reports whether w occurs in text starting at a word
// boundary: "book" matches "booking" but not "facebook".
func containsWordPrefix(text, w string) bool {
	for i := 0; ; {
		j := strings.Index(text[i:], w)
		if j < 0 {
			return false
		}
		at := i + j
		if at == 0 || !isWordByte(text[at-1]) {
			return true
		}
		i = at + 1
	}
}

// isWordByte mirrors the ASCII word class used by \b in platform regexes.
func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func (p keywordPresent) Expr() string {
	parts := make([]string, len(p.words))
	for i, w := range p.words {
		parts[i] = `/\b` + strings.ReplaceAll(regexp.QuoteMeta(w), "/", `\/`) + `/i.test(transcript)`
	}
	return strings.Join(parts, " || ")
}

func (p keywordPresent) String() string {
	return "says " + strings.Join(p.words, "/")
}

// Keywords returns the lower-cased words the predicate looks for.
func (p keywordPresent) Keywords() []string {
	return append([]string(nil), p.words...)
}

type utterancePresent struct{}

// UtterancePresent holds when the caller said anything at all this turn.
func UtterancePresent() Predicate { return utterancePresent{} }

func (utterancePresent) Eval(in Input) bool { return strings.TrimSpace(in.Transcript) != "" }
func (utterancePresent) Expr() string       { return "transcript.length > 0" }
func (utterancePresent) String() string     { return "caller spoke" }

type always struct{}

// Always holds unconditionally.
func Always() Predicate { return always{} }

func (always) Eval(Input) bool { return true }
func (always) Expr() string    { return "true" }
func (always) String() string  { return "always" }

func equalValue(got, want any) bool {
	switch w := want.(type) {
	case string:
		return strings.EqualFold(strings.TrimSpace(fmt.Sprint(got)), w)
	case bool:
		switch g := got.(type) {
		case bool:
			return g == w
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(g))
			return err == nil && b == w
		}
		return false
	default:
		return fmt.Sprint(got) == fmt.Sprint(want)
	}
}

func literal(v any) string {
	switch t := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(t, "'", `\'`) + "'"
	case nil:
		return "null"
	default:
		return fmt.Sprint(t)
	}
}
