// Package guard defines the structured predicates attached to transitions.
//
// A predicate is a small tree built from SlotSet, SlotEquals, AttemptExceeds,
// KeywordPresent and UtterancePresent, combined with Not, And and Or. The
// same tree is evaluated locally by the engine and exported as a boolean
// expression for the voice platform through Expr.
package guard
