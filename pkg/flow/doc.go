// Package flow holds the ordered transition table of the conversation machine.
//
// Transitions are evaluated in declaration order for the current state; the
// first one whose guard holds decides the next state. When no guard holds the
// conversation stays where it is.
package flow
