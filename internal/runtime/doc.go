// Package runtime implements the conversation engine: it merges each turn's
// slots, evaluates the transition table, maintains the attempt counter and
// renders the prompt of the resulting state. It performs no I/O.
package runtime
