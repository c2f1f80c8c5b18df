package chat

import "math/rand/v2"

// Chooser picks one of n alternatives.
type Chooser interface {
	Choose(n int) int
}

// RandomChooser picks uniformly at random. It is safe for concurrent use.
type RandomChooser struct{}

func (RandomChooser) Choose(n int) int {
	if n <= 1 {
		return 0
	}
	return rand.IntN(n)
}

// FixedChooser always picks the same index, wrapped into range.
type FixedChooser int

func (f FixedChooser) Choose(n int) int {
	if n <= 1 {
		return 0
	}
	i := int(f) % n
	if i < 0 {
		i += n
	}
	return i
}
