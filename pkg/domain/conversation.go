package domain

import "time"

// Status tells whether a conversation still accepts turns.
type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Utterance is one caller message recorded against the state it was said in.
type Utterance struct {
	State State     `json:"state"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Conversation is the snapshot persisted between turns.
type Conversation struct {
	ID         string      `json:"id"`
	State      State       `json:"state"`
	Slots      SlotContext `json:"slots"`
	Attempts   int         `json:"attempts"`
	Transcript []Utterance `json:"transcript,omitempty"`
	History    []State     `json:"history"`
	Status     Status      `json:"status"`
	StartedAt  time.Time   `json:"started_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewConversation creates a conversation sitting at the initial state.
func NewConversation(id string, initial map[string]any, now time.Time) *Conversation {
	return &Conversation{
		ID:        id,
		State:     InitialState,
		Slots:     NewSlotContext(initial),
		History:   []State{InitialState},
		Status:    StatusActive,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Ended reports whether the conversation reached the terminal state.
func (c *Conversation) Ended() bool {
	return c.Status == StatusEnded
}

// Clone returns a deep copy so callers can mutate it without touching the original.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Slots = c.Slots.Clone()
	out.Transcript = append([]Utterance(nil), c.Transcript...)
	out.History = append([]State(nil), c.History...)
	return &out
}

// FullTranscript joins every recorded utterance with newlines.
func (c *Conversation) FullTranscript() string {
	var n int
	for _, u := range c.Transcript {
		n += len(u.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, u := range c.Transcript {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, u.Text...)
	}
	return string(buf)
}
