package domain

import (
	"reflect"
)

// ConversationDiff represents the changes between two snapshots of a conversation.
// It is serialized to JSON so clients can apply partial updates.
type ConversationDiff struct {
	ConversationID string `json:"conversation_id"`

	State    *State  `json:"state,omitempty"`
	Status   *Status `json:"status,omitempty"`
	Attempts *int    `json:"attempts,omitempty"`

	// Slots contains only changed, added or deleted keys.
	// Deleted keys are present with a nil value.
	Slots map[string]any `json:"slots,omitempty"`

	// Visited holds states appended to the history.
	Visited []State `json:"visited,omitempty"`
}

// Diff calculates the difference between prev and next.
// A nil prev yields a diff describing the entire next snapshot.
func Diff(prev, next *Conversation) *ConversationDiff {
	if next == nil {
		return nil
	}

	d := &ConversationDiff{ConversationID: next.ID}

	if prev == nil || prev.State != next.State {
		d.State = &next.State
	}
	if prev == nil || prev.Status != next.Status {
		d.Status = &next.Status
	}
	if prev == nil || prev.Attempts != next.Attempts {
		d.Attempts = &next.Attempts
	}
	d.Slots = diffSlots(prev, next)
	d.Visited = diffHistory(prev, next)

	if d.IsEmpty() {
		return nil
	}
	return d
}

func diffSlots(prev, next *Conversation) map[string]any {
	delta := make(map[string]any)

	if prev == nil {
		for k, v := range next.Slots {
			delta[k] = v
		}
		return nilIfEmpty(delta)
	}

	for k, v := range next.Slots {
		old, ok := prev.Slots[k]
		if !ok || !reflect.DeepEqual(old, v) {
			delta[k] = v
		}
	}
	for k := range prev.Slots {
		if _, ok := next.Slots[k]; !ok {
			delta[k] = nil
		}
	}
	return nilIfEmpty(delta)
}

// diffHistory assumes the history is append-only.
func diffHistory(prev, next *Conversation) []State {
	if len(next.History) == 0 {
		return nil
	}
	if prev == nil {
		return next.History
	}
	if len(next.History) > len(prev.History) {
		return next.History[len(prev.History):]
	}
	return nil
}

func nilIfEmpty(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}

// IsEmpty checks if the diff contains any changes.
func (d *ConversationDiff) IsEmpty() bool {
	return d.State == nil &&
		d.Status == nil &&
		d.Attempts == nil &&
		len(d.Slots) == 0 &&
		len(d.Visited) == 0
}
