package domain

import "fmt"

// State identifies one step of the dialogue.
type State string

const (
	StateGreeting                State = "greeting"
	StateCityCollection          State = "city_collection"
	StateOutletCollection        State = "outlet_collection"
	StateIntentIdentification    State = "intent_identification"
	StateInformationInquiry      State = "information_inquiry"
	StateNewReservation          State = "new_reservation"
	StateReservationConfirmation State = "reservation_confirmation"
	StateModifyReservation       State = "modify_reservation"
	StateCancelReservation       State = "cancel_reservation"
	StateFallback                State = "fallback"
	StateFarewell                State = "farewell"
)

// InitialState is where every conversation starts.
const InitialState = StateGreeting

// TerminalState ends a conversation. It has no outgoing transitions.
const TerminalState = StateFarewell

// AllStates lists every state in dialogue order.
func AllStates() []State {
	return []State{
		StateGreeting,
		StateCityCollection,
		StateOutletCollection,
		StateIntentIdentification,
		StateInformationInquiry,
		StateNewReservation,
		StateReservationConfirmation,
		StateModifyReservation,
		StateCancelReservation,
		StateFallback,
		StateFarewell,
	}
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	for _, known := range AllStates() {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the conversation.
func (s State) Terminal() bool {
	return s == TerminalState
}

func (s State) String() string {
	return string(s)
}

// ParseState converts a name into a State, failing with ErrUnknownState.
func ParseState(name string) (State, error) {
	s := State(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	return s, nil
}
