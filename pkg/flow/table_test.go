package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/guard"
)

func in(slots domain.SlotContext, attempts int, transcript string) guard.Input {
	return guard.Input{Slots: slots, Attempts: attempts, Transcript: transcript}
}

func TestDefaultTable_Next(t *testing.T) {
	table := DefaultTable()
	complete := domain.SlotContext{
		"date": "2026-10-20", "time": "19:30", "party_size": 4,
		"customer_name": "Asha", "phone_number": "9876543210",
	}

	tests := []struct {
		name  string
		from  domain.State
		input guard.Input
		want  domain.State
	}{
		{"greeting waits for the caller", domain.StateGreeting, in(nil, 0, ""), domain.StateGreeting},
		{"greeting moves on any utterance", domain.StateGreeting, in(nil, 0, "hello"), domain.StateCityCollection},
		{"greeting with city up front", domain.StateGreeting, in(domain.SlotContext{"city": "Delhi"}, 0, ""), domain.StateCityCollection},
		{"city provided", domain.StateCityCollection, in(domain.SlotContext{"city": "Delhi"}, 0, ""), domain.StateOutletCollection},
		{"city empty stays", domain.StateCityCollection, in(nil, 0, ""), domain.StateCityCollection},
		{"city empty at two attempts stays", domain.StateCityCollection, in(nil, 2, ""), domain.StateCityCollection},
		{"city empty after three attempts", domain.StateCityCollection, in(nil, 3, ""), domain.StateFallback},
		{"city set wins over attempt count", domain.StateCityCollection, in(domain.SlotContext{"city": "Delhi"}, 9, ""), domain.StateOutletCollection},
		{"outlet provided", domain.StateOutletCollection, in(domain.SlotContext{"city": "Delhi", "outlet": "Saket"}, 0, ""), domain.StateIntentIdentification},
		{"outlet missing stays", domain.StateOutletCollection, in(domain.SlotContext{"city": "Delhi"}, 1, ""), domain.StateOutletCollection},
		{"outlet missing too long", domain.StateOutletCollection, in(domain.SlotContext{"city": "Delhi"}, 3, ""), domain.StateFallback},
		{"intent slot inquiry", domain.StateIntentIdentification, in(domain.SlotContext{"intent": "inquiry"}, 0, ""), domain.StateInformationInquiry},
		{"intent slot new", domain.StateIntentIdentification, in(domain.SlotContext{"intent": "new_reservation"}, 0, ""), domain.StateNewReservation},
		{"intent slot modify", domain.StateIntentIdentification, in(domain.SlotContext{"intent": "modify_reservation"}, 0, ""), domain.StateModifyReservation},
		{"intent slot cancel", domain.StateIntentIdentification, in(domain.SlotContext{"intent": "cancel_reservation"}, 0, ""), domain.StateCancelReservation},
		{"intent slot beats keyword", domain.StateIntentIdentification, in(domain.SlotContext{"intent": "inquiry"}, 0, "cancel"), domain.StateInformationInquiry},
		{"cancel keyword checked before book", domain.StateIntentIdentification, in(nil, 0, "cancel the table I booked"), domain.StateCancelReservation},
		{"modify keyword", domain.StateIntentIdentification, in(nil, 0, "I need to change my booking"), domain.StateModifyReservation},
		{"book keyword", domain.StateIntentIdentification, in(nil, 0, "Book a table for four"), domain.StateNewReservation},
		{"inquiry keyword", domain.StateIntentIdentification, in(nil, 0, "what are your hours"), domain.StateInformationInquiry},
		{"keywords match whole word starts", domain.StateIntentIdentification, in(nil, 0, "any vegetable dishes on the menu?"), domain.StateInformationInquiry},
		{"intent unknown after three attempts", domain.StateIntentIdentification, in(nil, 3, "hmm"), domain.StateFallback},
		{"inquiry complete", domain.StateInformationInquiry, in(domain.SlotContext{"inquiry_complete": true}, 0, ""), domain.StateFarewell},
		{"inquiry thanks", domain.StateInformationInquiry, in(nil, 0, "Thanks a lot"), domain.StateFarewell},
		{"inquiry change intent", domain.StateInformationInquiry, in(domain.SlotContext{"change_intent": true}, 0, ""), domain.StateIntentIdentification},
		{"booking complete", domain.StateNewReservation, in(complete, 0, ""), domain.StateReservationConfirmation},
		{"booking incomplete stays", domain.StateNewReservation, in(domain.SlotContext{"date": "2026-10-20"}, 5, ""), domain.StateNewReservation},
		{"booking incomplete too long", domain.StateNewReservation, in(domain.SlotContext{"date": "2026-10-20"}, 6, ""), domain.StateFallback},
		{"booking confirmed", domain.StateReservationConfirmation, in(domain.SlotContext{"reservation_confirmed": true}, 0, ""), domain.StateFarewell},
		{"booking not yet confirmed", domain.StateReservationConfirmation, in(nil, 7, ""), domain.StateReservationConfirmation},
		{"modification complete", domain.StateModifyReservation, in(domain.SlotContext{"modification_complete": true}, 0, ""), domain.StateFarewell},
		{"modification stalled", domain.StateModifyReservation, in(nil, 6, ""), domain.StateFallback},
		{"cancellation confirmed yes", domain.StateCancelReservation, in(domain.SlotContext{"confirmation": "Yes"}, 0, ""), domain.StateFarewell},
		{"cancellation complete", domain.StateCancelReservation, in(domain.SlotContext{"cancellation_complete": true}, 0, ""), domain.StateFarewell},
		{"cancellation stalled", domain.StateCancelReservation, in(nil, 4, ""), domain.StateFallback},
		{"fallback restart flag", domain.StateFallback, in(domain.SlotContext{"restart": true}, 0, ""), domain.StateCityCollection},
		{"fallback restart keyword", domain.StateFallback, in(nil, 0, "can we start over"), domain.StateCityCollection},
		{"fallback goodbye", domain.StateFallback, in(nil, 0, "bye"), domain.StateFarewell},
		{"fallback gives up", domain.StateFallback, in(nil, 3, ""), domain.StateFarewell},
		{"fallback waits", domain.StateFallback, in(nil, 1, ""), domain.StateFallback},
		{"farewell is terminal", domain.StateFarewell, in(domain.SlotContext{"restart": true}, 0, "restart"), domain.StateFarewell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Next(tt.from, tt.input))
		})
	}
}

func TestDefaultTable_UnsatisfiableFromEmptyContextStays(t *testing.T) {
	table := DefaultTable()
	for _, s := range domain.AllStates() {
		next := table.Next(s, in(domain.SlotContext{}, 0, ""))
		assert.Equal(t, s, next, "state %s should not move on an empty turn", s)
	}
}

func TestMatch_ReportsReset(t *testing.T) {
	tr, ok := DefaultTable().Match(domain.StateFallback, in(domain.SlotContext{"restart": true}, 0, ""))
	require.True(t, ok)
	assert.True(t, tr.Reset)
	assert.Equal(t, domain.StateCityCollection, tr.To)
}

func TestNewTable_NilGuardIsAlways(t *testing.T) {
	table := NewTable(Transition{From: domain.StateGreeting, To: domain.StateFarewell})
	assert.Equal(t, domain.StateFarewell, table.Next(domain.StateGreeting, guard.Input{}))
}

func TestNewTable_FirstMatchWins(t *testing.T) {
	table := NewTable(
		Transition{From: domain.StateGreeting, To: domain.StateFallback, Guard: guard.SlotSet("city")},
		Transition{From: domain.StateGreeting, To: domain.StateFarewell, Guard: guard.Always()},
		Transition{From: domain.StateGreeting, To: domain.StateCityCollection, Guard: guard.Always()},
	)
	assert.Equal(t, domain.StateFarewell, table.Next(domain.StateGreeting, guard.Input{}))
	assert.Equal(t, domain.StateFallback, table.Next(domain.StateGreeting, in(domain.SlotContext{"city": "x"}, 0, "")))
}

func TestOutgoing(t *testing.T) {
	out := DefaultTable().Outgoing(domain.StateIntentIdentification)
	require.Len(t, out, 9)
	assert.Equal(t, domain.StateInformationInquiry, out[0].To)
	assert.Equal(t, domain.StateFallback, out[8].To)
}
