package flow

import (
	d "github.com/aretw0/hostline/pkg/domain"
	g "github.com/aretw0/hostline/pkg/guard"
)

// Intent keywords used when the platform has not filled the intent slot.
var (
	CancelKeywords  = []string{"cancel"}
	ModifyKeywords  = []string{"modify", "change", "update"}
	BookKeywords    = []string{"book", "reserve", "table"}
	InquiryKeywords = []string{"information", "menu", "hour", "facilities", "parking"}
)

// DefaultTable returns the restaurant dialogue.
func DefaultTable() *Table {
	return NewTable(
		// Greeting
		Transition{From: d.StateGreeting, To: d.StateCityCollection,
			Guard:       g.And(g.UtterancePresent(), g.Not(g.SlotSet(d.SlotCity))),
			Description: "caller responded"},
		Transition{From: d.StateGreeting, To: d.StateCityCollection,
			Guard:       g.SlotSet(d.SlotCity),
			Description: "city given up front"},

		// City
		Transition{From: d.StateCityCollection, To: d.StateOutletCollection,
			Guard:       g.SlotSet(d.SlotCity),
			Description: "city provided"},
		Transition{From: d.StateCityCollection, To: d.StateFallback,
			Guard:       g.And(g.AttemptExceeds(2), g.Not(g.SlotSet(d.SlotCity))),
			Description: "city not understood"},

		// Outlet
		Transition{From: d.StateOutletCollection, To: d.StateIntentIdentification,
			Guard:       g.AllSet(d.SlotCity, d.SlotOutlet),
			Description: "outlet provided"},
		Transition{From: d.StateOutletCollection, To: d.StateFallback,
			Guard:       g.And(g.AttemptExceeds(2), g.Not(g.SlotSet(d.SlotOutlet))),
			Description: "outlet not understood"},

		// Intent, by slot
		Transition{From: d.StateIntentIdentification, To: d.StateInformationInquiry,
			Guard:       g.SlotEquals(d.SlotIntent, d.IntentInquiry),
			Description: "information requested"},
		Transition{From: d.StateIntentIdentification, To: d.StateNewReservation,
			Guard:       g.SlotEquals(d.SlotIntent, d.IntentNewReservation),
			Description: "new booking"},
		Transition{From: d.StateIntentIdentification, To: d.StateModifyReservation,
			Guard:       g.SlotEquals(d.SlotIntent, d.IntentModifyReservation),
			Description: "modify booking"},
		Transition{From: d.StateIntentIdentification, To: d.StateCancelReservation,
			Guard:       g.SlotEquals(d.SlotIntent, d.IntentCancelReservation),
			Description: "cancel booking"},

		// Intent, by keyword
		Transition{From: d.StateIntentIdentification, To: d.StateCancelReservation,
			Guard:       g.KeywordPresent(CancelKeywords...),
			Description: "caller mentioned cancelling"},
		Transition{From: d.StateIntentIdentification, To: d.StateModifyReservation,
			Guard:       g.KeywordPresent(ModifyKeywords...),
			Description: "caller mentioned a change"},
		Transition{From: d.StateIntentIdentification, To: d.StateNewReservation,
			Guard:       g.KeywordPresent(BookKeywords...),
			Description: "caller mentioned booking"},
		Transition{From: d.StateIntentIdentification, To: d.StateInformationInquiry,
			Guard:       g.KeywordPresent(InquiryKeywords...),
			Description: "caller asked a question"},
		Transition{From: d.StateIntentIdentification, To: d.StateFallback,
			Guard:       g.And(g.AttemptExceeds(2), g.Not(g.SlotSet(d.SlotIntent))),
			Description: "intent not understood"},

		// Information
		Transition{From: d.StateInformationInquiry, To: d.StateFarewell,
			Guard: g.Or(
				g.SlotEquals(d.FlagInquiryComplete, true),
				g.KeywordPresent("thank you", "thanks", "goodbye"),
			),
			Description: "inquiry answered"},
		Transition{From: d.StateInformationInquiry, To: d.StateIntentIdentification,
			Guard:       g.SlotEquals(d.FlagChangeIntent, true),
			Description: "caller wants something else"},

		// New reservation
		Transition{From: d.StateNewReservation, To: d.StateReservationConfirmation,
			Guard:       g.AllSet(d.ReservationSlots...),
			Description: "booking details complete"},
		Transition{From: d.StateNewReservation, To: d.StateFallback,
			Guard:       g.And(g.AttemptExceeds(5), g.Not(g.AllSet(d.ReservationSlots...))),
			Description: "booking details incomplete"},
		Transition{From: d.StateReservationConfirmation, To: d.StateFarewell,
			Guard:       g.SlotEquals(d.FlagReservationConfirmed, true),
			Description: "booking confirmed"},

		// Modify
		Transition{From: d.StateModifyReservation, To: d.StateFarewell,
			Guard:       g.SlotEquals(d.FlagModificationComplete, true),
			Description: "booking modified"},
		Transition{From: d.StateModifyReservation, To: d.StateFallback,
			Guard:       g.And(g.AttemptExceeds(5), g.Not(g.SlotSet(d.FlagModificationComplete))),
			Description: "modification stalled"},

		// Cancel
		Transition{From: d.StateCancelReservation, To: d.StateFarewell,
			Guard: g.Or(
				g.SlotEquals(d.FlagCancellationComplete, true),
				g.SlotEquals(d.SlotConfirmation, "yes"),
			),
			Description: "booking cancelled"},
		Transition{From: d.StateCancelReservation, To: d.StateFallback,
			Guard:       g.And(g.AttemptExceeds(3), g.Not(g.SlotSet(d.FlagCancellationComplete))),
			Description: "cancellation stalled"},

		// Fallback
		Transition{From: d.StateFallback, To: d.StateCityCollection,
			Guard: g.Or(
				g.SlotEquals(d.FlagRestart, true),
				g.KeywordPresent("start over", "restart"),
			),
			Description: "start over",
			Reset:       true},
		Transition{From: d.StateFallback, To: d.StateFarewell,
			Guard: g.Or(
				g.SlotEquals(d.FlagEndConversation, true),
				g.AttemptExceeds(2),
				g.KeywordPresent("goodbye", "bye"),
			),
			Description: "give up"},
	)
}
