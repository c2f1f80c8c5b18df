package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Slot names extracted from the caller.
const (
	SlotCity             = "city"
	SlotOutlet           = "outlet"
	SlotIntent           = "intent"
	SlotDate             = "date"
	SlotTime             = "time"
	SlotPartySize        = "party_size"
	SlotCustomerName     = "customer_name"
	SlotPhoneNumber      = "phone_number"
	SlotReservationDate  = "reservation_date"
	SlotModificationType = "modification_type"
	SlotNewDate          = "new_date"
	SlotNewTime          = "new_time"
	SlotNewPartySize     = "new_party_size"
	SlotConfirmation     = "confirmation"
)

// Control flags set by the platform when a sub-dialogue is done.
const (
	FlagInquiryComplete      = "inquiry_complete"
	FlagChangeIntent         = "change_intent"
	FlagReservationConfirmed = "reservation_confirmed"
	FlagModificationComplete = "modification_complete"
	FlagCancellationComplete = "cancellation_complete"
	FlagRestart              = "restart"
	FlagEndConversation      = "end_conversation"
)

// Intent values carried by SlotIntent.
const (
	IntentInquiry           = "inquiry"
	IntentNewReservation    = "new_reservation"
	IntentModifyReservation = "modify_reservation"
	IntentCancelReservation = "cancel_reservation"
)

// ReservationSlots must all be set before a booking can be confirmed.
var ReservationSlots = []string{SlotDate, SlotTime, SlotPartySize, SlotCustomerName, SlotPhoneNumber}

var knownSlots = []string{
	SlotCity, SlotOutlet, SlotIntent, SlotDate, SlotTime, SlotPartySize,
	SlotCustomerName, SlotPhoneNumber, SlotReservationDate, SlotModificationType,
	SlotNewDate, SlotNewTime, SlotNewPartySize, SlotConfirmation,
	FlagInquiryComplete, FlagChangeIntent, FlagReservationConfirmed,
	FlagModificationComplete, FlagCancellationComplete, FlagRestart, FlagEndConversation,
}

// KnownSlots returns every slot and flag name the machine understands.
func KnownSlots() []string {
	return slices.Clone(knownSlots)
}

// IsKnownSlot reports whether name is a slot or a control flag.
func IsKnownSlot(name string) bool {
	return slices.Contains(knownSlots, name)
}

// SlotContext holds the values collected during a conversation.
// A slot is "set" when it is present and not nil, "" or false.
type SlotContext map[string]any

// NewSlotContext copies initial into a fresh context, dropping unset values.
func NewSlotContext(initial map[string]any) SlotContext {
	sc := make(SlotContext, len(initial))
	sc.Merge(initial)
	return sc
}

// IsSet reports whether name holds a meaningful value.
func (sc SlotContext) IsSet(name string) bool {
	v, ok := sc[name]
	if !ok {
		return false
	}
	return isSetValue(v)
}

// Get returns the raw value for name.
func (sc SlotContext) Get(name string) (any, bool) {
	v, ok := sc[name]
	return v, ok
}

// String returns the value for name formatted as text, or "" when unset.
func (sc SlotContext) String(name string) string {
	if !sc.IsSet(name) {
		return ""
	}
	switch v := sc[name].(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Merge copies every set value from incoming. Unset incoming values never
// clear an existing slot.
func (sc SlotContext) Merge(incoming map[string]any) {
	for k, v := range incoming {
		if !isSetValue(v) {
			continue
		}
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		sc[k] = v
	}
}

// Reset clears every slot.
func (sc SlotContext) Reset() {
	clear(sc)
}

// Clone returns an independent copy.
func (sc SlotContext) Clone() SlotContext {
	if sc == nil {
		return SlotContext{}
	}
	return maps.Clone(sc)
}

// Missing returns the names from want that are not set, preserving order.
func (sc SlotContext) Missing(want ...string) []string {
	var out []string
	for _, name := range want {
		if !sc.IsSet(name) {
			out = append(out, name)
		}
	}
	return out
}

func isSetValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case bool:
		return t
	default:
		return true
	}
}
