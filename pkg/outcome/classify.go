package outcome

import "strings"

// Outcome is the reporting category of a finished conversation.
type Outcome string

const (
	Enquiry      Outcome = "Enquiry"
	Availability Outcome = "Availability"
	PostBooking  Outcome = "Post-Booking"
	Misc         Outcome = "Misc."
)

func (o Outcome) String() string { return string(o) }

// Keyword sets, checked in declaration order.
var (
	BookingKeywords     = []string{"book", "table", "available", "reserve", "make a reservation", "new reservation"}
	PostBookingKeywords = []string{"change", "modify", "cancel", "update", "existing"}
	EnquiryKeywords     = []string{"menu", "hour", "time", "open", "address", "location", "parking"}
)

// Classify returns the outcome category for transcript.
func Classify(transcript string) Outcome {
	text := strings.ToLower(transcript)
	switch {
	case containsAny(text, BookingKeywords):
		return Availability
	case containsAny(text, PostBookingKeywords):
		return PostBooking
	case containsAny(text, EnquiryKeywords):
		return Enquiry
	default:
		return Misc
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
