package outcome

import (
	"fmt"
	"strings"
)

// Summarize writes the one-line Call Summary column.
func Summarize(transcript string, o Outcome, date, clock, guests string) string {
	text := strings.ToLower(transcript)
	var topic string

	switch o {
	case Enquiry:
		switch {
		case strings.Contains(text, "menu"):
			topic = "the menu."
		case containsAny(text, []string{"hour", "time", "open"}):
			topic = "opening hours."
		case containsAny(text, []string{"address", "location"}):
			topic = "restaurant location."
		case strings.Contains(text, "parking"):
			topic = "parking facilities."
		default:
			topic = "general information."
		}
	case Availability:
		if date == NA || clock == NA {
			topic = "checking availability."
			break
		}
		topic = fmt.Sprintf("making a reservation for %s at %s", date, clock)
		if guests != NA {
			topic += fmt.Sprintf(" for %s guests.", guests)
		} else {
			topic += "."
		}
	case PostBooking:
		switch {
		case strings.Contains(text, "cancel"):
			topic = "cancelling a reservation."
		case containsAny(text, []string{"change", "modify", "update"}):
			topic = "modifying an existing reservation."
		default:
			topic = "an existing reservation."
		}
	default:
		topic = "a miscellaneous matter."
	}
	return "Customer called about " + topic
}
