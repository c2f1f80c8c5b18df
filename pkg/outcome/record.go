package outcome

import (
	"strings"
	"time"
)

// Modality is the channel a conversation arrived on.
type Modality string

const (
	ModalityCall    Modality = "Call"
	ModalityChatbot Modality = "Chatbot"
)

// CallTimeLayout is the format of the Call Time column.
const CallTimeLayout = time.DateTime

// Columns is the header row of the call log.
var Columns = []string{
	"Modality",
	"Call Time",
	"Phone Number",
	"Call Outcome",
	"Booking Date",
	"Booking Time",
	"Customer Name",
	"Number of Guests",
	"Call Summary",
}

// Call is a finished conversation as reported by the platform or the chat widget.
type Call struct {
	Modality    Modality  `json:"modality" mapstructure:"modality"`
	PhoneNumber string    `json:"phone_number" mapstructure:"phone_number"`
	Transcript  string    `json:"transcript" mapstructure:"transcript"`
	At          time.Time `json:"at,omitempty" mapstructure:"-"`
}

// Record is one call-log row.
type Record struct {
	Modality     Modality `json:"modality"`
	CallTime     string   `json:"call_time"`
	PhoneNumber  string   `json:"phone_number"`
	Outcome      Outcome  `json:"outcome"`
	BookingDate  string   `json:"booking_date"`
	BookingTime  string   `json:"booking_time"`
	CustomerName string   `json:"customer_name"`
	Guests       string   `json:"guests"`
	Summary      string   `json:"summary"`
}

// NewRecord classifies call and extracts its booking details. The clock
// supplies the call time when the call carries none and anchors relative
// dates such as "tomorrow".
func NewRecord(call Call, clock func() time.Time) Record {
	if clock == nil {
		clock = time.Now
	}
	at := call.At
	if at.IsZero() {
		at = clock()
	}

	modality := call.Modality
	if modality == "" {
		modality = ModalityCall
	}
	phone := strings.TrimSpace(call.PhoneNumber)
	if phone == "" {
		phone = NA
	}

	rec := Record{
		Modality:     modality,
		CallTime:     at.Format(CallTimeLayout),
		PhoneNumber:  phone,
		Outcome:      Classify(call.Transcript),
		BookingDate:  ExtractDate(call.Transcript, at),
		BookingTime:  ExtractTime(call.Transcript),
		CustomerName: ExtractCustomerName(call.Transcript),
		Guests:       ExtractPartySize(call.Transcript),
	}
	rec.Summary = Summarize(call.Transcript, rec.Outcome, rec.BookingDate, rec.BookingTime, rec.Guests)
	return rec
}

// Row returns the record in column order.
func (r Record) Row() []string {
	return []string{
		string(r.Modality),
		r.CallTime,
		r.PhoneNumber,
		string(r.Outcome),
		r.BookingDate,
		r.BookingTime,
		r.CustomerName,
		r.Guests,
		r.Summary,
	}
}
