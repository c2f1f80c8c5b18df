package outcome

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NA marks a value that could not be found in the transcript.
const NA = "NA"

var (
	isoDate   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDate = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)

	meridiemTime = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clockTime    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)

	partySize = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bfor\s+(\d+)\s+(?:people|persons?)\b`),
		regexp.MustCompile(`(?i)\bparty\s+of\s+(\d+)\b`),
		regexp.MustCompile(`(?i)\b(\d+)\s+guests\b`),
		regexp.MustCompile(`(?i)\b(\d+)\s+(?:people|persons?)\b`),
		regexp.MustCompile(`(?i)\btable\s+for\s+(\d+)\b`),
		regexp.MustCompile(`(?i)\bbooking\s+for\s+(\d+)\b`),
	}

	customerName = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmy name is ([a-z]+)`),
		regexp.MustCompile(`(?i)\bname's ([a-z]+)`),
		regexp.MustCompile(`(?i)\bname is ([a-z]+)`),
		regexp.MustCompile(`(?i)\bthis is ([a-z]+)`),
		regexp.MustCompile(`(?i)\bi am ([a-z]+)`),
		regexp.MustCompile(`(?i)\bi'm ([a-z]+)`),
	}

	// Words that follow "I am" / "I'm" far more often than a name does.
	notNames = map[string]bool{
		"a": true, "an": true, "the": true, "not": true, "just": true,
		"calling": true, "looking": true, "going": true, "trying": true,
		"interested": true, "here": true, "planning": true, "sorry": true,
		"fine": true, "good": true, "okay": true, "ok": true, "wondering": true,
	}
)

// ExtractDate finds a booking date and returns it as YYYY-MM-DD. Day-first
// slash dates are converted. "today" and "tomorrow" resolve against now.
func ExtractDate(transcript string, now time.Time) string {
	if m := isoDate.FindString(transcript); m != "" {
		return m
	}
	if m := slashDate.FindStringSubmatch(transcript); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
	}

	lower := strings.ToLower(transcript)
	switch {
	case strings.Contains(lower, "today"):
		return now.Format(time.DateOnly)
	case strings.Contains(lower, "tomorrow"):
		return now.AddDate(0, 0, 1).Format(time.DateOnly)
	}
	return NA
}

// ExtractTime finds a booking time and returns it as 24-hour HH:MM.
func ExtractTime(transcript string) string {
	if m := meridiemTime.FindStringSubmatch(transcript); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		switch pm := strings.EqualFold(m[3], "pm"); {
		case pm && hour < 12:
			hour += 12
		case !pm && hour == 12:
			hour = 0
		}
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}
	if m := clockTime.FindStringSubmatch(transcript); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s", hour, m[2])
	}
	return NA
}

// ExtractPartySize finds the number of guests.
func ExtractPartySize(transcript string) string {
	for _, re := range partySize {
		if m := re.FindStringSubmatch(transcript); m != nil {
			return m[1]
		}
	}
	return NA
}

// ExtractCustomerName finds a self-introduced first name.
func ExtractCustomerName(transcript string) string {
	for _, re := range customerName {
		for _, m := range re.FindAllStringSubmatch(transcript, -1) {
			name := strings.ToLower(m[1])
			if notNames[name] {
				continue
			}
			return strings.ToUpper(name[:1]) + name[1:]
		}
	}
	return NA
}
