// Package outcome turns a finished conversation transcript into a call-log
// record: an outcome category, best-effort booking details pulled out with
// regular expressions, and a one-line summary.
//
// Classification is a plain ordered keyword test and shares nothing with the
// conversation engine. Booking phrases are checked first, then post-booking
// phrases, then informational ones; anything else is Misc.
package outcome
