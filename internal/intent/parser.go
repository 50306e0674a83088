// Package intent classifies free-text booking requests into structured
// intents.  The parser is a stateless pure function; it performs no I/O
// and holds no session state, so the conversation layer owns all
// context between messages.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent kinds recognised by Parse.
const (
	KindShow    = "show"    // list available events
	KindBook    = "book"    // propose a booking ("book 2 tickets for jazz night")
	KindConfirm = "confirm" // confirm a pending booking ("yes book jazz night")
	KindGreet   = "greet"   // greeting ("hi", "hello", "hey")
	KindUnknown = "unknown" // anything else
)

// Intent is the structured result of parsing one message.  Event and
// Quantity are only populated for KindBook.
type Intent struct {
	Kind     string `json:"intent"`
	Event    string `json:"event"`
	Quantity int    `json:"quantity"`
}

// bookRe matches booking phrases: an optional quantity (digits or a
// number word), an optional "ticket(s)", then "for" and the event name.
//   "book 3 tickets for jazz night"  -> qty 3, event "jazz night"
//   "book two for blues"             -> qty 2, event "blues"
//   "book for jazz"                  -> qty 1, event "jazz"
var bookRe = regexp.MustCompile(`book\s*(\d+|one|two|three|four|five|six|seven|eight|nine|ten)?\s*(?:tickets?)?\s*for\s+(.+)$`)

// confirmRe matches confirmations: the message must start with "yes" and
// mention "book" later, so a bare "yes" does not trigger a purchase.
var confirmRe = regexp.MustCompile(`^yes\b.*\bbook\b`)

// greetRe matches greetings at the start of the message.
var greetRe = regexp.MustCompile(`^(hi|hello|hey)\b`)

// wordToNum converts spelled-out quantities to digits.
var wordToNum = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// Parse classifies a single user message.  Matching is case-insensitive
// and tolerant of surrounding whitespace.  A booking with no stated
// quantity defaults to one ticket.
func Parse(message string) Intent {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return Intent{Kind: KindUnknown}
	}

	// "show" and "event" anywhere in the message means a listing request.
	if strings.Contains(lower, "show") && strings.Contains(lower, "event") {
		return Intent{Kind: KindShow}
	}

	if m := bookRe.FindStringSubmatch(lower); m != nil {
		qty := 1
		if m[1] != "" {
			if n, ok := wordToNum[m[1]]; ok {
				qty = n
			} else if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				qty = n
			}
		}
		return Intent{
			Kind:     KindBook,
			Event:    strings.TrimSpace(m[2]),
			Quantity: qty,
		}
	}

	if confirmRe.MatchString(lower) {
		return Intent{Kind: KindConfirm}
	}

	if greetRe.MatchString(lower) {
		return Intent{Kind: KindGreet}
	}

	return Intent{Kind: KindUnknown}
}
