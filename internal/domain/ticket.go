package domain

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	trackerKeyPattern       = regexp.MustCompile(`[A-Z]+-\d+`)
	strictTrackerKeyPattern = regexp.MustCompile(`^[A-Z]+-\d+$`)
)

type TicketKind string

const (
	TicketKindTracker  TicketKind = "tracker"
	TicketKindFreeform TicketKind = "freeform"
	// TicketKindUntitled marks a ticket whose id is opaque and that carries no
	// title; it still needs one before it is displayable.
	TicketKindUntitled TicketKind = "untitled"
)

// Kind classifies the ticket for display. A title always wins over the id.
func (t Ticket) Kind() TicketKind {
	switch {
	case t.Title != "":
		return TicketKindFreeform
	case IsTrackerKey(t.ID):
		return TicketKindTracker
	default:
		return TicketKindUntitled
	}
}

// DisplayName is the title when present, the id otherwise.
func (t Ticket) DisplayName() string {
	if t.Title != "" {
		return t.Title
	}
	return t.ID
}

// NewTrackerTicket builds a ticket identified by a tracker key. The key is
// expected to be normalized already (see ParseTicketID).
func NewTrackerTicket(key string, sp float64) Ticket {
	return Ticket{ID: key, SP: sp}
}

// NewFreeformTicket builds a titled ticket with a generated opaque id.
func NewFreeformTicket(title string, sp float64) Ticket {
	return Ticket{ID: NewID(), Title: title, SP: sp}
}

// TicketFromInput turns raw user input into a ticket: an embedded tracker key
// becomes the id, anything else becomes the title. ok is false for blank input.
func TicketFromInput(input string, sp float64) (Ticket, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Ticket{}, false
	}
	if key, found := ParseTicketID(trimmed); found {
		return NewTrackerTicket(key, sp), true
	}
	return NewFreeformTicket(trimmed, sp), true
}

// ParseTicketID extracts the first tracker key (LETTERS-DIGITS) found anywhere
// in the trimmed, upper-cased input, so pasted issue URLs work too.
func ParseTicketID(input string) (string, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(input))
	if cleaned == "" {
		return "", false
	}
	key := trackerKeyPattern.FindString(cleaned)
	if key == "" {
		return "", false
	}
	return key, true
}

// ParseStrictTicketID accepts input only when all of it is a tracker key.
func ParseStrictTicketID(input string) (string, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(input))
	if !strictTrackerKeyPattern.MatchString(cleaned) {
		return "", false
	}
	return cleaned, true
}

func IsTrackerKey(id string) bool {
	return strictTrackerKeyPattern.MatchString(id)
}

// TrackerURL joins the tracker browse URL and a key.
func TrackerURL(baseURL, key string) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + key
}

// Initials returns up to two upper-cased leading letters of the name's words.
func Initials(name string) string {
	var b strings.Builder
	count := 0
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		count++
		if count == 2 {
			break
		}
	}
	return b.String()
}

// NewID returns a time-ordered UUIDv7 string: millisecond timestamp plus
// random bits, so ids minted in the same millisecond still differ.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Story points convention: 1 SP = 1 day = 8 hours = 480 minutes.
const (
	HoursPerStoryPoint   = 8
	MinutesPerStoryPoint = 480
)

func StoryPoints(days, hours, minutes float64) float64 {
	return days + hours/HoursPerStoryPoint + minutes/MinutesPerStoryPoint
}

func StoryPointsFromDuration(d time.Duration) float64 {
	return d.Minutes() / MinutesPerStoryPoint
}
