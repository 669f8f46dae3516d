package service

import "github.com/bubelovv/sprint-planner/internal/domain"

const (
	defaultMemberCapacity = 10.0
	defaultAdhocReserve   = 15.0
)

type TeamMemberInput struct {
	Name string `json:"name"`
	// DefaultCapacity falls back to 10 story points when omitted.
	DefaultCapacity *float64 `json:"defaultCapacity,omitempty"`
}

type ReleaseInput struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// SprintMemberInput selects a roster member for a new sprint along with the
// member's own leave figures.
type SprintMemberInput struct {
	ID      string  `json:"id"`
	Leaves  float64 `json:"leaves"`
	NonJira float64 `json:"nonJira"`
}

type SprintInput struct {
	ReleaseID string `json:"releaseId"`
	// Name defaults to "<release> - Sprint <n>".
	Name            string   `json:"name"`
	StartDate       string   `json:"startDate"`
	EndDate         string   `json:"endDate"`
	DefaultCapacity *float64 `json:"defaultCapacity,omitempty"`
	AdhocReserve    *float64 `json:"adhocReserve,omitempty"`
	// Holidays applies to every member.
	Holidays float64 `json:"holidays"`
	// Members defaults to the whole roster.
	Members []SprintMemberInput `json:"members"`
}

// TicketInput is raw user input: a tracker key (or a URL containing one) or
// free text used as the title.
type TicketInput struct {
	Input   string  `json:"input"`
	SP      float64 `json:"sp"`
	IsAdhoc bool    `json:"isAdhoc"`
	// Strict accepts only input that is exactly a tracker key.
	Strict bool `json:"strict"`
}

func (in TicketInput) ticket() (domain.Ticket, error) {
	if err := checkAmount("sp", in.SP); err != nil {
		return domain.Ticket{}, err
	}

	var (
		ticket domain.Ticket
		ok     bool
	)
	if in.Strict {
		var key string
		key, ok = domain.ParseStrictTicketID(in.Input)
		if !ok {
			return domain.Ticket{}, invalidf("%q is not a tracker key", in.Input)
		}
		ticket = domain.NewTrackerTicket(key, in.SP)
	} else {
		ticket, ok = domain.TicketFromInput(in.Input, in.SP)
		if !ok {
			return domain.Ticket{}, invalidf("ticket input is empty")
		}
	}
	ticket.IsAdhoc = in.IsAdhoc
	return ticket, nil
}
