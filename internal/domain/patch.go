package domain

// Patch types carry partial updates: nil fields are left untouched.

type TeamMemberPatch struct {
	Name            *string  `json:"name,omitempty"`
	DefaultCapacity *float64 `json:"defaultCapacity,omitempty"`
}

func (p TeamMemberPatch) Apply(m TeamMember) TeamMember {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.DefaultCapacity != nil {
		m.DefaultCapacity = *p.DefaultCapacity
	}
	return m
}

type ReleasePatch struct {
	Name      *string `json:"name,omitempty"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
}

func (p ReleasePatch) Apply(r Release) Release {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.StartDate != nil {
		r.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		r.EndDate = *p.EndDate
	}
	return r
}

type SprintPatch struct {
	Name            *string  `json:"name,omitempty"`
	StartDate       *string  `json:"startDate,omitempty"`
	EndDate         *string  `json:"endDate,omitempty"`
	DefaultCapacity *float64 `json:"defaultCapacity,omitempty"`
	AdhocReserve    *float64 `json:"adhocReserve,omitempty"`
}

func (p SprintPatch) Apply(s Sprint) Sprint {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.StartDate != nil {
		s.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		s.EndDate = *p.EndDate
	}
	if p.DefaultCapacity != nil {
		s.DefaultCapacity = *p.DefaultCapacity
	}
	if p.AdhocReserve != nil {
		s.AdhocReserve = *p.AdhocReserve
	}
	return s
}

type SprintMemberPatch struct {
	Name            *string  `json:"name,omitempty"`
	Capacity        *float64 `json:"capacity,omitempty"`
	Leaves          *float64 `json:"leaves,omitempty"`
	UnplannedLeaves *float64 `json:"unplannedLeaves,omitempty"`
	Holidays        *float64 `json:"holidays,omitempty"`
	NonJira         *float64 `json:"nonJira,omitempty"`
}

func (p SprintMemberPatch) Apply(m SprintMember) SprintMember {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Capacity != nil {
		m.Capacity = *p.Capacity
	}
	if p.Leaves != nil {
		m.Leaves = *p.Leaves
	}
	if p.UnplannedLeaves != nil {
		m.UnplannedLeaves = *p.UnplannedLeaves
	}
	if p.Holidays != nil {
		m.Holidays = *p.Holidays
	}
	if p.NonJira != nil {
		m.NonJira = *p.NonJira
	}
	return m
}

// TicketPatch never touches the ticket id.
type TicketPatch struct {
	Title     *string  `json:"title,omitempty"`
	SP        *float64 `json:"sp,omitempty"`
	IsAdhoc   *bool    `json:"isAdhoc,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
}

func (p TicketPatch) Apply(t Ticket) Ticket {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.SP != nil {
		t.SP = *p.SP
	}
	if p.IsAdhoc != nil {
		t.IsAdhoc = *p.IsAdhoc
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// CapacitySeed holds the optional leave inputs used when a team member joins
// a sprint after creation.
type CapacitySeed struct {
	Leaves   float64 `json:"leaves"`
	Holidays float64 `json:"holidays"`
	NonJira  float64 `json:"nonJira"`
}

// NewRelease is the input for creating a release.
type NewRelease struct {
	Name      string
	StartDate string
	EndDate   string
}

// NewSprint is the input for creating a sprint; Members are the captured
// sprint-member snapshots.
type NewSprint struct {
	ReleaseID       string
	Name            string
	StartDate       string
	EndDate         string
	DefaultCapacity float64
	AdhocReserve    float64
	Members         []SprintMember
}
