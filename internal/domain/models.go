package domain

type TeamMember struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	DefaultCapacity float64 `json:"defaultCapacity" yaml:"defaultCapacity"`
}

// SprintMember is a per-sprint copy of a team member's capacity inputs.
// It outlives the roster entry it was created from.
type SprintMember struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Capacity        float64 `json:"capacity" yaml:"capacity"`
	Leaves          float64 `json:"leaves" yaml:"leaves"`
	UnplannedLeaves float64 `json:"unplannedLeaves" yaml:"unplannedLeaves"`
	Holidays        float64 `json:"holidays" yaml:"holidays"`
	NonJira         float64 `json:"nonJira" yaml:"nonJira"`
}

type Ticket struct {
	ID        string  `json:"id" yaml:"id"`
	Title     string  `json:"title,omitempty" yaml:"title,omitempty"`
	SP        float64 `json:"sp" yaml:"sp"`
	IsAdhoc   bool    `json:"isAdhoc,omitempty" yaml:"isAdhoc,omitempty"`
	Completed bool    `json:"completed,omitempty" yaml:"completed,omitempty"`
}

type Sprint struct {
	ID              string              `json:"id" yaml:"id"`
	ReleaseID       string              `json:"releaseId" yaml:"releaseId"`
	Name            string              `json:"name" yaml:"name"`
	StartDate       string              `json:"startDate" yaml:"startDate"`
	EndDate         string              `json:"endDate" yaml:"endDate"`
	DefaultCapacity float64             `json:"defaultCapacity" yaml:"defaultCapacity"`
	AdhocReserve    float64             `json:"adhocReserve" yaml:"adhocReserve"`
	Members         []SprintMember      `json:"members" yaml:"members"`
	Backlog         []Ticket            `json:"backlog" yaml:"backlog"`
	JiraTickets     map[string][]Ticket `json:"jiraTickets" yaml:"jiraTickets"`
}

// Member returns the sprint member with the given id.
func (s Sprint) Member(id string) (SprintMember, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return SprintMember{}, false
}

// HasTicket reports whether a ticket with the id is placed anywhere in the
// sprint: the backlog or any member list, stale lists included.
func (s Sprint) HasTicket(id string) bool {
	if indexOfTicket(s.Backlog, id) >= 0 {
		return true
	}
	for _, tickets := range s.JiraTickets {
		if indexOfTicket(tickets, id) >= 0 {
			return true
		}
	}
	return false
}

type Release struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	StartDate string   `json:"startDate" yaml:"startDate"`
	EndDate   string   `json:"endDate" yaml:"endDate"`
	SprintIDs []string `json:"sprintIds" yaml:"sprintIds"`
}

// HasSprint reports whether sprintID is listed in the release.
func (r Release) HasSprint(sprintID string) bool {
	if sprintID == "" {
		return false
	}
	for _, id := range r.SprintIDs {
		if id == sprintID {
			return true
		}
	}
	return false
}

// State is the full planner snapshot. Empty CurrentReleaseID/CurrentSprintID
// mean no selection.
type State struct {
	TeamName         string             `json:"teamName" yaml:"teamName"`
	Team             []TeamMember       `json:"team" yaml:"team"`
	Releases         map[string]Release `json:"releases" yaml:"releases"`
	Sprints          map[string]Sprint  `json:"sprints" yaml:"sprints"`
	CurrentReleaseID string             `json:"currentReleaseId,omitempty" yaml:"currentReleaseId,omitempty"`
	CurrentSprintID  string             `json:"currentSprintId,omitempty" yaml:"currentSprintId,omitempty"`
}

// EmptyState returns the structurally empty default snapshot.
func EmptyState() State {
	return State{
		Team:     []TeamMember{},
		Releases: map[string]Release{},
		Sprints:  map[string]Sprint{},
	}
}

func (s State) TeamMember(id string) (TeamMember, bool) {
	for _, m := range s.Team {
		if m.ID == id {
			return m, true
		}
	}
	return TeamMember{}, false
}

// ReleaseSprints resolves the release's sprint ids in order, dropping ids
// with no matching sprint.
func (s State) ReleaseSprints(releaseID string) []Sprint {
	release, ok := s.Releases[releaseID]
	if !ok {
		return []Sprint{}
	}
	return ResolveSprints(release, s.Sprints)
}

// ResolveSprints maps release.SprintIDs to sprints, silently skipping
// dangling ids.
func ResolveSprints(release Release, sprints map[string]Sprint) []Sprint {
	result := make([]Sprint, 0, len(release.SprintIDs))
	for _, id := range release.SprintIDs {
		if sprint, ok := sprints[id]; ok {
			result = append(result, sprint)
		}
	}
	return result
}

func indexOfTicket(tickets []Ticket, id string) int {
	for i, t := range tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}
