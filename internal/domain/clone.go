package domain

// Clone returns a deep copy of the snapshot. Mutations of the copy never
// reach the original.
func (s State) Clone() State {
	cloned := State{
		TeamName:         s.TeamName,
		CurrentReleaseID: s.CurrentReleaseID,
		CurrentSprintID:  s.CurrentSprintID,
	}
	if s.Team != nil {
		cloned.Team = cloneSlice(s.Team)
	}
	if s.Releases != nil {
		cloned.Releases = make(map[string]Release, len(s.Releases))
		for id, r := range s.Releases {
			cloned.Releases[id] = r.Clone()
		}
	}
	if s.Sprints != nil {
		cloned.Sprints = make(map[string]Sprint, len(s.Sprints))
		for id, sp := range s.Sprints {
			cloned.Sprints[id] = sp.Clone()
		}
	}
	return cloned
}

func (r Release) Clone() Release {
	if r.SprintIDs != nil {
		r.SprintIDs = cloneSlice(r.SprintIDs)
	}
	return r
}

func (s Sprint) Clone() Sprint {
	if s.Members != nil {
		s.Members = cloneSlice(s.Members)
	}
	if s.Backlog != nil {
		s.Backlog = cloneSlice(s.Backlog)
	}
	if s.JiraTickets != nil {
		tickets := make(map[string][]Ticket, len(s.JiraTickets))
		for memberID, list := range s.JiraTickets {
			if list == nil {
				tickets[memberID] = nil
				continue
			}
			tickets[memberID] = cloneSlice(list)
		}
		s.JiraTickets = tickets
	}
	return s
}

// cloneSlice copies a non-nil slice, keeping empty slices empty rather than
// nil.
func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// Normalize replaces nil slices and maps with empty ones, in place, so two
// structurally equal snapshots compare equal whichever codec produced them.
func (s *State) Normalize() {
	if s.Team == nil {
		s.Team = []TeamMember{}
	}
	if s.Releases == nil {
		s.Releases = map[string]Release{}
	}
	if s.Sprints == nil {
		s.Sprints = map[string]Sprint{}
	}
	for id, r := range s.Releases {
		if r.SprintIDs == nil {
			r.SprintIDs = []string{}
		}
		s.Releases[id] = r
	}
	for id, sp := range s.Sprints {
		sp.normalize()
		s.Sprints[id] = sp
	}
}

func (s *Sprint) normalize() {
	if s.Members == nil {
		s.Members = []SprintMember{}
	}
	if s.Backlog == nil {
		s.Backlog = []Ticket{}
	}
	if s.JiraTickets == nil {
		s.JiraTickets = map[string][]Ticket{}
	}
	for memberID, list := range s.JiraTickets {
		if list == nil {
			s.JiraTickets[memberID] = []Ticket{}
		}
	}
}
