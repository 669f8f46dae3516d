package store

import (
	"github.com/bubelovv/sprint-planner/internal/domain"
)

// CreateSprint adds a sprint to an existing release and selects it. Members
// are captured as given, each with an empty ticket list; duplicate member ids
// keep their first entry. It returns "" when the release does not exist.
func (s *Store) CreateSprint(in domain.NewSprint) string {
	id := s.newID()
	ok := s.update("create_sprint", func(st *domain.State) bool {
		release, ok := st.Releases[in.ReleaseID]
		if !ok {
			return false
		}

		sprint := domain.Sprint{
			ID:              id,
			ReleaseID:       in.ReleaseID,
			Name:            in.Name,
			StartDate:       in.StartDate,
			EndDate:         in.EndDate,
			DefaultCapacity: in.DefaultCapacity,
			AdhocReserve:    in.AdhocReserve,
			Members:         make([]domain.SprintMember, 0, len(in.Members)),
			Backlog:         []domain.Ticket{},
			JiraTickets:     make(map[string][]domain.Ticket, len(in.Members)),
		}
		for _, m := range in.Members {
			if m.ID == "" {
				continue
			}
			if _, dup := sprint.JiraTickets[m.ID]; dup {
				continue
			}
			sprint.Members = append(sprint.Members, m)
			sprint.JiraTickets[m.ID] = []domain.Ticket{}
		}

		st.Sprints[id] = sprint
		release.SprintIDs = append(release.SprintIDs, id)
		st.Releases[in.ReleaseID] = release
		st.CurrentSprintID = id
		return true
	})
	if !ok {
		return ""
	}
	return id
}

// UpdateSprint merges scalar sprint fields. Members and tickets have their
// own operations.
func (s *Store) UpdateSprint(id string, patch domain.SprintPatch) bool {
	return s.updateSprint("update_sprint", id, func(sp *domain.Sprint) bool {
		*sp = patch.Apply(*sp)
		return true
	})
}

// DeleteSprint removes the sprint and detaches it from its release.
func (s *Store) DeleteSprint(id string) bool {
	return s.update("delete_sprint", func(st *domain.State) bool {
		sprint, ok := st.Sprints[id]
		if !ok {
			return false
		}
		delete(st.Sprints, id)

		if release, ok := st.Releases[sprint.ReleaseID]; ok {
			release.SprintIDs = removeString(release.SprintIDs, id)
			st.Releases[sprint.ReleaseID] = release
		}
		if st.CurrentSprintID == id {
			st.CurrentSprintID = ""
		}
		return true
	})
}

// SetCurrentSprint selects an existing sprint; an empty id clears the
// selection.
func (s *Store) SetCurrentSprint(id string) bool {
	return s.update("set_current_sprint", func(st *domain.State) bool {
		if id != "" {
			if _, ok := st.Sprints[id]; !ok {
				return false
			}
		}
		if st.CurrentSprintID == id {
			return false
		}
		st.CurrentSprintID = id
		return true
	})
}

// AddMemberToSprint copies a roster member into the sprint with the sprint's
// default capacity and the seeded leave values. It is a no-op when the member
// is already in the sprint or not on the roster. A ticket list left over from
// an earlier membership is kept.
func (s *Store) AddMemberToSprint(sprintID, memberID string, seed domain.CapacitySeed) bool {
	return s.update("add_member_to_sprint", func(st *domain.State) bool {
		sprint, ok := st.Sprints[sprintID]
		if !ok {
			return false
		}
		if _, present := sprint.Member(memberID); present {
			return false
		}
		roster, ok := st.TeamMember(memberID)
		if !ok {
			return false
		}

		sprint.Members = append(sprint.Members, domain.SprintMember{
			ID:       roster.ID,
			Name:     roster.Name,
			Capacity: sprint.DefaultCapacity,
			Leaves:   seed.Leaves,
			Holidays: seed.Holidays,
			NonJira:  seed.NonJira,
		})
		if _, ok := sprint.JiraTickets[memberID]; !ok {
			sprint.JiraTickets[memberID] = []domain.Ticket{}
		}
		st.Sprints[sprintID] = sprint
		return true
	})
}

func (s *Store) UpdateSprintMember(sprintID, memberID string, patch domain.SprintMemberPatch) bool {
	return s.updateSprint("update_sprint_member", sprintID, func(sp *domain.Sprint) bool {
		for i, m := range sp.Members {
			if m.ID == memberID {
				sp.Members[i] = patch.Apply(m)
				return true
			}
		}
		return false
	})
}

// RemoveMemberFromSprint drops the member and moves their tickets to the
// backlog with completed and adhoc flags untouched.
func (s *Store) RemoveMemberFromSprint(sprintID, memberID string) bool {
	return s.updateSprint("remove_member_from_sprint", sprintID, func(sp *domain.Sprint) bool {
		idx := -1
		for i, m := range sp.Members {
			if m.ID == memberID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}

		sp.Members = append(sp.Members[:idx], sp.Members[idx+1:]...)
		sp.Backlog = append(sp.Backlog, sp.JiraTickets[memberID]...)
		delete(sp.JiraTickets, memberID)
		return true
	})
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
