package store

import (
	"strings"

	"github.com/bubelovv/sprint-planner/internal/domain"
)

func (s *Store) SetTeamName(name string) bool {
	return s.update("set_team_name", func(st *domain.State) bool {
		if st.TeamName == name {
			return false
		}
		st.TeamName = name
		return true
	})
}

// AddTeamMember appends a roster entry and returns its generated id, or ""
// when the store rejected the mutation.
func (s *Store) AddTeamMember(name string, defaultCapacity float64) string {
	id := s.newID()
	member := domain.TeamMember{
		ID:              id,
		Name:            strings.TrimSpace(name),
		DefaultCapacity: defaultCapacity,
	}
	ok := s.update("add_team_member", func(st *domain.State) bool {
		st.Team = append(st.Team, member)
		return true
	})
	if !ok {
		return ""
	}
	return id
}

// UpdateTeamMember edits the roster entry only. Sprint members copied from it
// keep their own values.
func (s *Store) UpdateTeamMember(id string, patch domain.TeamMemberPatch) bool {
	return s.update("update_team_member", func(st *domain.State) bool {
		for i, m := range st.Team {
			if m.ID == id {
				st.Team[i] = patch.Apply(m)
				return true
			}
		}
		return false
	})
}

// RemoveTeamMember drops the roster entry. Existing sprints still list the
// member and keep its tickets.
func (s *Store) RemoveTeamMember(id string) bool {
	return s.update("remove_team_member", func(st *domain.State) bool {
		for i, m := range st.Team {
			if m.ID == id {
				st.Team = append(st.Team[:i], st.Team[i+1:]...)
				return true
			}
		}
		return false
	})
}
