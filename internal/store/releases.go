package store

import (
	"github.com/bubelovv/sprint-planner/internal/domain"
)

// CreateRelease stores a release with no sprints and selects it. The sprint
// selection is left as is; it reads as unset until the new release lists it.
// It returns the new id, or "" when the store rejected the mutation.
func (s *Store) CreateRelease(in domain.NewRelease) string {
	id := s.newID()
	ok := s.update("create_release", func(st *domain.State) bool {
		st.Releases[id] = domain.Release{
			ID:        id,
			Name:      in.Name,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			SprintIDs: []string{},
		}
		st.CurrentReleaseID = id
		return true
	})
	if !ok {
		return ""
	}
	return id
}

func (s *Store) UpdateRelease(id string, patch domain.ReleasePatch) bool {
	return s.update("update_release", func(st *domain.State) bool {
		r, ok := st.Releases[id]
		if !ok {
			return false
		}
		st.Releases[id] = patch.Apply(r)
		return true
	})
}

// DeleteRelease removes the release and every sprint it lists. Selections
// pointing at removed entities are cleared.
func (s *Store) DeleteRelease(id string) bool {
	return s.update("delete_release", func(st *domain.State) bool {
		r, ok := st.Releases[id]
		if !ok {
			return false
		}
		for _, sprintID := range r.SprintIDs {
			delete(st.Sprints, sprintID)
			if st.CurrentSprintID == sprintID {
				st.CurrentSprintID = ""
			}
		}
		delete(st.Releases, id)
		if st.CurrentReleaseID == id {
			st.CurrentReleaseID = ""
		}
		return true
	})
}

// SetCurrentRelease selects a release. The current sprint stays selected when
// the release lists it, otherwise the release's first sprint (or none) is
// selected. An empty id clears both selections; an unknown id is ignored.
func (s *Store) SetCurrentRelease(id string) bool {
	return s.update("set_current_release", func(st *domain.State) bool {
		if id == "" {
			if st.CurrentReleaseID == "" && st.CurrentSprintID == "" {
				return false
			}
			st.CurrentReleaseID = ""
			st.CurrentSprintID = ""
			return true
		}

		r, ok := st.Releases[id]
		if !ok {
			return false
		}
		sprintID := st.CurrentSprintID
		if !r.HasSprint(sprintID) {
			sprintID = ""
			if len(r.SprintIDs) > 0 {
				sprintID = r.SprintIDs[0]
			}
		}
		if st.CurrentReleaseID == id && st.CurrentSprintID == sprintID {
			return false
		}
		st.CurrentReleaseID = id
		st.CurrentSprintID = sprintID
		return true
	})
}
