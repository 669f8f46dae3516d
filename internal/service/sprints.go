package service

import (
	"context"
	"fmt"

	"github.com/bubelovv/sprint-planner/internal/domain"
)

// CreateSprint captures the selected roster members as sprint members. A
// member's own default capacity wins over the sprint default when set.
func (s *Service) CreateSprint(ctx context.Context, in SprintInput) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if err := checkID("releaseId", in.ReleaseID); err != nil {
		return domain.Sprint{}, err
	}
	release, err := s.release(in.ReleaseID)
	if err != nil {
		return domain.Sprint{}, err
	}

	name := in.Name
	if name == "" {
		name = fmt.Sprintf("%s - Sprint %d", release.Name, len(s.store.ReleaseSprints(release.ID))+1)
	}
	if name, err = cleanName("name", name); err != nil {
		return domain.Sprint{}, err
	}
	if err := checkDates(in.StartDate, in.EndDate); err != nil {
		return domain.Sprint{}, err
	}

	capacity := defaultMemberCapacity
	if in.DefaultCapacity != nil {
		if err := checkAmount("defaultCapacity", *in.DefaultCapacity); err != nil {
			return domain.Sprint{}, err
		}
		capacity = *in.DefaultCapacity
	}
	reserve := defaultAdhocReserve
	if in.AdhocReserve != nil {
		if err := checkPercent("adhocReserve", *in.AdhocReserve); err != nil {
			return domain.Sprint{}, err
		}
		reserve = *in.AdhocReserve
	}
	if err := checkAmount("holidays", in.Holidays); err != nil {
		return domain.Sprint{}, err
	}

	members, err := s.sprintMembers(in, capacity)
	if err != nil {
		return domain.Sprint{}, err
	}

	id := s.store.CreateSprint(domain.NewSprint{
		ReleaseID:       release.ID,
		Name:            name,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		DefaultCapacity: capacity,
		AdhocReserve:    reserve,
		Members:         members,
	})
	if id == "" {
		return domain.Sprint{}, ErrReleaseNotFound
	}
	return s.sprint(id)
}

func (s *Service) sprintMembers(in SprintInput, sprintCapacity float64) ([]domain.SprintMember, error) {
	roster := s.store.Team()

	selected := in.Members
	if len(selected) == 0 {
		selected = make([]SprintMemberInput, 0, len(roster))
		for _, m := range roster {
			selected = append(selected, SprintMemberInput{ID: m.ID})
		}
	}
	if len(selected) == 0 {
		return nil, invalidf("a sprint needs at least one team member")
	}

	byID := make(map[string]domain.TeamMember, len(roster))
	for _, m := range roster {
		byID[m.ID] = m
	}

	members := make([]domain.SprintMember, 0, len(selected))
	for _, sel := range selected {
		tm, ok := byID[sel.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTeamMemberNotFound, sel.ID)
		}
		if err := checkAmount("leaves", sel.Leaves); err != nil {
			return nil, err
		}
		if err := checkAmount("nonJira", sel.NonJira); err != nil {
			return nil, err
		}

		capacity := tm.DefaultCapacity
		if capacity <= 0 {
			capacity = sprintCapacity
		}
		members = append(members, domain.SprintMember{
			ID:       tm.ID,
			Name:     tm.Name,
			Capacity: capacity,
			Leaves:   sel.Leaves,
			Holidays: in.Holidays,
			NonJira:  sel.NonJira,
		})
	}
	return members, nil
}

func (s *Service) GetSprint(ctx context.Context, id string) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	return s.sprint(id)
}

func (s *Service) ListReleaseSprints(ctx context.Context, releaseID string) ([]domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	if _, err := s.release(releaseID); err != nil {
		return nil, err
	}
	return s.store.ReleaseSprints(releaseID), nil
}

func (s *Service) UpdateSprint(ctx context.Context, id string, patch domain.SprintPatch) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	current, err := s.sprint(id)
	if err != nil {
		return domain.Sprint{}, err
	}
	if patch.Name != nil {
		name, err := cleanName("name", *patch.Name)
		if err != nil {
			return domain.Sprint{}, err
		}
		patch.Name = &name
	}
	if err := checkOptionalAmount("defaultCapacity", patch.DefaultCapacity); err != nil {
		return domain.Sprint{}, err
	}
	if patch.AdhocReserve != nil {
		if err := checkPercent("adhocReserve", *patch.AdhocReserve); err != nil {
			return domain.Sprint{}, err
		}
	}
	next := patch.Apply(current)
	if err := checkDates(next.StartDate, next.EndDate); err != nil {
		return domain.Sprint{}, err
	}

	s.store.UpdateSprint(id, patch)
	return s.sprint(id)
}

func (s *Service) DeleteSprint(ctx context.Context, id string) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if !s.store.DeleteSprint(id) {
		return ErrSprintNotFound
	}
	return nil
}

func (s *Service) AddSprintMember(ctx context.Context, sprintID, memberID string, seed domain.CapacitySeed) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if _, err := s.sprint(sprintID); err != nil {
		return domain.Sprint{}, err
	}
	if _, err := s.teamMember(memberID); err != nil {
		return domain.Sprint{}, err
	}
	for field, v := range map[string]float64{"leaves": seed.Leaves, "holidays": seed.Holidays, "nonJira": seed.NonJira} {
		if err := checkAmount(field, v); err != nil {
			return domain.Sprint{}, err
		}
	}

	s.store.AddMemberToSprint(sprintID, memberID, seed)
	return s.sprint(sprintID)
}

func (s *Service) UpdateSprintMember(ctx context.Context, sprintID, memberID string, patch domain.SprintMemberPatch) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	sp, err := s.sprint(sprintID)
	if err != nil {
		return domain.Sprint{}, err
	}
	if _, ok := sp.Member(memberID); !ok {
		return domain.Sprint{}, ErrSprintMemberNotFound
	}
	if patch.Name != nil {
		name, err := cleanName("name", *patch.Name)
		if err != nil {
			return domain.Sprint{}, err
		}
		patch.Name = &name
	}
	amounts := map[string]*float64{
		"capacity":        patch.Capacity,
		"leaves":          patch.Leaves,
		"unplannedLeaves": patch.UnplannedLeaves,
		"holidays":        patch.Holidays,
		"nonJira":         patch.NonJira,
	}
	for field, v := range amounts {
		if err := checkOptionalAmount(field, v); err != nil {
			return domain.Sprint{}, err
		}
	}

	s.store.UpdateSprintMember(sprintID, memberID, patch)
	return s.sprint(sprintID)
}

// RemoveSprintMember folds the member's tickets back into the backlog.
func (s *Service) RemoveSprintMember(ctx context.Context, sprintID, memberID string) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	sp, err := s.sprint(sprintID)
	if err != nil {
		return domain.Sprint{}, err
	}
	if _, ok := sp.Member(memberID); !ok {
		return domain.Sprint{}, ErrSprintMemberNotFound
	}

	s.store.RemoveMemberFromSprint(sprintID, memberID)
	return s.sprint(sprintID)
}
