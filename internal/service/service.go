package service

import (
	"context"
	"strings"
	"time"

	"github.com/bubelovv/sprint-planner/internal/domain"
	"github.com/bubelovv/sprint-planner/internal/store"
)

// Service validates user input and forwards it to the store. The store
// treats unknown targets as silent no-ops; the service reports them so the
// transport can answer with a proper status.
type Service struct {
	store          *store.Store
	trackerBaseURL string
	now            func() time.Time
}

func New(st *store.Store, trackerBaseURL string) *Service {
	return &Service{
		store:          st,
		trackerBaseURL: trackerBaseURL,
		now:            time.Now,
	}
}

func (s *Service) Ready() bool {
	return s.store.Ready()
}

func (s *Service) guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.store.Ready() {
		return ErrNotReady
	}
	return nil
}

func (s *Service) State(ctx context.Context) (domain.State, error) {
	if err := s.guard(ctx); err != nil {
		return domain.State{}, err
	}
	return s.store.Snapshot(), nil
}

func (s *Service) SetTeamName(ctx context.Context, name string) (string, error) {
	if err := s.guard(ctx); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if len([]rune(name)) > maxNameLength {
		return "", invalidf("team name is longer than %d characters", maxNameLength)
	}
	s.store.SetTeamName(name)
	return s.store.Snapshot().TeamName, nil
}

func (s *Service) ListTeam(ctx context.Context) ([]domain.TeamMember, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.store.Team(), nil
}

func (s *Service) AddTeamMember(ctx context.Context, in TeamMemberInput) (domain.TeamMember, error) {
	if err := s.guard(ctx); err != nil {
		return domain.TeamMember{}, err
	}
	name, err := cleanName("name", in.Name)
	if err != nil {
		return domain.TeamMember{}, err
	}
	capacity := defaultMemberCapacity
	if in.DefaultCapacity != nil {
		if err := checkAmount("defaultCapacity", *in.DefaultCapacity); err != nil {
			return domain.TeamMember{}, err
		}
		capacity = *in.DefaultCapacity
	}

	id := s.store.AddTeamMember(name, capacity)
	return s.teamMember(id)
}

func (s *Service) UpdateTeamMember(ctx context.Context, id string, patch domain.TeamMemberPatch) (domain.TeamMember, error) {
	if err := s.guard(ctx); err != nil {
		return domain.TeamMember{}, err
	}
	if patch.Name != nil {
		name, err := cleanName("name", *patch.Name)
		if err != nil {
			return domain.TeamMember{}, err
		}
		patch.Name = &name
	}
	if err := checkOptionalAmount("defaultCapacity", patch.DefaultCapacity); err != nil {
		return domain.TeamMember{}, err
	}

	s.store.UpdateTeamMember(id, patch)
	return s.teamMember(id)
}

func (s *Service) RemoveTeamMember(ctx context.Context, id string) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if !s.store.RemoveTeamMember(id) {
		return ErrTeamMemberNotFound
	}
	return nil
}

func (s *Service) teamMember(id string) (domain.TeamMember, error) {
	for _, m := range s.store.Team() {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.TeamMember{}, ErrTeamMemberNotFound
}

func (s *Service) ListReleases(ctx context.Context) ([]domain.Release, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.store.Releases(), nil
}

func (s *Service) CreateRelease(ctx context.Context, in ReleaseInput) (domain.Release, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Release{}, err
	}
	name, err := cleanName("name", in.Name)
	if err != nil {
		return domain.Release{}, err
	}
	if err := checkDates(in.StartDate, in.EndDate); err != nil {
		return domain.Release{}, err
	}

	id := s.store.CreateRelease(domain.NewRelease{Name: name, StartDate: in.StartDate, EndDate: in.EndDate})
	return s.release(id)
}

func (s *Service) UpdateRelease(ctx context.Context, id string, patch domain.ReleasePatch) (domain.Release, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Release{}, err
	}
	current, err := s.release(id)
	if err != nil {
		return domain.Release{}, err
	}
	if patch.Name != nil {
		name, err := cleanName("name", *patch.Name)
		if err != nil {
			return domain.Release{}, err
		}
		patch.Name = &name
	}
	next := patch.Apply(current)
	if err := checkDates(next.StartDate, next.EndDate); err != nil {
		return domain.Release{}, err
	}

	s.store.UpdateRelease(id, patch)
	return s.release(id)
}

func (s *Service) DeleteRelease(ctx context.Context, id string) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if !s.store.DeleteRelease(id) {
		return ErrReleaseNotFound
	}
	return nil
}

// SelectRelease makes the release current; an empty id clears the selection.
func (s *Service) SelectRelease(ctx context.Context, id string) (domain.State, error) {
	if err := s.guard(ctx); err != nil {
		return domain.State{}, err
	}
	if id != "" {
		if _, ok := s.store.Release(id); !ok {
			return domain.State{}, ErrReleaseNotFound
		}
	}
	s.store.SetCurrentRelease(id)
	return s.store.Snapshot(), nil
}

// SelectSprint makes the sprint current; an empty id clears the selection.
func (s *Service) SelectSprint(ctx context.Context, id string) (domain.State, error) {
	if err := s.guard(ctx); err != nil {
		return domain.State{}, err
	}
	if id != "" {
		if _, ok := s.store.Sprint(id); !ok {
			return domain.State{}, ErrSprintNotFound
		}
	}
	s.store.SetCurrentSprint(id)
	return s.store.Snapshot(), nil
}

func (s *Service) release(id string) (domain.Release, error) {
	r, ok := s.store.Release(id)
	if !ok {
		return domain.Release{}, ErrReleaseNotFound
	}
	return r, nil
}

func (s *Service) sprint(id string) (domain.Sprint, error) {
	sp, ok := s.store.Sprint(id)
	if !ok {
		return domain.Sprint{}, ErrSprintNotFound
	}
	return sp, nil
}
