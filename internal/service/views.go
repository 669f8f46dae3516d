package service

import (
	"context"

	"github.com/bubelovv/sprint-planner/internal/domain"
	"github.com/bubelovv/sprint-planner/internal/metrics"
)

type TicketView struct {
	domain.Ticket
	Kind        domain.TicketKind `json:"kind"`
	DisplayName string            `json:"displayName"`
	URL         string            `json:"url,omitempty"`
}

type MemberView struct {
	metrics.MemberMetrics
	Initials string       `json:"initials"`
	Tickets  []TicketView `json:"tickets"`
}

type SprintView struct {
	Sprint    domain.Sprint               `json:"sprint"`
	Metrics   metrics.SprintMetricsResult `json:"metrics"`
	Members   []MemberView                `json:"members"`
	Backlog   []TicketView                `json:"backlog"`
	BacklogSP float64                     `json:"backlogSp"`
}

type ReleaseView struct {
	Release domain.Release               `json:"release"`
	Metrics metrics.ReleaseMetricsResult `json:"metrics"`
}

func (s *Service) SprintView(ctx context.Context, id string) (SprintView, error) {
	if err := s.guard(ctx); err != nil {
		return SprintView{}, err
	}
	sp, err := s.sprint(id)
	if err != nil {
		return SprintView{}, err
	}
	return s.sprintView(sp), nil
}

// CurrentSprintView returns ErrNoCurrentSelection when no sprint of the
// current release is selected.
func (s *Service) CurrentSprintView(ctx context.Context) (SprintView, error) {
	if err := s.guard(ctx); err != nil {
		return SprintView{}, err
	}
	sp, ok := s.store.CurrentSprint()
	if !ok {
		return SprintView{}, ErrNoCurrentSelection
	}
	return s.sprintView(sp), nil
}

func (s *Service) ReleaseView(ctx context.Context, id string) (ReleaseView, error) {
	if err := s.guard(ctx); err != nil {
		return ReleaseView{}, err
	}
	r, err := s.release(id)
	if err != nil {
		return ReleaseView{}, err
	}
	return s.releaseView(r), nil
}

func (s *Service) CurrentReleaseView(ctx context.Context) (ReleaseView, error) {
	if err := s.guard(ctx); err != nil {
		return ReleaseView{}, err
	}
	r, ok := s.store.CurrentRelease()
	if !ok {
		return ReleaseView{}, ErrNoCurrentSelection
	}
	return s.releaseView(r), nil
}

func (s *Service) releaseView(r domain.Release) ReleaseView {
	sprints := make(map[string]domain.Sprint, len(r.SprintIDs))
	for _, sp := range s.store.ReleaseSprints(r.ID) {
		sprints[sp.ID] = sp
	}
	return ReleaseView{Release: r, Metrics: metrics.ReleaseMetrics(r, sprints)}
}

func (s *Service) sprintView(sp domain.Sprint) SprintView {
	rows := metrics.SprintMemberBreakdowns(sp)
	members := make([]MemberView, 0, len(rows))
	for _, row := range rows {
		members = append(members, MemberView{
			MemberMetrics: row,
			Initials:      domain.Initials(row.Name),
			Tickets:       s.ticketViews(sp.JiraTickets[row.MemberID]),
		})
	}

	return SprintView{
		Sprint:    sp,
		Metrics:   metrics.SprintMetrics(sp),
		Members:   members,
		Backlog:   s.ticketViews(sp.Backlog),
		BacklogSP: metrics.BacklogSP(sp),
	}
}

func (s *Service) ticketViews(tickets []domain.Ticket) []TicketView {
	views := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		v := TicketView{Ticket: t, Kind: t.Kind(), DisplayName: t.DisplayName()}
		if v.Kind == domain.TicketKindTracker {
			v.URL = domain.TrackerURL(s.trackerBaseURL, t.ID)
		}
		views = append(views, v)
	}
	return views
}

// StoryPoints converts a duration given in days, hours and minutes.
func StoryPoints(days, hours, minutes float64) (float64, error) {
	for field, v := range map[string]float64{"days": days, "hours": hours, "minutes": minutes} {
		if err := checkAmount(field, v); err != nil {
			return 0, err
		}
	}
	return domain.StoryPoints(days, hours, minutes), nil
}
