package httpserver

import (
	"context"

	"github.com/bubelovv/sprint-planner/internal/domain"
	"github.com/bubelovv/sprint-planner/internal/service"
)

type Service interface {
	Ready() bool
	State(ctx context.Context) (domain.State, error)
	Export(ctx context.Context, format service.Format) ([]byte, error)
	Import(ctx context.Context, data []byte, format service.Format) (domain.State, error)

	SetTeamName(ctx context.Context, name string) (string, error)
	ListTeam(ctx context.Context) ([]domain.TeamMember, error)
	AddTeamMember(ctx context.Context, in service.TeamMemberInput) (domain.TeamMember, error)
	UpdateTeamMember(ctx context.Context, id string, patch domain.TeamMemberPatch) (domain.TeamMember, error)
	RemoveTeamMember(ctx context.Context, id string) error

	ListReleases(ctx context.Context) ([]domain.Release, error)
	CreateRelease(ctx context.Context, in service.ReleaseInput) (domain.Release, error)
	ReleaseView(ctx context.Context, id string) (service.ReleaseView, error)
	UpdateRelease(ctx context.Context, id string, patch domain.ReleasePatch) (domain.Release, error)
	DeleteRelease(ctx context.Context, id string) error
	ListReleaseSprints(ctx context.Context, releaseID string) ([]domain.Sprint, error)

	SelectRelease(ctx context.Context, id string) (domain.State, error)
	SelectSprint(ctx context.Context, id string) (domain.State, error)
	CurrentReleaseView(ctx context.Context) (service.ReleaseView, error)
	CurrentSprintView(ctx context.Context) (service.SprintView, error)

	CreateSprint(ctx context.Context, in service.SprintInput) (domain.Sprint, error)
	SprintView(ctx context.Context, id string) (service.SprintView, error)
	UpdateSprint(ctx context.Context, id string, patch domain.SprintPatch) (domain.Sprint, error)
	DeleteSprint(ctx context.Context, id string) error
	AddSprintMember(ctx context.Context, sprintID, memberID string, seed domain.CapacitySeed) (domain.Sprint, error)
	UpdateSprintMember(ctx context.Context, sprintID, memberID string, patch domain.SprintMemberPatch) (domain.Sprint, error)
	RemoveSprintMember(ctx context.Context, sprintID, memberID string) (domain.Sprint, error)

	AddToBacklog(ctx context.Context, sprintID string, in service.TicketInput) (domain.Sprint, error)
	UpdateBacklogTicket(ctx context.Context, sprintID, ticketID string, patch domain.TicketPatch) (domain.Sprint, error)
	RemoveFromBacklog(ctx context.Context, sprintID, ticketID string) (domain.Sprint, error)
	AssignTicket(ctx context.Context, sprintID, ticketID, memberID string) (domain.Sprint, error)
	UnassignTicket(ctx context.Context, sprintID, memberID, ticketID string) (domain.Sprint, error)
	AddTicketToMember(ctx context.Context, sprintID, memberID string, in service.TicketInput) (domain.Sprint, error)
	UpdateTicket(ctx context.Context, sprintID, memberID, ticketID string, patch domain.TicketPatch) (domain.Sprint, error)
	RemoveTicketFromMember(ctx context.Context, sprintID, memberID, ticketID string) (domain.Sprint, error)
	ToggleTicketCompleted(ctx context.Context, sprintID, memberID, ticketID string) (domain.Sprint, error)
	ToggleTicketAdhoc(ctx context.Context, sprintID, memberID, ticketID string) (domain.Sprint, error)
}
