package service

import (
	"context"
	"strings"

	"github.com/bubelovv/sprint-planner/internal/domain"
)

// Ticket operations answer with the sprint after the change. Operations on a
// ticket id that is not where the caller expects it leave the sprint as is.

func (s *Service) AddToBacklog(ctx context.Context, sprintID string, in TicketInput) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if _, err := s.sprint(sprintID); err != nil {
		return domain.Sprint{}, err
	}
	ticket, err := in.ticket()
	if err != nil {
		return domain.Sprint{}, err
	}
	// Backlog tickets carry no adhoc flag; it is set once assigned.
	ticket.IsAdhoc = false

	s.store.AddToBacklog(sprintID, ticket)
	return s.sprint(sprintID)
}

func (s *Service) UpdateBacklogTicket(ctx context.Context, sprintID, ticketID string, patch domain.TicketPatch) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if _, err := s.sprint(sprintID); err != nil {
		return domain.Sprint{}, err
	}
	patch, err := cleanTicketPatch(ticketID, patch)
	if err != nil {
		return domain.Sprint{}, err
	}

	s.store.UpdateBacklogTicket(sprintID, ticketID, patch)
	return s.sprint(sprintID)
}

func (s *Service) RemoveFromBacklog(ctx context.Context, sprintID, ticketID string) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if _, err := s.sprint(sprintID); err != nil {
		return domain.Sprint{}, err
	}

	s.store.RemoveFromBacklog(sprintID, ticketID)
	return s.sprint(sprintID)
}

func (s *Service) AssignTicket(ctx context.Context, sprintID, ticketID, memberID string) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if err := s.requireSprintMember(sprintID, memberID); err != nil {
		return domain.Sprint{}, err
	}

	s.store.AssignTicket(sprintID, ticketID, memberID)
	return s.sprint(sprintID)
}

func (s *Service) UnassignTicket(ctx context.Context, sprintID, memberID, ticketID string) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if _, err := s.sprint(sprintID); err != nil {
		return domain.Sprint{}, err
	}

	s.store.UnassignTicket(sprintID, memberID, ticketID)
	return s.sprint(sprintID)
}

func (s *Service) AddTicketToMember(ctx context.Context, sprintID, memberID string, in TicketInput) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if err := s.requireSprintMember(sprintID, memberID); err != nil {
		return domain.Sprint{}, err
	}
	ticket, err := in.ticket()
	if err != nil {
		return domain.Sprint{}, err
	}

	s.store.AddTicketToMember(sprintID, memberID, ticket)
	return s.sprint(sprintID)
}

func (s *Service) UpdateTicket(ctx context.Context, sprintID, memberID, ticketID string, patch domain.TicketPatch) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if _, err := s.sprint(sprintID); err != nil {
		return domain.Sprint{}, err
	}
	patch, err := cleanTicketPatch(ticketID, patch)
	if err != nil {
		return domain.Sprint{}, err
	}

	s.store.UpdateTicket(sprintID, memberID, ticketID, patch)
	return s.sprint(sprintID)
}

func (s *Service) RemoveTicketFromMember(ctx context.Context, sprintID, memberID, ticketID string) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if _, err := s.sprint(sprintID); err != nil {
		return domain.Sprint{}, err
	}

	s.store.RemoveTicketFromMember(sprintID, memberID, ticketID)
	return s.sprint(sprintID)
}

func (s *Service) ToggleTicketCompleted(ctx context.Context, sprintID, memberID, ticketID string) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if _, err := s.sprint(sprintID); err != nil {
		return domain.Sprint{}, err
	}

	s.store.ToggleTicketCompleted(sprintID, memberID, ticketID)
	return s.sprint(sprintID)
}

func (s *Service) ToggleTicketAdhoc(ctx context.Context, sprintID, memberID, ticketID string) (domain.Sprint, error) {
	if err := s.guard(ctx); err != nil {
		return domain.Sprint{}, err
	}
	if _, err := s.sprint(sprintID); err != nil {
		return domain.Sprint{}, err
	}

	s.store.ToggleTicketAdhoc(sprintID, memberID, ticketID)
	return s.sprint(sprintID)
}

func (s *Service) requireSprintMember(sprintID, memberID string) error {
	sp, err := s.sprint(sprintID)
	if err != nil {
		return err
	}
	if _, ok := sp.Member(memberID); !ok {
		return ErrSprintMemberNotFound
	}
	return nil
}

// cleanTicketPatch trims the title and keeps non-tracker tickets titled.
func cleanTicketPatch(ticketID string, patch domain.TicketPatch) (domain.TicketPatch, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" && !domain.IsTrackerKey(ticketID) {
			return patch, invalidf("title is required for tickets without a tracker key")
		}
		patch.Title = &title
	}
	if err := checkOptionalAmount("sp", patch.SP); err != nil {
		return patch, err
	}
	return patch, nil
}
