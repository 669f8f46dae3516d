package store

import (
	"github.com/bubelovv/sprint-planner/internal/domain"
)

// A ticket id lives in at most one place per sprint: the backlog or a single
// member list. Adds are ignored when the id is already placed anywhere in the
// sprint, including lists of departed members.

func (s *Store) AddToBacklog(sprintID string, ticket domain.Ticket) bool {
	return s.updateSprint("add_to_backlog", sprintID, func(sp *domain.Sprint) bool {
		if ticket.ID == "" || sp.HasTicket(ticket.ID) {
			return false
		}
		sp.Backlog = append(sp.Backlog, ticket)
		return true
	})
}

// UpdateBacklogTicket patches a backlog ticket in place.
func (s *Store) UpdateBacklogTicket(sprintID, ticketID string, patch domain.TicketPatch) bool {
	return s.updateSprint("update_backlog_ticket", sprintID, func(sp *domain.Sprint) bool {
		i := ticketIndex(sp.Backlog, ticketID)
		if i < 0 {
			return false
		}
		sp.Backlog[i] = patch.Apply(sp.Backlog[i])
		return true
	})
}

func (s *Store) RemoveFromBacklog(sprintID, ticketID string) bool {
	return s.updateSprint("remove_from_backlog", sprintID, func(sp *domain.Sprint) bool {
		var ok bool
		sp.Backlog, _, ok = takeTicket(sp.Backlog, ticketID)
		return ok
	})
}

// AssignTicket moves a backlog ticket, unchanged, to the end of a sprint
// member's list.
func (s *Store) AssignTicket(sprintID, ticketID, memberID string) bool {
	return s.updateSprint("assign_ticket", sprintID, func(sp *domain.Sprint) bool {
		if _, ok := sp.Member(memberID); !ok {
			return false
		}
		backlog, ticket, ok := takeTicket(sp.Backlog, ticketID)
		if !ok {
			return false
		}
		sp.Backlog = backlog
		sp.JiraTickets[memberID] = append(sp.JiraTickets[memberID], ticket)
		return true
	})
}

// UnassignTicket moves a member's ticket back to the backlog and clears its
// completed and adhoc flags. RemoveMemberFromSprint keeps them.
func (s *Store) UnassignTicket(sprintID, memberID, ticketID string) bool {
	return s.updateSprint("unassign_ticket", sprintID, func(sp *domain.Sprint) bool {
		list, ticket, ok := takeTicket(sp.JiraTickets[memberID], ticketID)
		if !ok {
			return false
		}
		sp.JiraTickets[memberID] = list
		ticket.Completed = false
		ticket.IsAdhoc = false
		sp.Backlog = append(sp.Backlog, ticket)
		return true
	})
}

func (s *Store) AddTicketToMember(sprintID, memberID string, ticket domain.Ticket) bool {
	return s.updateSprint("add_ticket_to_member", sprintID, func(sp *domain.Sprint) bool {
		if ticket.ID == "" || sp.HasTicket(ticket.ID) {
			return false
		}
		if _, ok := sp.Member(memberID); !ok {
			return false
		}
		sp.JiraTickets[memberID] = append(sp.JiraTickets[memberID], ticket)
		return true
	})
}

// UpdateTicket patches a ticket in a member's list in place.
func (s *Store) UpdateTicket(sprintID, memberID, ticketID string, patch domain.TicketPatch) bool {
	return s.updateMemberTicket("update_ticket", sprintID, memberID, ticketID, patch.Apply)
}

// RemoveTicketFromMember discards the ticket; it does not return to the
// backlog.
func (s *Store) RemoveTicketFromMember(sprintID, memberID, ticketID string) bool {
	return s.updateSprint("remove_ticket_from_member", sprintID, func(sp *domain.Sprint) bool {
		list, _, ok := takeTicket(sp.JiraTickets[memberID], ticketID)
		if !ok {
			return false
		}
		sp.JiraTickets[memberID] = list
		return true
	})
}

func (s *Store) ToggleTicketCompleted(sprintID, memberID, ticketID string) bool {
	return s.updateMemberTicket("toggle_ticket_completed", sprintID, memberID, ticketID, func(t domain.Ticket) domain.Ticket {
		t.Completed = !t.Completed
		return t
	})
}

func (s *Store) ToggleTicketAdhoc(sprintID, memberID, ticketID string) bool {
	return s.updateMemberTicket("toggle_ticket_adhoc", sprintID, memberID, ticketID, func(t domain.Ticket) domain.Ticket {
		t.IsAdhoc = !t.IsAdhoc
		return t
	})
}

func (s *Store) updateMemberTicket(op, sprintID, memberID, ticketID string, fn func(domain.Ticket) domain.Ticket) bool {
	return s.updateSprint(op, sprintID, func(sp *domain.Sprint) bool {
		list := sp.JiraTickets[memberID]
		i := ticketIndex(list, ticketID)
		if i < 0 {
			return false
		}
		list[i] = fn(list[i])
		return true
	})
}

func ticketIndex(tickets []domain.Ticket, id string) int {
	for i, t := range tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// takeTicket removes the ticket with id from the list and returns both.
func takeTicket(tickets []domain.Ticket, id string) ([]domain.Ticket, domain.Ticket, bool) {
	i := ticketIndex(tickets, id)
	if i < 0 {
		return tickets, domain.Ticket{}, false
	}
	ticket := tickets[i]
	return append(tickets[:i], tickets[i+1:]...), ticket, true
}
