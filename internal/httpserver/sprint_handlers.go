package httpserver

import (
	"context"
	"net/http"

	"github.com/bubelovv/sprint-planner/internal/domain"
	"github.com/bubelovv/sprint-planner/internal/service"
	"github.com/go-chi/chi/v5"
)

func (h *handler) handleSprintCreate(w http.ResponseWriter, r *http.Request) {
	var req service.SprintInput
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	sp, err := h.svc.CreateSprint(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sprint": sp})
}

func (h *handler) handleSprintGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.SprintView(r.Context(), chi.URLParam(r, "sprintID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) handleSprintUpdate(w http.ResponseWriter, r *http.Request) {
	var patch domain.SprintPatch
	if err := decodeJSON(r.Context(), r.Body, &patch); err != nil {
		writeValidationError(w, err)
		return
	}
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.UpdateSprint(ctx, sprintID, patch)
	})
}

func (h *handler) handleSprintDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSprint(r.Context(), chi.URLParam(r, "sprintID")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleSprintMemberAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string  `json:"memberId"`
		Leaves   float64 `json:"leaves"`
		Holidays float64 `json:"holidays"`
		NonJira  float64 `json:"nonJira"`
	}
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}
	seed := domain.CapacitySeed{Leaves: req.Leaves, Holidays: req.Holidays, NonJira: req.NonJira}
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.AddSprintMember(ctx, sprintID, req.MemberID, seed)
	})
}

func (h *handler) handleSprintMemberUpdate(w http.ResponseWriter, r *http.Request) {
	var patch domain.SprintMemberPatch
	if err := decodeJSON(r.Context(), r.Body, &patch); err != nil {
		writeValidationError(w, err)
		return
	}
	memberID := chi.URLParam(r, "memberID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.UpdateSprintMember(ctx, sprintID, memberID, patch)
	})
}

func (h *handler) handleSprintMemberRemove(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.RemoveSprintMember(ctx, sprintID, memberID)
	})
}

func (h *handler) handleBacklogAdd(w http.ResponseWriter, r *http.Request) {
	var req service.TicketInput
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.AddToBacklog(ctx, sprintID, req)
	})
}

func (h *handler) handleBacklogUpdate(w http.ResponseWriter, r *http.Request) {
	var patch domain.TicketPatch
	if err := decodeJSON(r.Context(), r.Body, &patch); err != nil {
		writeValidationError(w, err)
		return
	}
	ticketID := chi.URLParam(r, "ticketID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.UpdateBacklogTicket(ctx, sprintID, ticketID, patch)
	})
}

func (h *handler) handleBacklogRemove(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.RemoveFromBacklog(ctx, sprintID, ticketID)
	})
}

func (h *handler) handleBacklogAssign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"memberId"`
	}
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}
	ticketID := chi.URLParam(r, "ticketID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.AssignTicket(ctx, sprintID, ticketID, req.MemberID)
	})
}

func (h *handler) handleMemberTicketAdd(w http.ResponseWriter, r *http.Request) {
	var req service.TicketInput
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}
	memberID := chi.URLParam(r, "memberID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.AddTicketToMember(ctx, sprintID, memberID, req)
	})
}

func (h *handler) handleMemberTicketUpdate(w http.ResponseWriter, r *http.Request) {
	var patch domain.TicketPatch
	if err := decodeJSON(r.Context(), r.Body, &patch); err != nil {
		writeValidationError(w, err)
		return
	}
	memberID, ticketID := chi.URLParam(r, "memberID"), chi.URLParam(r, "ticketID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.UpdateTicket(ctx, sprintID, memberID, ticketID, patch)
	})
}

func (h *handler) handleMemberTicketRemove(w http.ResponseWriter, r *http.Request) {
	memberID, ticketID := chi.URLParam(r, "memberID"), chi.URLParam(r, "ticketID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.RemoveTicketFromMember(ctx, sprintID, memberID, ticketID)
	})
}

func (h *handler) handleMemberTicketUnassign(w http.ResponseWriter, r *http.Request) {
	memberID, ticketID := chi.URLParam(r, "memberID"), chi.URLParam(r, "ticketID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.UnassignTicket(ctx, sprintID, memberID, ticketID)
	})
}

func (h *handler) handleMemberTicketToggleCompleted(w http.ResponseWriter, r *http.Request) {
	memberID, ticketID := chi.URLParam(r, "memberID"), chi.URLParam(r, "ticketID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.ToggleTicketCompleted(ctx, sprintID, memberID, ticketID)
	})
}

func (h *handler) handleMemberTicketToggleAdhoc(w http.ResponseWriter, r *http.Request) {
	memberID, ticketID := chi.URLParam(r, "memberID"), chi.URLParam(r, "ticketID")
	h.respondSprint(w, r, func(ctx context.Context, sprintID string) (domain.Sprint, error) {
		return h.svc.ToggleTicketAdhoc(ctx, sprintID, memberID, ticketID)
	})
}

// respondSprint runs a sprint mutation and answers with the refreshed view.
func (h *handler) respondSprint(w http.ResponseWriter, r *http.Request, mutate func(context.Context, string) (domain.Sprint, error)) {
	sprintID := chi.URLParam(r, "sprintID")
	if _, err := mutate(r.Context(), sprintID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	view, err := h.svc.SprintView(r.Context(), sprintID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
