package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bubelovv/sprint-planner/internal/domain"
	"github.com/bubelovv/sprint-planner/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxImportBytes = 8 << 20

type handler struct {
	svc    Service
	logger *zap.Logger
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !h.svc.Ready() {
		writeError(w, http.StatusServiceUnavailable, "NOT_READY", service.ErrNotReady.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *handler) handleStoryPoints(w http.ResponseWriter, r *http.Request) {
	var parts [3]float64
	for i, name := range []string{"days", "hours", "minutes"} {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeValidationError(w, fmt.Errorf("%s must be a number", name))
			return
		}
		parts[i] = v
	}

	sp, err := service.StoryPoints(parts[0], parts[1], parts[2])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"sp": sp})
}

func (h *handler) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.State(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := service.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	data, err := h.svc.Export(r.Context(), format)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sprint-planner.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	format, err := service.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeValidationError(w, err)
		return
	}

	state, err := h.svc.Import(r.Context(), data, format)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *handler) handleTeamName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	name, err := h.svc.SetTeamName(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"teamName": name})
}

func (h *handler) handleTeamList(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListTeam(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (h *handler) handleTeamAdd(w http.ResponseWriter, r *http.Request) {
	var req service.TeamMemberInput
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	member, err := h.svc.AddTeamMember(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"member": member})
}

func (h *handler) handleTeamUpdate(w http.ResponseWriter, r *http.Request) {
	var patch domain.TeamMemberPatch
	if err := decodeJSON(r.Context(), r.Body, &patch); err != nil {
		writeValidationError(w, err)
		return
	}

	member, err := h.svc.UpdateTeamMember(r.Context(), chi.URLParam(r, "memberID"), patch)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"member": member})
}

func (h *handler) handleTeamRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveTeamMember(r.Context(), chi.URLParam(r, "memberID")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleReleaseList(w http.ResponseWriter, r *http.Request) {
	releases, err := h.svc.ListReleases(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"releases": releases})
}

func (h *handler) handleReleaseCreate(w http.ResponseWriter, r *http.Request) {
	var req service.ReleaseInput
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	release, err := h.svc.CreateRelease(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"release": release})
}

func (h *handler) handleReleaseGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ReleaseView(r.Context(), chi.URLParam(r, "releaseID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) handleReleaseUpdate(w http.ResponseWriter, r *http.Request) {
	var patch domain.ReleasePatch
	if err := decodeJSON(r.Context(), r.Body, &patch); err != nil {
		writeValidationError(w, err)
		return
	}

	release, err := h.svc.UpdateRelease(r.Context(), chi.URLParam(r, "releaseID"), patch)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"release": release})
}

func (h *handler) handleReleaseDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRelease(r.Context(), chi.URLParam(r, "releaseID")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleReleaseSprints(w http.ResponseWriter, r *http.Request) {
	sprints, err := h.svc.ListReleaseSprints(r.Context(), chi.URLParam(r, "releaseID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sprints": sprints})
}

type selectRequest struct {
	ID string `json:"id"`
}

func (h *handler) handleCurrentReleaseGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.CurrentReleaseView(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) handleCurrentReleaseSet(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	state, err := h.svc.SelectRelease(r.Context(), strings.TrimSpace(req.ID))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selection(state))
}

func (h *handler) handleCurrentSprintGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.CurrentSprintView(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) handleCurrentSprintSet(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r.Context(), r.Body, &req); err != nil {
		writeValidationError(w, err)
		return
	}

	state, err := h.svc.SelectSprint(r.Context(), strings.TrimSpace(req.ID))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selection(state))
}

func selection(state domain.State) map[string]string {
	return map[string]string{
		"currentReleaseId": state.CurrentReleaseID,
		"currentSprintId":  state.CurrentSprintID,
	}
}

func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	status, code := mapServiceError(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.Error("service error", zap.Error(err))
	}
	writeError(w, status, code, err.Error())
}

func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, service.ErrTeamMemberNotFound),
		errors.Is(err, service.ErrReleaseNotFound),
		errors.Is(err, service.ErrSprintNotFound),
		errors.Is(err, service.ErrSprintMemberNotFound),
		errors.Is(err, service.ErrNoCurrentSelection):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrNotReady):
		return http.StatusServiceUnavailable, "NOT_READY"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func decodeJSON(_ context.Context, body io.ReadCloser, dst any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected extra JSON input")
		}
		return err
	}
	return nil
}

// writeJSON encodes before writing the status so an unencodable payload
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":{"code":"INTERNAL","message":"failed to encode response"}}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
}
