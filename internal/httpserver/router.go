package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func newRouter(logger *zap.Logger, svc Service) http.Handler {
	h := &handler{
		svc:    svc,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(zapRequestLogger(logger))

	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
	r.Get("/storypoints", h.handleStoryPoints)

	r.Get("/state", h.handleState)
	r.Get("/export", h.handleExport)
	r.Post("/import", h.handleImport)

	r.Route("/team", func(r chi.Router) {
		r.Get("/", h.handleTeamList)
		r.Post("/", h.handleTeamAdd)
		r.Put("/name", h.handleTeamName)
		r.Patch("/{memberID}", h.handleTeamUpdate)
		r.Delete("/{memberID}", h.handleTeamRemove)
	})

	r.Route("/releases", func(r chi.Router) {
		r.Get("/", h.handleReleaseList)
		r.Post("/", h.handleReleaseCreate)
		r.Route("/{releaseID}", func(r chi.Router) {
			r.Get("/", h.handleReleaseGet)
			r.Patch("/", h.handleReleaseUpdate)
			r.Delete("/", h.handleReleaseDelete)
			r.Get("/sprints", h.handleReleaseSprints)
		})
	})

	r.Route("/current", func(r chi.Router) {
		r.Get("/release", h.handleCurrentReleaseGet)
		r.Put("/release", h.handleCurrentReleaseSet)
		r.Get("/sprint", h.handleCurrentSprintGet)
		r.Put("/sprint", h.handleCurrentSprintSet)
	})

	r.Route("/sprints", func(r chi.Router) {
		r.Post("/", h.handleSprintCreate)
		r.Route("/{sprintID}", func(r chi.Router) {
			r.Get("/", h.handleSprintGet)
			r.Patch("/", h.handleSprintUpdate)
			r.Delete("/", h.handleSprintDelete)

			r.Route("/backlog", func(r chi.Router) {
				r.Post("/", h.handleBacklogAdd)
				r.Patch("/{ticketID}", h.handleBacklogUpdate)
				r.Delete("/{ticketID}", h.handleBacklogRemove)
				r.Post("/{ticketID}/assign", h.handleBacklogAssign)
			})

			r.Route("/members", func(r chi.Router) {
				r.Post("/", h.handleSprintMemberAdd)
				r.Route("/{memberID}", func(r chi.Router) {
					r.Patch("/", h.handleSprintMemberUpdate)
					r.Delete("/", h.handleSprintMemberRemove)

					r.Post("/tickets", h.handleMemberTicketAdd)
					r.Patch("/tickets/{ticketID}", h.handleMemberTicketUpdate)
					r.Delete("/tickets/{ticketID}", h.handleMemberTicketRemove)
					r.Post("/tickets/{ticketID}/unassign", h.handleMemberTicketUnassign)
					r.Post("/tickets/{ticketID}/toggle-completed", h.handleMemberTicketToggleCompleted)
					r.Post("/tickets/{ticketID}/toggle-adhoc", h.handleMemberTicketToggleAdhoc)
				})
			})
		})
	})

	return r
}

func zapRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info(
				"http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
