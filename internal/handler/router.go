package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	interviewHandler "github.com/shipwise/intake/internal/handler/interview"
	"github.com/shipwise/intake/internal/handler/watch"
	"github.com/shipwise/intake/internal/logging"
	middlewarePkg "github.com/shipwise/intake/internal/middleware"
	interviewService "github.com/shipwise/intake/internal/service/interview"
	"github.com/shipwise/intake/pkg/utils"
)

// NewRouter wires HTTP routes to the interview service.
func NewRouter(svc *interviewService.Service, log *logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		interviewHandler.New(svc, log).RegisterRoutes(api)
		watch.New(svc, log).RegisterRoutes(api)

		api.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status":    "ok",
				"interview": svc.Definition().Name,
			})
		})
	})

	return r
}
