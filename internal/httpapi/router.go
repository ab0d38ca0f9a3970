// Package httpapi assembles the service's HTTP surface.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ms-records/internal/apperr"
	"ms-records/internal/events/event_api"
	"ms-records/internal/logger"
	"ms-records/internal/users/user_api"
	"ms-records/internal/utils"
)

// Pinger reports whether storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Events *event_api.Handler
	Users  *user_api.Handler
	Health Pinger
	Logger *logger.Logger
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(deps.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(deps.Health, deps.Logger))

	r.Route("/api", func(r chi.Router) {
		deps.Events.RegisterRoutes(r)
		deps.Users.RegisterRoutes(r)
	})
	deps.Logger.Info("ROUTER", "Event and user routes registered under /api")

	return r
}

func healthz(db Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Warn("HEALTH", "Database ping failed: "+err.Error())
			utils.WriteJSON(w, http.StatusServiceUnavailable, apperr.As(err).Public())
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
