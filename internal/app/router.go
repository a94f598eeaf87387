package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fauves/fauves-server/internal/auth"
	"github.com/fauves/fauves-server/internal/credentials"
	"github.com/fauves/fauves-server/internal/events"
	"github.com/fauves/fauves-server/internal/observability"
	"github.com/fauves/fauves-server/internal/payments"
	"github.com/fauves/fauves-server/internal/rbac"
	"github.com/fauves/fauves-server/internal/tickets"
	"github.com/fauves/fauves-server/internal/users"
	"github.com/fauves/fauves-server/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Guard              rbac.Guard
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	EventsHandler      *events.Handler
	TicketsHandler     *tickets.Handler
	CredentialsHandler *credentials.Handler
	PaymentsHandler    *payments.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// gateway callback, no bearer token
	params.PaymentsHandler.MountWebhookRoutes(r)

	r.Route("/api/users", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)

		// authenticated surface, event-less routes check the global role
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Protect(rbac.RoleUser))
			params.UsersHandler.MountRoutes(r)
			params.CredentialsHandler.MountUserRoutes(r)
			params.PaymentsHandler.MountUserRoutes(r)
		})

		// event-scoped surfaces, role resolved against the event grant
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Protect(rbac.RoleObserver))
			params.EventsHandler.MountTeamRoutes(r)
			params.TicketsHandler.MountTeamRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Protect(rbac.RoleCheckin))
			params.CredentialsHandler.MountCheckinRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Protect(rbac.RoleAdmin))
			params.EventsHandler.MountAdminRoutes(r)
			params.TicketsHandler.MountAdminRoutes(r)
			params.CredentialsHandler.MountAdminRoutes(r)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
