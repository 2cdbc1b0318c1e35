package aplapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"smtpapl/pkg/metrics"
	"smtpapl/pkg/middleware"
)

// Handler builds the HTTP handler with routes and middleware.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(), chimw.RealIP, middleware.Recover(a.log))

	r.Get("/healthz", a.healthz)
	r.Get("/readyz", a.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(a.registry))

	read := middleware.RequireScope(middleware.ScopeRead)
	write := middleware.RequireScope(middleware.ScopeWrite)
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(middleware.AdminAuth(a.auth, a.log))
		ar.With(read).Get("/auth", a.listAuth)
		ar.With(read).Get("/auth/lookup", a.lookupAuth)
		ar.With(write).Put("/auth", a.putAuth)
		ar.With(write).Delete("/auth", a.deleteAuth)
		ar.With(read).Get("/settings", a.getSettings)
		ar.With(write).Put("/settings", a.putSettings)
	})

	return r
}
