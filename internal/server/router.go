package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"go-equation-solver/internal/handlers"
	"go-equation-solver/internal/observability"
	"go-equation-solver/internal/session"
	"go-equation-solver/internal/solver"
)

// Deps are the domain handlers and limits the router mounts.
type Deps struct {
	Solver   *solver.Handler
	Sessions *session.Handler

	// MaxBodyBytes caps every request body. Zero disables the limit.
	MaxBodyBytes int64
}

func NewRouter(deps Deps) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(middleware.Recoverer)
	if deps.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(deps.MaxBodyBytes))
	}

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	solver.RegisterRoutes(r, deps.Solver)
	session.RegisterRoutes(r, deps.Sessions)

	return r
}
