package solver

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the solver endpoints under the /equations prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/equations", func(r chi.Router) {
		r.Post("/solve", h.Solve)
		r.Post("/batch", h.Batch)
		r.Post("/recognize", h.Recognize)
		r.Post("/scan", h.Scan)
	})
}
