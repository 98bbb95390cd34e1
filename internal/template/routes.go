package template

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers template management routes with the chi
// router. All routes require authentication via auth middleware.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware func(next http.Handler) http.Handler) {
	r.Route("/templates", func(r chi.Router) {
		r.Use(authMiddleware)

		// GET /api/v1/templates - list templates in insertion order
		r.Get("/", handler.List)

		// POST /api/v1/templates - save a new template
		r.Post("/", handler.Save)

		// DELETE /api/v1/templates/{index} - delete by position
		r.Delete("/{index}", handler.Delete)
	})
}
