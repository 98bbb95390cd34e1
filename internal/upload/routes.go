package upload

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers upload gateway routes with the chi router.
// All routes require authentication; the upload itself is additionally
// rate limited per user.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware, rateLimitMiddleware func(next http.Handler) http.Handler) {
	r.Route("/files", func(r chi.Router) {
		r.Use(authMiddleware)

		// POST /api/v1/files - upload a base64 payload into today's folder
		r.With(rateLimitMiddleware).Post("/", handler.Upload)

		// GET /api/v1/files/limits - size ceilings for the front-end
		r.Get("/limits", handler.Limits)
	})
}
