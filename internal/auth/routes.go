package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the authorization status route with the chi
// router. The route requires a valid access token so the response can
// include the caller's email.
func RegisterRoutes(r chi.Router, handler *StatusHandler, authMiddleware func(next http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Use(authMiddleware)

		// GET /api/v1/auth/status - storage authorization status
		r.Get("/status", handler.Status)
	})
}
