package mailer

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the send pipeline routes with the chi router.
// All routes require authentication via auth middleware.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware func(next http.Handler) http.Handler) {
	r.Route("/emails", func(r chi.Router) {
		r.Use(authMiddleware)

		// POST /api/v1/emails/send - compose and dispatch an email
		r.Post("/send", handler.SendEmail)

		// GET /api/v1/emails/recent - recently sent messages
		r.Get("/recent", handler.RecentEmails)

		// GET /api/v1/emails/logs - bounded audit log of sent emails
		r.Get("/logs", handler.EmailLogs)
	})
}
