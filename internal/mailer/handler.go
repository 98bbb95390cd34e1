package mailer

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// Handler handles HTTP requests for the send pipeline and sent-mail
// listings. Every operation answers 200 with a structured result; the
// success flag lives in the body, matching the front-end contract.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// SendEmail handles POST /api/v1/emails/send
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, SendResult{
			Success: false,
			Message: "请求格式错误：" + err.Error(),
		})
		return
	}

	result := h.service.Send(r.Context(), &req)
	writeJSON(w, http.StatusOK, result)
}

// RecentEmails handles GET /api/v1/emails/recent
func (h *Handler) RecentEmails(w http.ResponseWriter, r *http.Request) {
	emails := h.service.RecentEmails(r.Context(), queryInt(r, "max"))
	writeJSON(w, http.StatusOK, emails)
}

// EmailLogs handles GET /api/v1/emails/logs
func (h *Handler) EmailLogs(w http.ResponseWriter, r *http.Request) {
	logs := h.service.Logs(r.Context(), queryInt(r, "max"))
	writeJSON(w, http.StatusOK, logs)
}

// queryInt parses an integer query parameter, zero when absent or bad.
func queryInt(r *http.Request, name string) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
