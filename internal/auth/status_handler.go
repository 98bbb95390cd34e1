package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	appctx "github.com/mailroomhq/mailroom/internal/context"
	"github.com/mailroomhq/mailroom/internal/storage"
)

// StatusResponse reports whether the storage backend is accessible for
// the current session. When access is denied it carries the remediation
// URL where authorization can be granted.
type StatusResponse struct {
	Authorized bool   `json:"authorized"`
	Message    string `json:"message"`
	UserEmail  string `json:"userEmail,omitempty"`
	AuthURL    string `json:"authUrl,omitempty"`
}

// StatusHandler handles the storage authorization status check
type StatusHandler struct {
	storage *storage.Service
	logger  *slog.Logger
}

// NewStatusHandler creates a new StatusHandler instance
func NewStatusHandler(st *storage.Service, logger *slog.Logger) *StatusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusHandler{
		storage: st,
		logger:  logger,
	}
}

// Status handles GET /api/v1/auth/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{}

	if err := h.storage.CheckAccess(r.Context()); err != nil {
		h.logger.Warn("storage authorization check failed", slog.String("error", err.Error()))
		resp.Authorized = false
		resp.Message = "需要授权访问存储服务：" + err.Error()
		resp.AuthURL = h.storage.AuthURL()
	} else {
		resp.Authorized = true
		resp.Message = "已授权访问存储服务"
		if email, ok := appctx.ExtractEmail(r.Context()); ok {
			resp.UserEmail = email
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
