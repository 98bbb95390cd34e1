package template

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	appctx "github.com/mailroomhq/mailroom/internal/context"
)

// SaveRequest is the payload for creating a template.
type SaveRequest struct {
	Name    string `json:"name" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// Handler handles HTTP requests for template management
type Handler struct {
	store    *Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(store *Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

// Save handles POST /api/v1/templates
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := appctx.ExtractUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Result{Success: false, Message: "未登录"})
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, Result{Success: false, Message: "保存失败：" + err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusOK, Result{Success: false, Message: "保存失败：模板名称、主题和内容不能为空"})
		return
	}

	result := h.store.Save(r.Context(), userID, req.Name, req.Subject, req.Body)
	writeJSON(w, http.StatusOK, result)
}

// List handles GET /api/v1/templates
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := appctx.ExtractUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Result{Success: false, Message: "未登录"})
		return
	}

	templates, err := h.store.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list templates",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusOK, Result{Success: false, Message: "获取模板失败：" + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// Delete handles DELETE /api/v1/templates/{index}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := appctx.ExtractUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Result{Success: false, Message: "未登录"})
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusOK, Result{Success: false, Message: "模板不存在"})
		return
	}

	result := h.store.DeleteAt(r.Context(), userID, index)
	writeJSON(w, http.StatusOK, result)
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
