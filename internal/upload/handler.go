package upload

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Request is the payload for uploading one file.
type Request struct {
	FileName string `json:"fileName" validate:"required"`
	Data     string `json:"data" validate:"required"` // base64 payload
	MimeType string `json:"mimeType"`
}

// Handler handles HTTP requests for the upload gateway
type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// Upload handles POST /api/v1/files
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, Result{Success: false, Message: "文件上传失败：" + err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusOK, Result{Success: false, Message: "文件上传失败：文件名和文件内容不能为空"})
		return
	}

	result := h.service.Upload(r.Context(), req.FileName, req.Data, req.MimeType)
	writeJSON(w, http.StatusOK, result)
}

// Limits handles GET /api/v1/files/limits
func (h *Handler) Limits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.GetLimits())
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
