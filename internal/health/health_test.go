package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mailroomhq/mailroom/internal/properties"
)

func TestHealthDegradedWithoutStorage(t *testing.T) {
	handler := NewHandler(Config{
		Properties: properties.NewMemoryStore(),
		Version:    "test",
	})

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when storage is down", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", resp.Status)
	}
	if resp.Services["properties"].Status != "up" {
		t.Errorf("properties status = %q, want up", resp.Services["properties"].Status)
	}
	if resp.Services["storage"].Status != "down" {
		t.Errorf("storage status = %q, want down", resp.Services["storage"].Status)
	}
}

func TestReadinessFollowsSetReady(t *testing.T) {
	handler := NewHandler(Config{Properties: properties.NewMemoryStore()})

	rec := httptest.NewRecorder()
	handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 while ready", rec.Code)
	}

	handler.SetReady(false)
	rec = httptest.NewRecorder()
	handler.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 after SetReady(false)", rec.Code)
	}
}

func TestLiveness(t *testing.T) {
	handler := NewHandler(Config{})

	rec := httptest.NewRecorder()
	handler.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var resp LivenessResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Alive {
		t.Error("Alive = false")
	}
}
