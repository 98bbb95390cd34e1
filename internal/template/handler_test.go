package template

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	appctx "github.com/mailroomhq/mailroom/internal/context"
	"github.com/mailroomhq/mailroom/internal/properties"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Store) {
	t.Helper()
	store := New(properties.NewMemoryStore(), nil)
	handler := NewHandler(store, nil)

	// Fixed identity in place of the token middleware.
	identity := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), appctx.UserIDKey, "user-1")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	RegisterRoutes(r, handler, identity)
	return r, store
}

func TestSaveHandler(t *testing.T) {
	router, store := newTestRouter(t)

	body := `{"name":"greeting","subject":"Hi","body":"Hello!"}`
	req := httptest.NewRequest(http.MethodPost, "/templates", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Success || result.Message != "模板保存成功" {
		t.Errorf("result = %+v", result)
	}

	templates, _ := store.List(context.Background(), "user-1")
	if len(templates) != 1 || templates[0].Name != "greeting" {
		t.Errorf("stored templates = %+v", templates)
	}
}

func TestSaveHandlerRejectsIncompletePayload(t *testing.T) {
	router, store := newTestRouter(t)

	body := `{"name":"greeting","subject":"","body":"Hello!"}`
	req := httptest.NewRequest(http.MethodPost, "/templates", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result Result
	json.NewDecoder(rec.Body).Decode(&result)
	if result.Success {
		t.Error("incomplete payload accepted")
	}

	if templates, _ := store.List(context.Background(), "user-1"); len(templates) != 0 {
		t.Errorf("rejected payload was stored: %+v", templates)
	}
}

func TestDeleteHandler(t *testing.T) {
	router, store := newTestRouter(t)
	store.Save(context.Background(), "user-1", "a", "s", "b")
	store.Save(context.Background(), "user-1", "b", "s", "b")

	req := httptest.NewRequest(http.MethodDelete, "/templates/0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result Result
	json.NewDecoder(rec.Body).Decode(&result)
	if !result.Success {
		t.Fatalf("delete failed: %s", result.Message)
	}

	templates, _ := store.List(context.Background(), "user-1")
	if len(templates) != 1 || templates[0].Name != "b" {
		t.Errorf("after delete: %+v", templates)
	}
}

func TestDeleteHandlerBadIndex(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/templates/abc", "/templates/5"} {
		req := httptest.NewRequest(http.MethodDelete, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var result Result
		json.NewDecoder(rec.Body).Decode(&result)
		if result.Success || result.Message != "模板不存在" {
			t.Errorf("DELETE %s = %+v, want not-found", path, result)
		}
	}
}
