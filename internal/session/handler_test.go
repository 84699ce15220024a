package session

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func newTestHandler(t *testing.T) (*Handler, *Store) {
	t.Helper()
	store := setupTestStore(t)

	mr := miniredis.RunT(t)
	metrics := NewMetricsStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(store, metrics, logger), store
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	h.RegisterRoutes(e.Group("/v1/sessions"))

	expected := map[string]bool{
		"/v1/sessions":         false,
		"/v1/sessions/metrics": false,
		"/v1/sessions/:id":     false,
	}
	for _, route := range e.Routes() {
		if _, ok := expected[route.Path]; ok {
			expected[route.Path] = true
		}
	}
	for path, found := range expected {
		if !found {
			t.Errorf("route %s not registered", path)
		}
	}
}

func TestHandler_ListSessions(t *testing.T) {
	h, store := newTestHandler(t)

	rec := &Record{RemoteAddr: "203.0.113.7"}
	if err := store.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(), rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)

	if err := h.ListSessions(c); err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if res.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", res.Code)
	}

	var recs []*Record
	if err := json.Unmarshal(res.Body.Bytes(), &recs); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("expected 1 session, got %d", len(recs))
	}
}

func TestHandler_GetSession(t *testing.T) {
	h, store := newTestHandler(t)

	rec := &Record{}
	if err := store.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(), rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.SetParamNames("id")
	c.SetParamValues(rec.ID)

	if err := h.GetSession(c); err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if res.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", res.Code)
	}
}

func TestHandler_GetSession_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.SetParamNames("id")
	c.SetParamValues("strm_missing")

	err := h.GetSession(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404 error, got %v", err)
	}
}

func TestHandler_GetMetrics(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/metrics?hours=9999", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)

	if err := h.GetMetrics(c); err != nil {
		t.Fatalf("GetMetrics failed: %v", err)
	}
	if res.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", res.Code)
	}
}
