package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/eleven-am/pathsense/internal/frame"
	"github.com/eleven-am/pathsense/internal/gateway"
	"github.com/eleven-am/pathsense/internal/inference"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubDetector struct {
	available bool
}

func (d *stubDetector) Detect(ctx context.Context, f *frame.Frame) (*inference.Result, error) {
	return &inference.Result{}, nil
}

func (d *stubDetector) IsAvailable(ctx context.Context) bool {
	return d.available
}

func setupHandler(t *testing.T, detector inference.Engine) (*Handler, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	return NewHandler(db, redisClient, detector, gateway.NewManager(), "test"), mr
}

func doRequest(t *testing.T, handler func(echo.Context) error, path string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestHandler_Live(t *testing.T) {
	h, _ := setupHandler(t, &stubDetector{available: true})

	rec := doRequest(t, h.Live, "/health/live")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Ready(t *testing.T) {
	h, mr := setupHandler(t, &stubDetector{available: true})

	rec := doRequest(t, h.Ready, "/health/ready")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	mr.Close()
	rec = doRequest(t, h.Ready, "/health/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 with redis down, got %d", rec.Code)
	}
}

func TestHandler_Health(t *testing.T) {
	h, _ := setupHandler(t, &stubDetector{available: true})
	h.IncrementRequests()

	rec := doRequest(t, h.Health, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", resp.Status)
	}
	if resp.Version != "test" {
		t.Errorf("expected version test, got %s", resp.Version)
	}
	if resp.Requests != 1 {
		t.Errorf("expected 1 request counted, got %d", resp.Requests)
	}
	if len(resp.Components) != 3 {
		t.Errorf("expected 3 components, got %d", len(resp.Components))
	}
}

func TestHandler_Health_DetectorDownDegrades(t *testing.T) {
	h, _ := setupHandler(t, &stubDetector{available: false})

	rec := doRequest(t, h.Health, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("detector outage should not fail the endpoint, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Status != StatusDegraded {
		t.Errorf("expected degraded with detector down, got %s", resp.Status)
	}
	if resp.Components["detector"].Status != StatusUnhealthy {
		t.Error("detector component should report unhealthy")
	}
}

func TestHandler_Health_RedisDownUnhealthy(t *testing.T) {
	h, mr := setupHandler(t, &stubDetector{available: true})
	mr.Close()

	rec := doRequest(t, h.Health, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 with redis down, got %d", rec.Code)
	}
}
