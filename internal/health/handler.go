package health

import (
	"context"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/eleven-am/pathsense/internal/gateway"
	"github.com/eleven-am/pathsense/internal/inference"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type RuntimeStats struct {
	Goroutines    int    `json:"goroutines"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	MemorySysMB   uint64 `json:"memory_sys_mb"`
	NumGC         uint32 `json:"num_gc"`
}

type StreamStats struct {
	ActiveStreams int `json:"active_streams"`
}

type Response struct {
	Status     Status                     `json:"status"`
	Version    string                     `json:"version"`
	UptimeSec  int64                      `json:"uptime_sec"`
	Components map[string]ComponentStatus `json:"components"`
	Runtime    RuntimeStats               `json:"runtime"`
	Streams    StreamStats                `json:"streams"`
	Requests   uint64                     `json:"total_requests"`
}

type Handler struct {
	db       *gorm.DB
	redis    *redis.Client
	detector inference.Engine
	manager  *gateway.Manager
	version  string
	started  time.Time
	requests atomic.Uint64
}

func NewHandler(db *gorm.DB, redisClient *redis.Client, detector inference.Engine, manager *gateway.Manager, version string) *Handler {
	return &Handler{
		db:       db,
		redis:    redisClient,
		detector: detector,
		manager:  manager,
		version:  version,
		started:  time.Now(),
	}
}

func (h *Handler) IncrementRequests() {
	h.requests.Add(1)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/health/live", h.Live)
	e.GET("/health/ready", h.Ready)
}

func (h *Handler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.redis.Ping(ctx).Err(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	components := map[string]ComponentStatus{
		"database": h.checkDatabase(ctx),
		"redis":    h.checkRedis(ctx),
		"detector": h.checkDetector(ctx),
	}

	overall := StatusHealthy
	for name, comp := range components {
		if comp.Status == StatusUnhealthy {
			// The detector being down degrades detection but the
			// service itself still accepts streams.
			if name == "detector" {
				if overall == StatusHealthy {
					overall = StatusDegraded
				}
				continue
			}
			overall = StatusUnhealthy
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := Response{
		Status:     overall,
		Version:    h.version,
		UptimeSec:  int64(time.Since(h.started).Seconds()),
		Components: components,
		Runtime: RuntimeStats{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: mem.Alloc / 1024 / 1024,
			MemorySysMB:   mem.Sys / 1024 / 1024,
			NumGC:         mem.NumGC,
		},
		Streams: StreamStats{
			ActiveStreams: h.manager.Count(),
		},
		Requests: h.requests.Load(),
	}

	code := http.StatusOK
	if overall == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

func (h *Handler) checkDatabase(ctx context.Context) ComponentStatus {
	start := time.Now()

	sqlDB, err := h.db.DB()
	if err != nil {
		return ComponentStatus{Status: StatusUnhealthy, Error: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return ComponentStatus{Status: StatusUnhealthy, LatencyMs: time.Since(start).Milliseconds(), Error: err.Error()}
	}
	return ComponentStatus{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
}

func (h *Handler) checkRedis(ctx context.Context) ComponentStatus {
	start := time.Now()

	if err := h.redis.Ping(ctx).Err(); err != nil {
		return ComponentStatus{Status: StatusUnhealthy, LatencyMs: time.Since(start).Milliseconds(), Error: err.Error()}
	}
	return ComponentStatus{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
}

func (h *Handler) checkDetector(ctx context.Context) ComponentStatus {
	start := time.Now()

	if !h.detector.IsAvailable(ctx) {
		return ComponentStatus{Status: StatusUnhealthy, LatencyMs: time.Since(start).Milliseconds(), Error: "detector unreachable"}
	}
	return ComponentStatus{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
}
