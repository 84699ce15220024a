package session

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eleven-am/pathsense/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store   *Store
	metrics *MetricsStore
	logger  *slog.Logger
}

func NewHandler(store *Store, metrics *MetricsStore, logger *slog.Logger) *Handler {
	return &Handler{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListSessions)
	g.GET("/metrics", h.GetMetrics)
	g.GET("/:id", h.GetSession)
}

func (h *Handler) ListSessions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	recs, err := h.store.ListRecent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("list sessions failed", "error", err)
		return shared.InternalError("list_failed", "failed to list sessions")
	}

	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) GetSession(c echo.Context) error {
	rec, err := h.store.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("session_not_found", "session not found")
		}
		h.logger.Error("get session failed", "error", err)
		return shared.InternalError("get_failed", "failed to get session")
	}

	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetMetrics(c echo.Context) error {
	hours, _ := strconv.Atoi(c.QueryParam("hours"))
	if hours <= 0 || hours > 7*24 {
		hours = 24
	}

	metrics, err := h.metrics.GetMetrics(c.Request().Context(), hours)
	if err != nil {
		h.logger.Error("get metrics failed", "error", err)
		return shared.InternalError("metrics_failed", "failed to get metrics")
	}

	return c.JSON(http.StatusOK, metrics)
}
