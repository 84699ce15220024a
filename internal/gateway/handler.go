package gateway

import (
	"log/slog"
	"net/http"

	"github.com/eleven-am/pathsense/internal/shared"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Handler struct {
	deps    StreamDeps
	manager *Manager
	logger  *slog.Logger
}

func NewHandler(deps StreamDeps, manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{
		deps:    deps,
		manager: manager,
		logger:  logger.With("handler", "stream"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.handleStream)
}

func (h *Handler) handleStream(c echo.Context) error {
	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	streamID := shared.NewID("strm_")
	conn := NewClientConn(ws, streamID, h.logger)
	stream := NewStream(streamID, c.RealIP(), conn, h.deps)

	h.manager.Add(stream)
	h.logger.Info("client connected", "stream_id", streamID)

	stream.Run(c.Request().Context())

	h.manager.Remove(streamID)
	h.logger.Info("client disconnected", "stream_id", streamID)
	return nil
}
