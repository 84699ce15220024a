package bootstrap

import (
	"log/slog"
	"os"

	"github.com/eleven-am/pathsense/internal/gateway"
	"github.com/eleven-am/pathsense/internal/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideSessionHandler(store *session.Store, metrics *session.MetricsStore, logger *slog.Logger) *session.Handler {
	return session.NewHandler(store, metrics, logger.With("handler", "session"))
}

type HandlerParams struct {
	fx.In

	SessionHandler *session.Handler
	StreamHandler  *gateway.Handler
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")

	params.SessionHandler.RegisterRoutes(api.Group("/sessions"))
	params.StreamHandler.RegisterRoutes(api.Group("/stream"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideSessionHandler,
	),
	fx.Invoke(RegisterRoutes),
)
