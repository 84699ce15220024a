package bootstrap

import (
	"github.com/eleven-am/pathsense/internal/gateway"
	"github.com/eleven-am/pathsense/internal/health"
	"github.com/eleven-am/pathsense/internal/inference"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const version = "1.0.0"

func ProvideHealthHandler(
	db *gorm.DB,
	redisClient *redis.Client,
	detector inference.Engine,
	manager *gateway.Manager,
) *health.Handler {
	return health.NewHandler(db, redisClient, detector, manager, version)
}

func requestCountMiddleware(h *health.Handler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.IncrementRequests()
			return next(c)
		}
	}
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(requestCountMiddleware(h))
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
