package bootstrap

import (
	"github.com/eleven-am/pathsense/internal/frame"
	"github.com/eleven-am/pathsense/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideSessionStore(db *gorm.DB) *session.Store {
	return session.NewStore(db)
}

func ProvideMetricsStore(redisClient *redis.Client) *session.MetricsStore {
	return session.NewMetricsStore(redisClient)
}

func ProvideFrameStore(redisClient *redis.Client, cfg *Config) *frame.Store {
	return frame.NewStore(redisClient, frame.StoreConfig{FrameTTL: cfg.FrameTTL})
}

func RunMigrations(sessionStore *session.Store) error {
	return sessionStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideSessionStore,
		ProvideMetricsStore,
		ProvideFrameStore,
	),
	fx.Invoke(RunMigrations),
)
