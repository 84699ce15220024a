package bootstrap

import (
	"log/slog"

	"github.com/eleven-am/pathsense/internal/capture"
	"github.com/eleven-am/pathsense/internal/frame"
	"github.com/eleven-am/pathsense/internal/gateway"
	"github.com/eleven-am/pathsense/internal/inference"
	"github.com/eleven-am/pathsense/internal/notify"
	"github.com/eleven-am/pathsense/internal/session"
	"go.uber.org/fx"
)

func ProvideCompressor(cfg *Config) *frame.Compressor {
	return frame.NewCompressor(frame.CompressorConfig{
		MaxWidth: cfg.FrameMaxWidth,
		Quality:  cfg.FrameQuality,
	})
}

func ProvideDetector(cfg *Config) inference.Engine {
	return inference.NewClient(inference.Config{
		Endpoint: cfg.DetectorURL,
		Timeout:  cfg.DetectorTimeout,
	})
}

func ProvideStreamManager() *gateway.Manager {
	return gateway.NewManager()
}

func ProvideStreamDeps(
	compressor *frame.Compressor,
	frames *frame.Store,
	engine inference.Engine,
	sessions *session.Store,
	metrics *session.MetricsStore,
	cfg *Config,
	logger *slog.Logger,
) gateway.StreamDeps {
	return gateway.StreamDeps{
		Compressor: compressor,
		Frames:     frames,
		Engine:     engine,
		Sessions:   sessions,
		Metrics:    metrics,
		Config: gateway.StreamConfig{
			CapturePolicy:   capture.Policy(cfg.CapturePolicy),
			CaptureInterval: cfg.CaptureInterval,
			RearmDelay:      cfg.CaptureRearm,
			Notify: notify.Config{
				SpeechCooldown: cfg.SpeechCooldown,
				FilterTerm:     cfg.AlertFilterTerm,
			},
			Confidence:   cfg.VoiceConfidence,
			RetryBackoff: cfg.VoiceRetry,
			StatusTTL:    cfg.StatusTTL,
		},
		Logger: logger,
	}
}

func ProvideStreamHandler(deps gateway.StreamDeps, manager *gateway.Manager, logger *slog.Logger) *gateway.Handler {
	return gateway.NewHandler(deps, manager, logger)
}

var PipelineModule = fx.Options(
	fx.Provide(
		ProvideCompressor,
		ProvideDetector,
		ProvideStreamManager,
		ProvideStreamDeps,
		ProvideStreamHandler,
	),
)
