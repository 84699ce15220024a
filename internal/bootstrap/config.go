package bootstrap

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	DetectorURL     string
	DetectorTimeout time.Duration

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FrameMaxWidth int
	FrameQuality  float64
	FrameTTL      time.Duration

	CapturePolicy   string
	CaptureInterval time.Duration
	CaptureRearm    time.Duration

	SpeechCooldown  time.Duration
	AlertFilterTerm string

	VoiceConfidence float64
	VoiceRetry      time.Duration
	StatusTTL       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DetectorURL:     getEnv("DETECTOR_URL", "http://localhost:8500/detect"),
		DetectorTimeout: getEnvDuration("DETECTOR_TIMEOUT_MS", 30000),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		FrameMaxWidth: getEnvInt("FRAME_MAX_WIDTH", 640),
		FrameQuality:  getEnvFloat("FRAME_QUALITY", 0.7),
		FrameTTL:      getEnvDuration("FRAME_TTL_MS", 60000),

		CapturePolicy:   getEnv("CAPTURE_POLICY", "interval"),
		CaptureInterval: getEnvDuration("CAPTURE_INTERVAL_MS", 300),
		CaptureRearm:    getEnvDuration("CAPTURE_REARM_MS", 10),

		SpeechCooldown:  getEnvDuration("SPEECH_COOLDOWN_MS", 3000),
		AlertFilterTerm: getEnv("ALERT_FILTER_TERM", "sidewalk"),

		VoiceConfidence: getEnvFloat("VOICE_CONFIDENCE", 0.6),
		VoiceRetry:      getEnvDuration("VOICE_RETRY_MS", 1000),
		StatusTTL:       getEnvDuration("STATUS_TTL_MS", 2000),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}
