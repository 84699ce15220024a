package notify

import (
	"context"
	"time"
)

// Update is what a client sees after one inference cycle.
type Update struct {
	Alerts         []string `json:"alerts"`
	ProcessedImage string   `json:"processed_image,omitempty"`
	LatencyMs      int64    `json:"latency_ms"`
	FPS            float64  `json:"fps,omitempty"`
	Timestamp      int64    `json:"timestamp"`
}

// Sink executes notification directives on the client device. Implementations
// that lack a capability (no vibration actuator, muted speech engine) skip the
// call without error.
type Sink interface {
	ShowAlerts(ctx context.Context, update Update) error
	Speak(ctx context.Context, text string) error
	Vibrate(ctx context.Context, pattern []int) error
}

type Config struct {
	SpeechCooldown time.Duration
	FilterTerm     string
}
