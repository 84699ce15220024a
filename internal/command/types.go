package command

import (
	"context"
	"log/slog"
	"time"
)

type DispatcherState string

const (
	StateInactive  DispatcherState = "inactive"
	StateListening DispatcherState = "listening"
)

type Action string

const (
	ActionStartCamera     Action = "start_camera"
	ActionStopCamera      Action = "stop_camera"
	ActionEnableSidewalk  Action = "enable_sidewalk"
	ActionDisableSidewalk Action = "disable_sidewalk"
)

// Transcript is one hypothesis from the recognition engine. Interim
// results carry Final=false and may repeat for the same utterance.
type Transcript struct {
	Text       string
	Confidence float64
	Final      bool
}

// Engine controls the remote recognition engine. For a browser client this
// resolves to start/stop directives over the stream connection.
type Engine interface {
	StartRecognition(ctx context.Context) error
	StopRecognition(ctx context.Context) error
}

// Actions are the session operations voice commands can trigger; they are
// the same operations a manual control message invokes.
type Actions interface {
	StartCamera(ctx context.Context) error
	StopCamera(ctx context.Context) error
	SetSidewalkAlerts(ctx context.Context, enabled bool) error
}

// StatusSink surfaces the transient recognized-command display.
type StatusSink interface {
	ShowStatus(ctx context.Context, text string) error
	ClearStatus(ctx context.Context) error
}

type Config struct {
	Engine              Engine
	Actions             Actions
	Status              StatusSink
	ConfidenceThreshold float64
	RetryBackoff        time.Duration
	StatusTTL           time.Duration
	Logger              *slog.Logger
}
