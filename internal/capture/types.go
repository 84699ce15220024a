package capture

import (
	"context"
	"log/slog"
	"time"

	"github.com/eleven-am/pathsense/internal/frame"
	"github.com/eleven-am/pathsense/internal/inference"
)

type Policy string

const (
	// PolicyInterval fires a cycle on a fixed timer; cycles that land while
	// a request is outstanding are skipped, never queued.
	PolicyInterval Policy = "interval"
	// PolicyContinuous re-arms the next cycle a short delay after the
	// previous one completes, bounded only by round-trip latency.
	PolicyContinuous Policy = "continuous"
)

type State string

const (
	StateIdle      State = "idle"
	StateCapturing State = "capturing"
)

// Source yields the most recent frame pushed by the client.
type Source interface {
	Latest(ctx context.Context, streamID string) (*frame.Frame, error)
}

// Stats is a snapshot of loop progress since Start.
type Stats struct {
	State        State
	Cycles       int64
	Skipped      int64
	Failures     int64
	AvgCycleMs   int64
	EffectiveFPS float64
}

type Config struct {
	StreamID   string
	Source     Source
	Engine     inference.Engine
	Publish    func(ctx context.Context, res *inference.Result, stats Stats)
	Policy     Policy
	Interval   time.Duration
	RearmDelay time.Duration
	Logger     *slog.Logger
}
