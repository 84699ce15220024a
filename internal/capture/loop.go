package capture

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultInterval   = 300 * time.Millisecond
	defaultRearmDelay = 10 * time.Millisecond
)

// Loop drives the capture/inference/notify cycle for one stream. It is a
// two-state machine over Idle and Capturing; while Capturing it serializes
// inference calls behind an in-flight guard and discards any result that
// completes after the transition back to Idle.
type Loop struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	inFlight atomic.Bool
	cycles   atomic.Int64
	skipped  atomic.Int64
	failures atomic.Int64
	window   rollingWindow
}

func NewLoop(cfg Config) *Loop {
	if cfg.Interval == 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.RearmDelay == 0 {
		cfg.RearmDelay = defaultRearmDelay
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:    cfg,
		logger: logger.With("component", "capture-loop", "stream_id", cfg.StreamID),
		state:  StateIdle,
	}
}

func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) Stats() Stats {
	return Stats{
		State:        l.State(),
		Cycles:       l.cycles.Load(),
		Skipped:      l.skipped.Load(),
		Failures:     l.failures.Load(),
		AvgCycleMs:   l.window.Average().Milliseconds(),
		EffectiveFPS: l.window.EffectiveFPS(),
	}
}

// Start transitions Idle to Capturing. Starting an already capturing loop
// is a no-op.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	if l.state == StateCapturing {
		l.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.state = StateCapturing
	l.cancel = cancel
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	l.window.Reset()
	l.logger.Info("capture started", "policy", l.cfg.Policy)

	go func() {
		defer close(done)
		switch l.cfg.Policy {
		case PolicyContinuous:
			l.runContinuous(runCtx)
		default:
			l.runInterval(runCtx)
		}
	}()
}

// Stop transitions Capturing to Idle, cancels any pending cycle, and waits
// for the scheduler goroutine to exit. No request is issued after Stop
// returns, and a cycle already in flight has its result discarded.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.state == StateIdle {
		l.mu.Unlock()
		return
	}
	l.state = StateIdle
	cancel := l.cancel
	done := l.done
	l.cancel = nil
	l.done = nil
	l.mu.Unlock()

	cancel()
	<-done
	l.logger.Info("capture stopped", "cycles", l.cycles.Load())
}

func (l *Loop) runInterval(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go l.cycle(ctx)
		}
	}
}

func (l *Loop) runContinuous(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		l.cycle(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.cfg.RearmDelay):
		}
	}
}

func (l *Loop) cycle(ctx context.Context) {
	if !l.inFlight.CompareAndSwap(false, true) {
		l.skipped.Add(1)
		return
	}
	defer l.inFlight.Store(false)

	if ctx.Err() != nil {
		return
	}

	start := time.Now()

	f, err := l.cfg.Source.Latest(ctx, l.cfg.StreamID)
	if err != nil || f == nil {
		if err != nil && ctx.Err() == nil {
			l.logger.Debug("no frame available", "error", err)
		}
		return
	}

	res, err := l.cfg.Engine.Detect(ctx, f)
	if err != nil {
		if ctx.Err() == nil {
			l.failures.Add(1)
			l.logger.Error("inference failed, keeping previous alerts", "error", err)
		}
		return
	}

	// A result that lands after Capturing ended belongs to a stopped
	// cycle: discard it rather than notifying a stale state.
	if ctx.Err() != nil || l.State() != StateCapturing {
		l.logger.Debug("discarding stale inference result")
		return
	}

	l.window.Add(time.Since(start))
	l.cycles.Add(1)

	if l.cfg.Publish != nil {
		l.cfg.Publish(ctx, res, l.Stats())
	}
}
