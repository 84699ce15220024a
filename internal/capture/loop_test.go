package capture

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eleven-am/pathsense/internal/frame"
	"github.com/eleven-am/pathsense/internal/inference"
)

type fakeSource struct {
	mu    sync.Mutex
	frame *frame.Frame
	err   error
}

func (s *fakeSource) Latest(ctx context.Context, streamID string) (*frame.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.err
}

type fakeEngine struct {
	mu      sync.Mutex
	calls   int
	err     error
	block   chan struct{}
	started chan struct{}
}

func (e *fakeEngine) Detect(ctx context.Context, f *frame.Frame) (*inference.Result, error) {
	e.mu.Lock()
	e.calls++
	block := e.block
	started := e.started
	e.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.err != nil {
		return nil, e.err
	}
	return &inference.Result{Alerts: []string{"Pole on the right"}, Timestamp: f.Timestamp}, nil
}

func (e *fakeEngine) IsAvailable(ctx context.Context) bool { return true }

func (e *fakeEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func testLoopConfig(source *fakeSource, engine *fakeEngine, publish func(context.Context, *inference.Result, Stats)) Config {
	return Config{
		StreamID:   "strm_test",
		Source:     source,
		Engine:     engine,
		Publish:    publish,
		Policy:     PolicyContinuous,
		RearmDelay: time.Millisecond,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestLoop_StartStop(t *testing.T) {
	source := &fakeSource{frame: &frame.Frame{StreamID: "strm_test", Data: []byte("x")}}
	engine := &fakeEngine{}

	var published atomic.Int64
	loop := NewLoop(testLoopConfig(source, engine, func(ctx context.Context, res *inference.Result, stats Stats) {
		published.Add(1)
	}))

	if loop.State() != StateIdle {
		t.Errorf("new loop should be idle, got %s", loop.State())
	}

	loop.Start(context.Background())
	if loop.State() != StateCapturing {
		t.Errorf("started loop should be capturing, got %s", loop.State())
	}

	waitFor(t, time.Second, func() bool { return published.Load() >= 3 })

	loop.Stop()
	if loop.State() != StateIdle {
		t.Errorf("stopped loop should be idle, got %s", loop.State())
	}

	count := published.Load()
	time.Sleep(20 * time.Millisecond)
	if published.Load() != count {
		t.Error("no publish should happen after Stop returns")
	}
}

func TestLoop_StartTwiceIsNoop(t *testing.T) {
	source := &fakeSource{frame: &frame.Frame{StreamID: "strm_test", Data: []byte("x")}}
	engine := &fakeEngine{}

	loop := NewLoop(testLoopConfig(source, engine, nil))
	loop.Start(context.Background())
	loop.Start(context.Background())
	defer loop.Stop()

	if loop.State() != StateCapturing {
		t.Errorf("expected capturing, got %s", loop.State())
	}
}

func TestLoop_StopIdleIsNoop(t *testing.T) {
	loop := NewLoop(testLoopConfig(&fakeSource{}, &fakeEngine{}, nil))
	loop.Stop()
	if loop.State() != StateIdle {
		t.Errorf("expected idle, got %s", loop.State())
	}
}

func TestLoop_InFlightGuardSkipsTicks(t *testing.T) {
	source := &fakeSource{frame: &frame.Frame{StreamID: "strm_test", Data: []byte("x")}}
	engine := &fakeEngine{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}

	cfg := testLoopConfig(source, engine, nil)
	cfg.Policy = PolicyInterval
	cfg.Interval = 5 * time.Millisecond
	loop := NewLoop(cfg)

	loop.Start(context.Background())
	<-engine.started

	waitFor(t, time.Second, func() bool { return loop.Stats().Skipped >= 2 })

	loop.Stop()

	if got := engine.callCount(); got != 1 {
		t.Errorf("blocked request should serialize cycles, engine called %d times", got)
	}
}

func TestLoop_StopCancelsPendingRequest(t *testing.T) {
	source := &fakeSource{frame: &frame.Frame{StreamID: "strm_test", Data: []byte("x")}}
	engine := &fakeEngine{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}

	var published atomic.Int64
	loop := NewLoop(testLoopConfig(source, engine, func(ctx context.Context, res *inference.Result, stats Stats) {
		published.Add(1)
	}))

	loop.Start(context.Background())
	<-engine.started

	done := make(chan struct{})
	go func() {
		loop.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop should not wait on an in-flight request past cancellation")
	}

	if published.Load() != 0 {
		t.Error("result of a cancelled cycle should be discarded")
	}
}

func TestLoop_InferenceFailureKeepsRunning(t *testing.T) {
	source := &fakeSource{frame: &frame.Frame{StreamID: "strm_test", Data: []byte("x")}}
	engine := &fakeEngine{err: errors.New("detector unreachable")}

	var published atomic.Int64
	loop := NewLoop(testLoopConfig(source, engine, func(ctx context.Context, res *inference.Result, stats Stats) {
		published.Add(1)
	}))

	loop.Start(context.Background())
	waitFor(t, time.Second, func() bool { return loop.Stats().Failures >= 3 })
	loop.Stop()

	if published.Load() != 0 {
		t.Error("failed cycles should not publish")
	}
	if loop.State() != StateIdle {
		t.Errorf("expected idle after stop, got %s", loop.State())
	}
}

func TestLoop_NoFrameAvailable(t *testing.T) {
	source := &fakeSource{}
	engine := &fakeEngine{}

	loop := NewLoop(testLoopConfig(source, engine, nil))
	loop.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	loop.Stop()

	if got := engine.callCount(); got != 0 {
		t.Errorf("engine should not be called without a frame, got %d calls", got)
	}
}

func TestLoop_StatsTrackCycles(t *testing.T) {
	source := &fakeSource{frame: &frame.Frame{StreamID: "strm_test", Data: []byte("x")}}
	engine := &fakeEngine{}

	loop := NewLoop(testLoopConfig(source, engine, nil))
	loop.Start(context.Background())
	waitFor(t, time.Second, func() bool { return loop.Stats().Cycles >= 5 })
	loop.Stop()

	stats := loop.Stats()
	if stats.Cycles < 5 {
		t.Errorf("expected at least 5 cycles, got %d", stats.Cycles)
	}
	if stats.EffectiveFPS <= 0 {
		t.Error("effective fps should be positive after completed cycles")
	}
}
