package command

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultConfidenceThreshold = 0.6
	defaultRetryBackoff        = time.Second
	defaultStatusTTL           = 2 * time.Second
)

// recoverable recognition errors get one scheduled retry; anything else
// gives up silently.
var recoverableErrors = map[string]bool{
	"network":   true,
	"no-speech": true,
}

// Dispatcher is a two-state machine over the recognition engine. While
// Listening it restarts recognition whenever the engine ends on its own;
// a user-initiated Disable suppresses the restart.
type Dispatcher struct {
	engine     Engine
	actions    Actions
	status     StatusSink
	logger     *slog.Logger
	confidence float64
	backoff    time.Duration
	statusTTL  time.Duration

	mu               sync.Mutex
	state            DispatcherState
	userStopped      bool
	retryScheduled   bool
	utteranceHandled bool
	retryTimer       *time.Timer
	statusTimer      *time.Timer
}

func NewDispatcher(cfg Config) *Dispatcher {
	confidence := cfg.ConfidenceThreshold
	if confidence <= 0 {
		confidence = defaultConfidenceThreshold
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	statusTTL := cfg.StatusTTL
	if statusTTL <= 0 {
		statusTTL = defaultStatusTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		engine:     cfg.Engine,
		actions:    cfg.Actions,
		status:     cfg.Status,
		logger:     logger.With("component", "command-dispatcher"),
		confidence: confidence,
		backoff:    backoff,
		statusTTL:  statusTTL,
		state:      StateInactive,
	}
}

func (d *Dispatcher) State() DispatcherState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Enable transitions Inactive to Listening and begins recognition.
func (d *Dispatcher) Enable(ctx context.Context) error {
	d.mu.Lock()
	if d.state == StateListening {
		d.mu.Unlock()
		return nil
	}
	d.state = StateListening
	d.userStopped = false
	d.utteranceHandled = false
	d.mu.Unlock()

	d.logger.Info("voice commands enabled")
	return d.engine.StartRecognition(ctx)
}

// Disable is the user-initiated transition to Inactive; no restart follows
// the engine stop it triggers.
func (d *Dispatcher) Disable(ctx context.Context) error {
	d.mu.Lock()
	if d.state == StateInactive {
		d.mu.Unlock()
		return nil
	}
	d.state = StateInactive
	d.userStopped = true
	if d.retryTimer != nil {
		d.retryTimer.Stop()
		d.retryTimer = nil
		d.retryScheduled = false
	}
	d.mu.Unlock()

	d.logger.Info("voice commands disabled")
	return d.engine.StopRecognition(ctx)
}

// OnTranscript feeds one recognition hypothesis through the phrase table.
// Exactly one action is dispatched per utterance: an interim match claims
// the utterance and later hypotheses are ignored until the final result
// closes it out.
func (d *Dispatcher) OnTranscript(ctx context.Context, t Transcript) {
	d.mu.Lock()
	if d.state != StateListening {
		d.mu.Unlock()
		return
	}
	if !t.Final && t.Confidence < d.confidence {
		d.mu.Unlock()
		return
	}
	handled := d.utteranceHandled
	if t.Final {
		d.utteranceHandled = false
	}
	d.mu.Unlock()

	if handled {
		return
	}

	action, ok := Match(t.Text)
	if !ok {
		return
	}

	if !t.Final {
		d.mu.Lock()
		d.utteranceHandled = true
		d.mu.Unlock()
	}

	d.dispatch(ctx, action)
}

// OnRecognitionEnded handles the engine stopping on its own. While still
// Listening this immediately restarts recognition.
func (d *Dispatcher) OnRecognitionEnded(ctx context.Context) {
	d.mu.Lock()
	// The engine can end mid-utterance without a final result; the claim
	// must not carry over and swallow the next utterance.
	d.utteranceHandled = false
	restart := d.state == StateListening && !d.userStopped
	d.mu.Unlock()

	if !restart {
		return
	}

	d.logger.Debug("recognition ended, restarting")
	if err := d.engine.StartRecognition(ctx); err != nil {
		d.logger.Warn("recognition restart failed", "error", err)
	}
}

// OnRecognitionError schedules a single retry after the backoff for
// recoverable errors, and gives up silently otherwise.
func (d *Dispatcher) OnRecognitionError(ctx context.Context, code string) {
	if !recoverableErrors[code] {
		d.logger.Debug("unrecoverable recognition error", "code", code)
		return
	}

	d.mu.Lock()
	if d.state != StateListening || d.retryScheduled {
		d.mu.Unlock()
		return
	}
	d.retryScheduled = true
	d.retryTimer = time.AfterFunc(d.backoff, d.retry)
	d.mu.Unlock()

	d.logger.Debug("recognition error, retry scheduled", "code", code)
}

func (d *Dispatcher) retry() {
	d.mu.Lock()
	d.retryScheduled = false
	d.retryTimer = nil
	d.utteranceHandled = false
	restart := d.state == StateListening && !d.userStopped
	d.mu.Unlock()

	if !restart {
		return
	}

	if err := d.engine.StartRecognition(context.Background()); err != nil {
		d.logger.Warn("recognition retry failed", "error", err)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, action Action) {
	var err error
	switch action {
	case ActionStartCamera:
		err = d.actions.StartCamera(ctx)
	case ActionStopCamera:
		err = d.actions.StopCamera(ctx)
	case ActionEnableSidewalk:
		err = d.actions.SetSidewalkAlerts(ctx, true)
	case ActionDisableSidewalk:
		err = d.actions.SetSidewalkAlerts(ctx, false)
	}
	if err != nil {
		d.logger.Warn("command action failed", "action", action, "error", err)
		return
	}

	d.logger.Info("voice command dispatched", "action", action)
	d.showStatus(ctx, string(action))
}

func (d *Dispatcher) showStatus(ctx context.Context, text string) {
	if d.status == nil {
		return
	}
	if err := d.status.ShowStatus(ctx, text); err != nil {
		return
	}

	d.mu.Lock()
	if d.statusTimer != nil {
		d.statusTimer.Stop()
	}
	d.statusTimer = time.AfterFunc(d.statusTTL, func() {
		_ = d.status.ClearStatus(context.Background())
	})
	d.mu.Unlock()
}

// Close releases pending timers without touching the engine.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.retryTimer != nil {
		d.retryTimer.Stop()
		d.retryTimer = nil
	}
	if d.statusTimer != nil {
		d.statusTimer.Stop()
		d.statusTimer = nil
	}
	d.state = StateInactive
}
