package notify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/eleven-am/pathsense/internal/session"
)

const defaultFilterTerm = "sidewalk"

// Notifier fans one inference result out to the visual alert list, the
// speech engine, and the vibration actuator, honoring the per-stream flags.
type Notifier struct {
	sink       Sink
	state      *session.State
	gate       *SpeechGate
	filterTerm string
	logger     *slog.Logger
	now        func() time.Time
}

func NewNotifier(sink Sink, state *session.State, cfg Config, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	filterTerm := cfg.FilterTerm
	if filterTerm == "" {
		filterTerm = defaultFilterTerm
	}
	return &Notifier{
		sink:       sink,
		state:      state,
		gate:       NewSpeechGate(cfg.SpeechCooldown),
		filterTerm: strings.ToLower(filterTerm),
		logger:     logger.With("component", "notifier"),
		now:        time.Now,
	}
}

// Publish applies the category filter and delivers the update. It returns
// the number of alerts that survived filtering.
func (n *Notifier) Publish(ctx context.Context, update Update) int {
	flags := n.state.Snapshot()

	update.Alerts = n.filter(update.Alerts, flags.SidewalkAlerts)

	if err := n.sink.ShowAlerts(ctx, update); err != nil {
		n.logger.Warn("show alerts failed", "error", err)
	}

	if len(update.Alerts) == 0 {
		return 0
	}

	if flags.AudioEnabled && n.gate.Allow(n.now()) {
		text := strings.Join(update.Alerts, ". ")
		if err := n.sink.Speak(ctx, text); err != nil {
			n.logger.Warn("speak failed", "error", err)
		}
	}

	if flags.HapticEnabled {
		if err := n.sink.Vibrate(ctx, VibrationPattern(len(update.Alerts))); err != nil {
			n.logger.Warn("vibrate failed", "error", err)
		}
	}

	return len(update.Alerts)
}

func (n *Notifier) filter(alerts []string, includeFiltered bool) []string {
	if includeFiltered {
		return alerts
	}
	kept := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		if strings.Contains(strings.ToLower(alert), n.filterTerm) {
			continue
		}
		kept = append(kept, alert)
	}
	return kept
}
