package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/pathsense/internal/capture"
	"github.com/eleven-am/pathsense/internal/command"
	"github.com/eleven-am/pathsense/internal/frame"
	"github.com/eleven-am/pathsense/internal/inference"
	"github.com/eleven-am/pathsense/internal/notify"
	"github.com/eleven-am/pathsense/internal/session"
)

type StreamConfig struct {
	CapturePolicy   capture.Policy
	CaptureInterval time.Duration
	RearmDelay      time.Duration
	Notify          notify.Config
	Confidence      float64
	RetryBackoff    time.Duration
	StatusTTL       time.Duration
}

type StreamDeps struct {
	Compressor *frame.Compressor
	Frames     *frame.Store
	Engine     inference.Engine
	Sessions   *session.Store
	Metrics    *session.MetricsStore
	Config     StreamConfig
	Logger     *slog.Logger
}

// Stream ties one client connection to its own session state, capture
// loop, notifier, and command dispatcher. All inbound messages are handled
// sequentially on the stream goroutine, so flag reads and writes within one
// message keep a consistent order.
type Stream struct {
	id         string
	remoteAddr string
	conn       *ClientConn
	deps       StreamDeps
	state      *session.State
	loop       *capture.Loop
	dispatcher *command.Dispatcher
	notifier   *notify.Notifier
	logger     *slog.Logger

	runCtx context.Context
	record *session.Record

	mu           sync.Mutex
	lastAlerts   []string
	framesIn     atomic.Int64
	alertsRaised atomic.Int64
	utterances   atomic.Int64
}

func NewStream(id, remoteAddr string, conn *ClientConn, deps StreamDeps) *Stream {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Stream{
		id:         id,
		remoteAddr: remoteAddr,
		conn:       conn,
		deps:       deps,
		state:      session.NewState(),
		logger:     logger.With("component", "stream", "stream_id", id),
	}

	s.notifier = notify.NewNotifier(s, s.state, deps.Config.Notify, logger)

	s.loop = capture.NewLoop(capture.Config{
		StreamID:   id,
		Source:     deps.Frames,
		Engine:     deps.Engine,
		Publish:    s.publish,
		Policy:     deps.Config.CapturePolicy,
		Interval:   deps.Config.CaptureInterval,
		RearmDelay: deps.Config.RearmDelay,
		Logger:     logger,
	})

	s.dispatcher = command.NewDispatcher(command.Config{
		Engine:              s,
		Actions:             s,
		Status:              s,
		ConfidenceThreshold: deps.Config.Confidence,
		RetryBackoff:        deps.Config.RetryBackoff,
		StatusTTL:           deps.Config.StatusTTL,
		Logger:              logger,
	})

	return s
}

func (s *Stream) ID() string {
	return s.id
}

func (s *Stream) State() *session.State {
	return s.state
}

// Run pumps the connection until the client disconnects, then tears the
// stream down and finalizes its session record.
func (s *Stream) Run(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.runCtx = runCtx

	s.record = &session.Record{ID: s.id, RemoteAddr: s.remoteAddr}
	if err := s.deps.Sessions.Create(runCtx, s.record); err != nil {
		s.logger.Warn("create session record failed", "error", err)
		s.record = nil
	}
	if err := s.deps.Metrics.IncrementStreams(runCtx); err != nil {
		s.logger.Debug("stream metric failed", "error", err)
	}

	go s.conn.writePump(runCtx)
	go s.conn.readPump(runCtx)

	for msg := range s.conn.Messages() {
		s.handleMessage(runCtx, msg)
	}

	s.teardown()
}

func (s *Stream) teardown() {
	s.loop.Stop()
	s.dispatcher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.deps.Frames.Delete(ctx, s.id); err != nil {
		s.logger.Debug("frame cleanup failed", "error", err)
	}

	if s.record != nil {
		stats := s.loop.Stats()
		s.record.FramesProcessed = s.framesIn.Load()
		s.record.AlertsRaised = s.alertsRaised.Load()
		s.record.Utterances = s.utterances.Load()
		s.record.AvgLatencyMs = stats.AvgCycleMs
		s.mu.Lock()
		s.record.LastAlerts = s.lastAlerts
		s.mu.Unlock()

		if err := s.deps.Sessions.Finish(ctx, s.record, session.StatusEnded); err != nil {
			s.logger.Warn("finish session record failed", "error", err)
		}
	}

	s.logger.Info("stream closed",
		"frames", s.framesIn.Load(),
		"alerts", s.alertsRaised.Load())
}

func (s *Stream) handleMessage(ctx context.Context, msg *StreamMessage) {
	switch msg.Type {
	case MessageTypeFrame:
		s.handleFrame(ctx, msg.Payload)
	case MessageTypeControl:
		s.handleControl(ctx, msg.Payload)
	case MessageTypeTranscript:
		s.handleTranscript(ctx, msg.Payload)
	case MessageTypeRecognitionEnded:
		s.dispatcher.OnRecognitionEnded(ctx)
	case MessageTypeRecognitionError:
		var p RecognitionErrorPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return
		}
		s.dispatcher.OnRecognitionError(ctx, p.Code)
	default:
		s.logger.Debug("unknown message type", "type", msg.Type)
	}
}

func (s *Stream) handleFrame(ctx context.Context, payload json.RawMessage) {
	var p FramePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.logger.Debug("bad frame payload", "error", err)
		return
	}

	data := p.Data
	if strings.HasPrefix(data, "data:") {
		if i := strings.IndexByte(data, ','); i >= 0 {
			data = data[i+1:]
		}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		s.logger.Debug("frame decode failed", "error", err)
		return
	}

	timestamp := p.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	f, err := s.deps.Compressor.Compress(s.id, raw, timestamp)
	if err != nil {
		s.logger.Debug("frame compress failed", "error", err)
		return
	}

	if err := s.deps.Frames.Put(ctx, f); err != nil {
		s.logger.Warn("frame store failed", "error", err)
		return
	}

	s.framesIn.Add(1)
}

func (s *Stream) handleControl(ctx context.Context, payload json.RawMessage) {
	var p ControlPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.logger.Debug("bad control payload", "error", err)
		return
	}

	var err error
	switch p.Action {
	case ControlStartCamera:
		err = s.StartCamera(ctx)
	case ControlStopCamera:
		err = s.StopCamera(ctx)
	case ControlToggleAudio:
		s.state.ToggleAudio()
	case ControlToggleHaptics:
		s.state.ToggleHaptics()
	case ControlToggleSidewalk:
		s.state.ToggleSidewalkAlerts()
	case ControlEnableVoice:
		s.state.SetVoiceActive(true)
		err = s.dispatcher.Enable(ctx)
	case ControlDisableVoice:
		s.state.SetVoiceActive(false)
		err = s.dispatcher.Disable(ctx)
	default:
		s.logger.Debug("unknown control action", "action", p.Action)
		return
	}

	if err != nil {
		s.logger.Warn("control action failed", "action", p.Action, "error", err)
	}
}

func (s *Stream) handleTranscript(ctx context.Context, payload json.RawMessage) {
	var p TranscriptPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.logger.Debug("bad transcript payload", "error", err)
		return
	}

	if p.Final {
		s.utterances.Add(1)
		if err := s.deps.Metrics.IncrementUtterances(ctx); err != nil {
			s.logger.Debug("utterance metric failed", "error", err)
		}
	}

	s.dispatcher.OnTranscript(ctx, command.Transcript{
		Text:       p.Text,
		Confidence: p.Confidence,
		Final:      p.Final,
	})
}

func (s *Stream) publish(ctx context.Context, res *inference.Result, stats capture.Stats) {
	update := notify.Update{
		Alerts:         res.Alerts,
		ProcessedImage: res.ProcessedImage,
		LatencyMs:      stats.AvgCycleMs,
		FPS:            stats.EffectiveFPS,
		Timestamp:      res.Timestamp,
	}

	raised := s.notifier.Publish(ctx, update)
	if raised > 0 {
		s.alertsRaised.Add(int64(raised))
		s.mu.Lock()
		s.lastAlerts = update.Alerts
		s.mu.Unlock()
		if err := s.deps.Metrics.IncrementAlerts(ctx, int64(raised)); err != nil {
			s.logger.Debug("alert metric failed", "error", err)
		}
	}

	if err := s.deps.Metrics.IncrementFrames(ctx, 1); err != nil {
		s.logger.Debug("frame metric failed", "error", err)
	}
	if err := s.deps.Metrics.RecordLatency(ctx, stats.AvgCycleMs); err != nil {
		s.logger.Debug("latency metric failed", "error", err)
	}
}

// command.Actions: the same operations a manual control message performs.

func (s *Stream) StartCamera(_ context.Context) error {
	s.state.SetCameraActive(true)
	s.loop.Start(s.runCtx)
	return nil
}

func (s *Stream) StopCamera(_ context.Context) error {
	s.state.SetCameraActive(false)
	s.loop.Stop()
	return nil
}

func (s *Stream) SetSidewalkAlerts(_ context.Context, enabled bool) error {
	s.state.SetSidewalkAlerts(enabled)
	return nil
}

// notify.Sink: directives executed by the client device.

func (s *Stream) ShowAlerts(ctx context.Context, update notify.Update) error {
	msg, err := NewMessage(MessageTypeAlerts, update)
	if err != nil {
		return err
	}
	return s.conn.Send(ctx, msg)
}

func (s *Stream) Speak(ctx context.Context, text string) error {
	msg, err := NewMessage(MessageTypeSpeak, SpeakPayload{Text: text})
	if err != nil {
		return err
	}
	return s.conn.Send(ctx, msg)
}

func (s *Stream) Vibrate(ctx context.Context, pattern []int) error {
	msg, err := NewMessage(MessageTypeVibrate, VibratePayload{Pattern: pattern})
	if err != nil {
		return err
	}
	return s.conn.Send(ctx, msg)
}

// command.Engine: recognition runs on the client; the dispatcher drives it
// through directives.

func (s *Stream) StartRecognition(ctx context.Context) error {
	msg, _ := NewMessage(MessageTypeRecognitionStart, nil)
	return s.conn.Send(ctx, msg)
}

func (s *Stream) StopRecognition(ctx context.Context) error {
	msg, _ := NewMessage(MessageTypeRecognitionStop, nil)
	return s.conn.Send(ctx, msg)
}

// command.StatusSink

func (s *Stream) ShowStatus(ctx context.Context, text string) error {
	msg, err := NewMessage(MessageTypeStatus, StatusPayload{Text: text})
	if err != nil {
		return err
	}
	return s.conn.Send(ctx, msg)
}

func (s *Stream) ClearStatus(ctx context.Context) error {
	msg, _ := NewMessage(MessageTypeStatusClear, nil)
	return s.conn.Send(ctx, msg)
}
