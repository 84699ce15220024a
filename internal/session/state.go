package session

import "sync"

// Flags is a point-in-time copy of the per-stream toggles.
type Flags struct {
	CameraActive   bool
	AudioEnabled   bool
	HapticEnabled  bool
	VoiceActive    bool
	SidewalkAlerts bool
}

// State holds the mutable per-stream toggles. Every component reads the
// flags through here rather than through ambient globals, so a snapshot
// taken at the top of a cycle stays coherent for that cycle.
type State struct {
	mu    sync.RWMutex
	flags Flags
}

func NewState() *State {
	return &State{
		flags: Flags{
			AudioEnabled:   true,
			HapticEnabled:  true,
			SidewalkAlerts: true,
		},
	}
}

func (s *State) Snapshot() Flags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags
}

func (s *State) CameraActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags.CameraActive
}

func (s *State) SetCameraActive(active bool) {
	s.mu.Lock()
	s.flags.CameraActive = active
	s.mu.Unlock()
}

func (s *State) VoiceActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags.VoiceActive
}

func (s *State) SetVoiceActive(active bool) {
	s.mu.Lock()
	s.flags.VoiceActive = active
	s.mu.Unlock()
}

func (s *State) SetAudioEnabled(enabled bool) {
	s.mu.Lock()
	s.flags.AudioEnabled = enabled
	s.mu.Unlock()
}

func (s *State) SetHapticEnabled(enabled bool) {
	s.mu.Lock()
	s.flags.HapticEnabled = enabled
	s.mu.Unlock()
}

func (s *State) SetSidewalkAlerts(enabled bool) {
	s.mu.Lock()
	s.flags.SidewalkAlerts = enabled
	s.mu.Unlock()
}

func (s *State) ToggleAudio() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags.AudioEnabled = !s.flags.AudioEnabled
	return s.flags.AudioEnabled
}

func (s *State) ToggleHaptics() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags.HapticEnabled = !s.flags.HapticEnabled
	return s.flags.HapticEnabled
}

func (s *State) ToggleSidewalkAlerts() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags.SidewalkAlerts = !s.flags.SidewalkAlerts
	return s.flags.SidewalkAlerts
}
