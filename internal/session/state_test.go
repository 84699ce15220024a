package session

import "testing"

func TestState_Defaults(t *testing.T) {
	state := NewState()
	flags := state.Snapshot()

	if flags.CameraActive {
		t.Error("camera should start inactive")
	}
	if flags.VoiceActive {
		t.Error("voice should start inactive")
	}
	if !flags.AudioEnabled {
		t.Error("audio should default on")
	}
	if !flags.HapticEnabled {
		t.Error("haptics should default on")
	}
	if !flags.SidewalkAlerts {
		t.Error("sidewalk alerts should default on")
	}
}

func TestState_Setters(t *testing.T) {
	state := NewState()

	state.SetCameraActive(true)
	if !state.CameraActive() {
		t.Error("expected camera active")
	}

	state.SetVoiceActive(true)
	if !state.VoiceActive() {
		t.Error("expected voice active")
	}

	state.SetSidewalkAlerts(false)
	if state.Snapshot().SidewalkAlerts {
		t.Error("expected sidewalk alerts off")
	}
}

func TestState_Toggles(t *testing.T) {
	state := NewState()

	if state.ToggleAudio() {
		t.Error("first audio toggle should turn audio off")
	}
	if !state.ToggleAudio() {
		t.Error("second audio toggle should turn audio back on")
	}

	if state.ToggleHaptics() {
		t.Error("first haptic toggle should turn haptics off")
	}
	if state.ToggleSidewalkAlerts() {
		t.Error("first sidewalk toggle should turn the category off")
	}
}

func TestState_SnapshotIsCopy(t *testing.T) {
	state := NewState()
	flags := state.Snapshot()

	state.SetAudioEnabled(false)
	if !flags.AudioEnabled {
		t.Error("snapshot should not observe later mutations")
	}
}
