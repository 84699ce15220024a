package notify

import (
	"sync"
	"time"
)

const defaultSpeechCooldown = 3 * time.Second

// SpeechGate enforces the minimum gap between two spoken utterances.
// Alerts arriving inside the window are shown but not spoken.
type SpeechGate struct {
	mu         sync.Mutex
	cooldown   time.Duration
	lastSpoken time.Time
}

func NewSpeechGate(cooldown time.Duration) *SpeechGate {
	if cooldown <= 0 {
		cooldown = defaultSpeechCooldown
	}
	return &SpeechGate{cooldown: cooldown}
}

// Allow reports whether an utterance may be spoken at now, and if so
// resets the cooldown clock.
func (g *SpeechGate) Allow(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.lastSpoken.IsZero() && now.Sub(g.lastSpoken) < g.cooldown {
		return false
	}
	g.lastSpoken = now
	return true
}

func (g *SpeechGate) Reset() {
	g.mu.Lock()
	g.lastSpoken = time.Time{}
	g.mu.Unlock()
}
