package capture

import (
	"sync"
	"time"
)

const windowSize = 10

// rollingWindow keeps the last N cycle durations for the effective
// frame-rate estimate.
type rollingWindow struct {
	mu        sync.Mutex
	durations [windowSize]time.Duration
	next      int
	count     int
}

func (w *rollingWindow) Add(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.durations[w.next] = d
	w.next = (w.next + 1) % windowSize
	if w.count < windowSize {
		w.count++
	}
}

func (w *rollingWindow) Average() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.count == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < w.count; i++ {
		total += w.durations[i]
	}
	return total / time.Duration(w.count)
}

func (w *rollingWindow) EffectiveFPS() float64 {
	avg := w.Average()
	if avg == 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}

func (w *rollingWindow) Reset() {
	w.mu.Lock()
	w.next = 0
	w.count = 0
	w.mu.Unlock()
}
