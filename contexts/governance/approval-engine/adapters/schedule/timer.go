package schedule

import (
	"sync"
	"time"
)

// TimerScheduler arms one time.Timer per active session instead of a global
// polling loop, keeping per-session latency bounded. Timers are replaced on
// re-schedule and stopped on cancel so early resolution never leaks one.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fire   func(sessionID string)
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{
		timers: make(map[string]*time.Timer),
	}
}

// Bind sets the expiry callback. Wiring calls this once before any session is
// scheduled; the engine and scheduler reference each other, so the callback
// arrives after construction.
func (s *TimerScheduler) Bind(fire func(sessionID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fire = fire
}

func (s *TimerScheduler) Schedule(sessionID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.timers[sessionID]; ok {
		existing.Stop()
	}
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	s.timers[sessionID] = time.AfterFunc(delay, func() {
		s.expire(sessionID)
	})
}

func (s *TimerScheduler) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[sessionID]; ok {
		timer.Stop()
		delete(s.timers, sessionID)
	}
}

func (s *TimerScheduler) expire(sessionID string) {
	s.mu.Lock()
	delete(s.timers, sessionID)
	fire := s.fire
	s.mu.Unlock()
	if fire != nil {
		fire(sessionID)
	}
}

// Stop cancels every armed timer. Used on shutdown.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
