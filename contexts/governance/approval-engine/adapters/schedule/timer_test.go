package schedule

import (
	"sync"
	"testing"
	"time"
)

func TestTimerSchedulerFires(t *testing.T) {
	scheduler := NewTimerScheduler()
	defer scheduler.Stop()

	fired := make(chan string, 1)
	scheduler.Bind(func(sessionID string) {
		fired <- sessionID
	})

	scheduler.Schedule("session-1", time.Now().Add(10*time.Millisecond))
	select {
	case id := <-fired:
		if id != "session-1" {
			t.Fatalf("expected session-1, got %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timer never fired")
	}
}

func TestTimerSchedulerCancelPreventsFire(t *testing.T) {
	scheduler := NewTimerScheduler()
	defer scheduler.Stop()

	var mu sync.Mutex
	var fired bool
	scheduler.Bind(func(string) {
		mu.Lock()
		fired = true
		mu.Unlock()
	})

	scheduler.Schedule("session-1", time.Now().Add(30*time.Millisecond))
	scheduler.Cancel("session-1")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired {
		t.Fatalf("canceled timer must not fire")
	}
}

func TestTimerSchedulerRescheduleReplacesTimer(t *testing.T) {
	scheduler := NewTimerScheduler()
	defer scheduler.Stop()

	fired := make(chan struct{}, 2)
	scheduler.Bind(func(string) {
		fired <- struct{}{}
	})

	scheduler.Schedule("session-1", time.Now().Add(time.Hour))
	scheduler.Schedule("session-1", time.Now().Add(10*time.Millisecond))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("rescheduled timer never fired")
	}
	select {
	case <-fired:
		t.Fatalf("replaced timer fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimerSchedulerPastDeadlineFiresImmediately(t *testing.T) {
	scheduler := NewTimerScheduler()
	defer scheduler.Stop()

	fired := make(chan struct{}, 1)
	scheduler.Bind(func(string) {
		fired <- struct{}{}
	})

	scheduler.Schedule("session-1", time.Now().Add(-time.Minute))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("overdue deadline never fired")
	}
}
