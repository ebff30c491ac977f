// Package countdown provides the per-module timer.
package countdown

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

// RealClock returns the wall clock.
func RealClock() Clock {
	return realClock{}
}

// Config describes a countdown.
type Config struct {
	Start time.Time
	Limit time.Duration
	// Interval is the tick cadence and the unit of Remaining. Zero means one second.
	Interval time.Duration
	// OnTick receives the remaining whole intervals, starting with an
	// immediate call. It is not called with 0; OnTimeUp is called instead.
	// OnTick must not call Stop.
	OnTick   func(remaining int)
	OnTimeUp func()
}

// Timer counts down from Start+Limit. OnTimeUp fires at most once.
type Timer struct {
	clock    Clock
	start    time.Time
	limit    int
	interval time.Duration
	onTick   func(int)
	onTimeUp func()

	// emit serializes OnTick delivery with Stop.
	emit    sync.Mutex
	mu      sync.Mutex
	pending Stopper
	done    bool
}

// Start schedules the countdown and returns it; Stop is the disposer.
func Start(clock Clock, cfg Config) *Timer {
	if clock == nil {
		clock = RealClock()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	t := &Timer{
		clock:    clock,
		start:    cfg.Start,
		limit:    int(cfg.Limit / interval),
		interval: interval,
		onTick:   cfg.OnTick,
		onTimeUp: cfg.OnTimeUp,
	}
	t.tick()
	return t
}

// Remaining returns whole intervals left at now, clamped at zero.
func Remaining(start, now time.Time, limit, interval time.Duration) int {
	if interval <= 0 {
		interval = time.Second
	}
	elapsed := int(now.Sub(start) / interval)
	if elapsed < 0 {
		elapsed = 0
	}
	left := int(limit/interval) - elapsed
	if left < 0 {
		return 0
	}
	return left
}

// Remaining reports the time left without side effects.
func (t *Timer) Remaining() int {
	return Remaining(t.start, t.clock.Now(), time.Duration(t.limit)*t.interval, t.interval)
}

// Stop cancels further ticks. It waits for an OnTick in progress, so no tick
// is delivered after it returns. It reports true when it prevented OnTimeUp.
func (t *Timer) Stop() bool {
	t.emit.Lock()
	defer t.emit.Unlock()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	return true
}

// Done reports whether the timer fired or was stopped.
func (t *Timer) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Timer) tick() {
	t.emit.Lock()
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		t.emit.Unlock()
		return
	}
	now := t.clock.Now()
	remaining := Remaining(t.start, now, time.Duration(t.limit)*t.interval, t.interval)
	if remaining <= 0 {
		t.done = true
		t.pending = nil
		t.mu.Unlock()
		t.emit.Unlock()
		if t.onTimeUp != nil {
			t.onTimeUp()
		}
		return
	}
	// Align the next tick with the next interval boundary since Start.
	elapsed := now.Sub(t.start)
	if elapsed < 0 {
		elapsed = 0
	}
	next := t.interval - elapsed%t.interval
	t.pending = t.clock.AfterFunc(next, t.tick)
	t.mu.Unlock()
	defer t.emit.Unlock()
	if t.onTick != nil {
		t.onTick(remaining)
	}
}
