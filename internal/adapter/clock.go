package adapter

import "time"

// Clock abstracts wall-clock reads and timers so retry loops and sweeps can be driven by tests
//
//go:generate mockgen -source=clock.go -destination=../mocks/clock.go -package=mocks -mock_names=Clock=MockClock
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using the standard time package
type RealClock struct{}

// NewClock creates a new real clock implementation
func NewClock() Clock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (c *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// ClockTimer adapts a Clock to the timer contract used by backoff.RetryNotifyWithTimer,
// so that waits between attempts go through Clock.After.
type ClockTimer struct {
	clock Clock
	c     <-chan time.Time
}

// NewClockTimer creates a timer driven by the given clock
func NewClockTimer(clock Clock) *ClockTimer {
	return &ClockTimer{clock: clock}
}

func (t *ClockTimer) Start(d time.Duration) {
	t.c = t.clock.After(d)
}

// Stop is a no-op; a pending channel from Clock.After is simply abandoned.
func (t *ClockTimer) Stop() {}

func (t *ClockTimer) C() <-chan time.Time {
	return t.c
}
