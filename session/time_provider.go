package session

import "time"

// TimeProvider supplies the clock used for frame timestamps and inter-frame
// pauses. Tests inject one that fires immediately.
type TimeProvider interface {
	Now() time.Time
	NewTimer(d time.Duration) *time.Timer
}

// RealTimeProvider reads the system clock.
type RealTimeProvider struct{}

// Now returns the current system time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// NewTimer starts a system timer.
func (RealTimeProvider) NewTimer(d time.Duration) *time.Timer {
	return time.NewTimer(d)
}

// getTimeProvider returns tp, or the system clock when tp is nil.
func getTimeProvider(tp TimeProvider) TimeProvider {
	if tp != nil {
		return tp
	}
	return RealTimeProvider{}
}

// sleep blocks for d using the provider's timer. It cannot be interrupted.
func sleep(tp TimeProvider, d time.Duration) {
	if d <= 0 {
		return
	}
	t := tp.NewTimer(d)
	<-t.C
}
