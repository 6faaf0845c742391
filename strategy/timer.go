package strategy

import "time"

// Timer fires the strategy's OnTimer hook every Interval of run time. Timers
// are evaluated at tick boundaries, so a timer fires at most once per tick
// however many intervals elapsed since the previous one.
type Timer struct {
	Interval time.Duration

	next    time.Time
	stopped bool
}

func (t *Timer) Stop() { t.stopped = true }

func (t *Timer) Stopped() bool { return t.stopped }

// due reports whether t fires at now and advances it past now if so.
func (t *Timer) due(now time.Time) bool {
	if t.stopped || now.Before(t.next) {
		return false
	}
	for !t.next.After(now) {
		t.next = t.next.Add(t.Interval)
	}
	return true
}
