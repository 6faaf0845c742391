package account

import (
	"fmt"
	"time"
)

// MarginMonitor watches a ledger and raises a margin call when the margin
// level falls to or below Level percent. It fires once per crossing and
// rearms when the level recovers or all margin is released.
type MarginMonitor struct {
	Level float64

	ledger    *Ledger
	triggered bool
	unsub     []func()
}

// NewMarginMonitor starts watching l. A level <= 0 disables the monitor.
func NewMarginMonitor(l *Ledger, level float64) *MarginMonitor {
	m := &MarginMonitor{Level: level, ledger: l}
	if level <= 0 {
		return m
	}
	check := func(c Change) { m.Check(c.Time) }
	m.unsub = append(m.unsub,
		l.On(EquityChanged, check),
		l.On(MarginChanged, check),
	)
	return m
}

// Check evaluates the current margin level and reports whether a margin
// call was raised.
func (m *MarginMonitor) Check(t time.Time) bool {
	if m.Level <= 0 {
		return false
	}
	margin := m.ledger.Margin()
	if margin <= 0 {
		m.triggered = false
		return false
	}
	level := m.ledger.MarginLevel()
	if level > m.Level {
		m.triggered = false
		return false
	}
	if m.triggered {
		return false
	}
	m.triggered = true
	m.ledger.RaiseMarginCall(t, fmt.Sprintf("margin level %.2f%% <= %.2f%%", level, m.Level))
	return true
}

// Close stops watching the ledger.
func (m *MarginMonitor) Close() {
	for _, u := range m.unsub {
		u()
	}
	m.unsub = nil
}
