// Package indicators provides technical analysis indicators over bars.
package indicators

import "github.com/rustyeddy/stratsim/market"

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to use in live, replay, and backtests.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed bar.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current value, 0 until Ready.
	Value() float64
}

// Feed pushes every bar of bars through ind, in order.
func Feed(ind Indicator, bars []market.Bar) {
	for _, b := range bars {
		ind.Update(b)
	}
}
