package strategies

import "github.com/rustyeddy/stratsim/strategy"

// Noop does nothing.
type Noop struct {
	strategy.Base
}

func newNoop(Settings) (strategy.Strategy, error) { return Noop{}, nil }
