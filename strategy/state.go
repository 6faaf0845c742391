package strategy

import "fmt"

// State is the running mode of a Lifecycle.
type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Mode selects where notifications come from.
type Mode int

const (
	// Backtest replays history through a Driver. Stop liquidates.
	Backtest Mode = iota
	// Live receives notifications pushed by an external feed.
	Live
)

func (m Mode) String() string {
	switch m {
	case Backtest:
		return "backtest"
	case Live:
		return "live"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "backtest":
		return Backtest, nil
	case "live":
		return Live, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}
