// Package strategy runs user strategies against the simulation engine.
//
// A Strategy supplies hooks; a Lifecycle owns the run state (Stopped,
// Running, Paused), subscribes the hooks to the tracked symbols and the
// account, and guarantees a forced stop whenever a hook fails.
package strategy

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/account"
	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/sim"
)

// Strategy is the set of hooks a Lifecycle invokes. Embed Base to get
// no-op defaults and implement only what is needed.
type Strategy interface {
	OnStart(rt Runtime) error
	OnStop(rt Runtime) error
	OnPause(rt Runtime) error
	OnResume(rt Runtime) error
	OnTick(rt Runtime, s *market.Symbol) error
	OnBar(rt Runtime, s *market.Symbol, index int) error
}

// TimerHandler is implemented by strategies that start timers.
type TimerHandler interface {
	OnTimer(rt Runtime, t *Timer) error
}

// Base implements every Strategy hook as a no-op.
type Base struct{}

func (Base) OnStart(Runtime) error                    { return nil }
func (Base) OnStop(Runtime) error                     { return nil }
func (Base) OnPause(Runtime) error                    { return nil }
func (Base) OnResume(Runtime) error                   { return nil }
func (Base) OnTick(Runtime, *market.Symbol) error     { return nil }
func (Base) OnBar(Runtime, *market.Symbol, int) error { return nil }

// Runtime is what a strategy sees of the run it belongs to.
type Runtime interface {
	Engine() *sim.Engine
	Account() *account.Ledger
	Symbols() []*market.Symbol
	Symbol(name string) *market.Symbol
	Now() time.Time
	Mode() Mode
	State() State
	Logger() logrus.FieldLogger

	StartTimer(interval time.Duration) (*Timer, error)
	Pause() error
	Stop() error
}
