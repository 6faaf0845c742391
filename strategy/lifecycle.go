package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/account"
	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/sim"
)

// Driver pushes historical data through the tracked symbols. Run blocks
// until the data is exhausted, Pause or Stop was called, or ctx is done.
// A paused driver continues where it left off on the next Run.
type Driver interface {
	Run(ctx context.Context) error
	Pause()
	Stop()
	OnStopped(fn func()) (unsubscribe func())
}

type Config struct {
	Name     string
	Strategy Strategy
	Engine   *sim.Engine
	Symbols  []*market.Symbol
	Mode     Mode

	// Driver is required in Backtest mode.
	Driver Driver

	Logger logrus.FieldLogger
}

func (c Config) validate() error {
	switch {
	case c.Strategy == nil:
		return fmt.Errorf("%w: strategy is required", ErrInvalidConfig)
	case c.Engine == nil:
		return fmt.Errorf("%w: engine is required", ErrInvalidConfig)
	case len(c.Symbols) == 0:
		return fmt.Errorf("%w: at least one symbol is required", ErrInvalidConfig)
	case c.Mode == Backtest && c.Driver == nil:
		return fmt.Errorf("%w: backtest mode needs a driver", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		if s == nil {
			return fmt.Errorf("%w: nil symbol", ErrInvalidConfig)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate symbol %s", ErrInvalidConfig, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Lifecycle drives one Strategy through Start, Pause, Resume and Stop.
//
// Every hook failure is wrapped in a Fault, forces a Stop and is returned
// to the caller of the operation that invoked the hook. Stop may be called
// from inside any hook or notification; nested calls only liquidate.
// Like the engine it drives, a Lifecycle is used from a single goroutine.
type Lifecycle struct {
	name    string
	strat   Strategy
	engine  *sim.Engine
	symbols []*market.Symbol
	mode    Mode
	driver  Driver
	log     logrus.FieldLogger

	state    State
	stopping bool
	unsubs   []func()
	timers   []*Timer
}

var _ Runtime = (*Lifecycle)(nil)

func New(cfg Config) (*Lifecycle, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("%T", cfg.Strategy)
	}
	return &Lifecycle{
		name:    cfg.Name,
		strat:   cfg.Strategy,
		engine:  cfg.Engine,
		symbols: append([]*market.Symbol(nil), cfg.Symbols...),
		mode:    cfg.Mode,
		driver:  cfg.Driver,
		log: cfg.Logger.WithFields(logrus.Fields{
			"component": "lifecycle",
			"strategy":  cfg.Name,
			"mode":      cfg.Mode,
		}),
	}, nil
}

func (l *Lifecycle) Engine() *sim.Engine        { return l.engine }
func (l *Lifecycle) Account() *account.Ledger   { return l.engine.Ledger() }
func (l *Lifecycle) Symbols() []*market.Symbol  { return append([]*market.Symbol(nil), l.symbols...) }
func (l *Lifecycle) Now() time.Time             { return l.engine.Now() }
func (l *Lifecycle) Mode() Mode                 { return l.mode }
func (l *Lifecycle) State() State               { return l.state }
func (l *Lifecycle) Logger() logrus.FieldLogger { return l.log }

func (l *Lifecycle) Symbol(name string) *market.Symbol {
	for _, s := range l.symbols {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Start subscribes to the tracked symbols and the account, runs OnStart and,
// in Backtest mode, drives the replay until it stops or pauses.
func (l *Lifecycle) Start(ctx context.Context) error {
	if l.state != Stopped {
		return ErrAlreadyRunning
	}
	l.subscribe()
	l.setState(Running)

	if err := l.call(HookOnStart, func() error { return l.strat.OnStart(l) }); err != nil {
		return err
	}
	return l.drive(ctx)
}

// Stop ends the run. In Backtest mode every open market order is closed
// first, even when the lifecycle is already stopped.
func (l *Lifecycle) Stop() error {
	if l.mode == Backtest {
		if n := l.engine.CloseAllMarketOrders("LifecycleStop"); n > 0 {
			l.log.WithField("orders", n).Info("open orders liquidated")
		}
	}
	if l.state == Stopped || l.stopping {
		return nil
	}
	l.stopping = true
	defer func() { l.stopping = false }()

	l.setState(Stopped)
	for _, t := range l.timers {
		t.Stop()
	}
	l.timers = nil
	l.unsubscribe()
	if l.driver != nil {
		l.driver.Stop()
	}

	if err := l.strat.OnStop(l); err != nil {
		f := &Fault{Hook: HookOnStop, Err: err}
		l.log.WithError(err).Error("strategy hook failed")
		return f
	}
	return nil
}

// Pause suspends strategy callbacks. Open orders keep being marked to
// market while paused.
func (l *Lifecycle) Pause() error {
	if l.state != Running {
		return ErrNotRunning
	}
	l.setState(Paused)
	if l.driver != nil {
		l.driver.Pause()
	}
	return l.call(HookOnPause, func() error { return l.strat.OnPause(l) })
}

// Resume continues a paused run and, in Backtest mode, drives the replay
// again.
func (l *Lifecycle) Resume(ctx context.Context) error {
	if l.state != Paused {
		return ErrNotPaused
	}
	l.setState(Running)
	if err := l.call(HookOnResume, func() error { return l.strat.OnResume(l) }); err != nil {
		return err
	}
	return l.drive(ctx)
}

// StartTimer fires the strategy's OnTimer hook every interval of run time
// until the timer or the lifecycle is stopped.
func (l *Lifecycle) StartTimer(interval time.Duration) (*Timer, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	t := &Timer{Interval: interval, next: l.Now().Add(interval)}
	l.timers = append(l.timers, t)
	return t, nil
}

func (l *Lifecycle) drive(ctx context.Context) error {
	if l.mode != Backtest || l.state != Running {
		return nil
	}
	err := l.driver.Run(ctx)
	if err == nil {
		return nil
	}

	var f *Fault
	if errors.As(err, &f) {
		// the failing handler already stopped the run
		return err
	}
	l.log.WithError(err).Error("replay aborted")
	if serr := l.Stop(); serr != nil {
		return errors.Join(err, serr)
	}
	return err
}

func (l *Lifecycle) subscribe() {
	for _, s := range l.symbols {
		l.unsubs = append(l.unsubs, s.OnTick(l.onTick), s.OnBar(l.onBar))
	}
	l.unsubs = append(l.unsubs, l.Account().On(account.MarginCall, l.onMarginCall))
	if l.driver != nil {
		l.unsubs = append(l.unsubs, l.driver.OnStopped(l.onReplayStopped))
	}
}

func (l *Lifecycle) unsubscribe() {
	for _, u := range l.unsubs {
		u()
	}
	l.unsubs = nil
}

func (l *Lifecycle) onTick(s *market.Symbol) error {
	l.engine.UpdateSymbolOrders(s)
	if l.state != Running {
		return nil
	}
	if err := l.fireTimers(); err != nil {
		return err
	}
	if l.state != Running {
		return nil
	}
	return l.call(HookOnTick, func() error { return l.strat.OnTick(l, s) })
}

func (l *Lifecycle) onBar(s *market.Symbol, index int) error {
	if l.state != Running {
		return nil
	}
	return l.call(HookOnBar, func() error { return l.strat.OnBar(l, s, index) })
}

func (l *Lifecycle) onMarginCall(c account.Change) {
	l.log.WithFields(logrus.Fields{
		"equity": c.Equity,
		"margin": c.Margin,
		"note":   c.Note,
	}).Warn("margin call, stopping")
	if err := l.Stop(); err != nil {
		l.log.WithError(err).Error("stop on margin call")
	}
}

func (l *Lifecycle) onReplayStopped() {
	if err := l.Stop(); err != nil {
		l.log.WithError(err).Error("stop on end of replay")
	}
}

func (l *Lifecycle) fireTimers() error {
	h, ok := l.strat.(TimerHandler)
	if !ok || len(l.timers) == 0 {
		return nil
	}
	now := l.Now()
	for _, t := range append([]*Timer(nil), l.timers...) {
		t := t
		if !t.due(now) {
			continue
		}
		if err := l.call(HookOnTimer, func() error { return h.OnTimer(l, t) }); err != nil {
			return err
		}
		if l.state != Running {
			return nil
		}
	}
	return nil
}

// call runs a hook. A failure is wrapped, logged and forces a Stop.
func (l *Lifecycle) call(hook Hook, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	f := &Fault{Hook: hook, Err: err}
	l.log.WithError(err).WithField("hook", hook).Error("strategy hook failed")
	if serr := l.Stop(); serr != nil {
		l.log.WithError(serr).Error("forced stop")
	}
	return f
}

func (l *Lifecycle) setState(s State) {
	if l.state == s {
		return
	}
	l.log.WithFields(logrus.Fields{
		"from": l.state,
		"to":   s,
	}).Info("state changed")
	l.state = s
}
