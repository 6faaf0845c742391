package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratsim/account"
	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/sim"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// recorder logs every hook it receives. A hook returns the matching fn
// result when set, else the error in fail.
type recorder struct {
	calls []string
	fail  map[Hook]error

	onStart func(rt Runtime) error
	onStop  func(rt Runtime) error
	onTick  func(rt Runtime, s *market.Symbol) error
	onBar   func(rt Runtime, s *market.Symbol, index int) error
}

func (r *recorder) hook(h Hook) error {
	r.calls = append(r.calls, string(h))
	return r.fail[h]
}

func (r *recorder) OnStart(rt Runtime) error {
	if err := r.hook(HookOnStart); err != nil || r.onStart == nil {
		return err
	}
	return r.onStart(rt)
}

func (r *recorder) OnStop(rt Runtime) error {
	if err := r.hook(HookOnStop); err != nil || r.onStop == nil {
		return err
	}
	return r.onStop(rt)
}

func (r *recorder) OnPause(Runtime) error  { return r.hook(HookOnPause) }
func (r *recorder) OnResume(Runtime) error { return r.hook(HookOnResume) }

func (r *recorder) OnTick(rt Runtime, s *market.Symbol) error {
	if err := r.hook(HookOnTick); err != nil || r.onTick == nil {
		return err
	}
	return r.onTick(rt, s)
}

func (r *recorder) OnBar(rt Runtime, s *market.Symbol, index int) error {
	if err := r.hook(HookOnBar); err != nil || r.onBar == nil {
		return err
	}
	return r.onBar(rt, s, index)
}

func (r *recorder) count(h Hook) int {
	n := 0
	for _, c := range r.calls {
		if c == string(h) {
			n++
		}
	}
	return n
}

// scriptDriver publishes a fixed list of bars to one symbol.
type scriptDriver struct {
	sym  *market.Symbol
	bars []market.Bar

	pos     int
	runs    int
	paused  bool
	stopped bool
	subs    []*func()
}

func (d *scriptDriver) Run(ctx context.Context) error {
	d.runs++
	d.paused = false
	for d.pos < len(d.bars) {
		if d.stopped || d.paused {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		b := d.bars[d.pos]
		d.pos++
		if _, err := d.sym.PublishBar(b); err != nil {
			d.Stop()
			return err
		}
	}
	d.Stop()
	return nil
}

func (d *scriptDriver) Pause() { d.paused = true }

func (d *scriptDriver) Stop() {
	if d.stopped {
		return
	}
	d.stopped = true
	for _, fn := range d.subs {
		if *fn != nil {
			(*fn)()
		}
	}
}

func (d *scriptDriver) OnStopped(fn func()) func() {
	f := fn
	d.subs = append(d.subs, &f)
	return func() { f = nil }
}

type fixture struct {
	symbol *market.Symbol
	ledger *account.Ledger
	engine *sim.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	info, ok := market.Lookup("EUR_USD")
	require.True(t, ok)
	sym, err := market.NewSymbol(info)
	require.NoError(t, err)

	ledger, err := account.New(account.Config{ID: "test", Currency: "USD", Balance: 10000, Leverage: 100})
	require.NoError(t, err)

	engine, err := sim.NewEngine(sim.Config{
		Ledger: ledger,
		Clock:  sim.ClockFunc(func() time.Time { return sym.Time() }),
	})
	require.NoError(t, err)

	return &fixture{symbol: sym, ledger: ledger, engine: engine}
}

func (f *fixture) lifecycle(t *testing.T, s Strategy, mode Mode, d Driver) *Lifecycle {
	t.Helper()
	l, err := New(Config{Name: "test", Strategy: s, Engine: f.engine, Symbols: []*market.Symbol{f.symbol}, Mode: mode, Driver: d})
	require.NoError(t, err)
	return l
}

func (f *fixture) driver(closes ...float64) *scriptDriver {
	d := &scriptDriver{sym: f.symbol}
	for i, c := range closes {
		d.bars = append(d.bars, market.Bar{
			Time: t0.Add(time.Duration(i) * time.Hour), Open: c, High: c, Low: c, Close: c, Volume: 1,
		})
	}
	return d
}

func (f *fixture) buy(t *testing.T, tp *float64) *sim.MarketOrder {
	t.Helper()
	res := f.engine.Execute(sim.OrderParams{Symbol: f.symbol, OrderType: sim.Market, TradeType: market.Buy, Volume: 0.1, TakeProfit: tp})
	require.True(t, res.IsSuccessful, "execute: %v", res.Err)
	return res.Order.(*sim.MarketOrder)
}
