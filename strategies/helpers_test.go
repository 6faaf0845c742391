package strategies

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratsim/account"
	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/replay"
	"github.com/rustyeddy/stratsim/sim"
	"github.com/rustyeddy/stratsim/strategy"
)

var t0 = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	symbol    *market.Symbol
	ledger    *account.Ledger
	engine    *sim.Engine
	lifecycle *strategy.Lifecycle
}

func closes(cs ...float64) []market.Bar {
	out := make([]market.Bar, len(cs))
	for i, c := range cs {
		out[i] = market.Bar{Time: t0.Add(time.Duration(i) * time.Hour), Open: c, High: c, Low: c, Close: c}
	}
	return out
}

// backtest runs s over bars of EUR_USD and returns once the replay stopped.
func backtest(t *testing.T, s strategy.Strategy, bars []market.Bar) (*harness, error) {
	t.Helper()
	info, _ := market.Lookup("EUR_USD")
	return backtestOn(t, info, s, bars)
}

// backtestOn runs s over bars of a symbol described by info.
func backtestOn(t *testing.T, info market.SymbolInfo, s strategy.Strategy, bars []market.Bar) (*harness, error) {
	t.Helper()
	sym, err := market.NewSymbol(info)
	require.NoError(t, err)

	ledger, err := account.New(account.Config{ID: "test", Currency: "USD", Balance: 10000, Leverage: 100})
	require.NoError(t, err)

	clock := replay.NewClock(bars[0].Time)
	engine, err := sim.NewEngine(sim.Config{Ledger: ledger, Clock: clock})
	require.NoError(t, err)

	orch, err := replay.New(replay.Config{Feeds: []replay.Feed{{Symbol: sym, Bars: bars}}, Clock: clock, Results: engine})
	require.NoError(t, err)

	lc, err := strategy.New(strategy.Config{Strategy: s, Engine: engine, Symbols: []*market.Symbol{sym}, Driver: orch})
	require.NoError(t, err)

	h := &harness{symbol: sym, ledger: ledger, engine: engine, lifecycle: lc}
	return h, lc.Start(context.Background())
}

func build(t *testing.T, name string, params map[string]float64) strategy.Strategy {
	t.Helper()
	s, err := New(name, "", params)
	require.NoError(t, err)
	return s
}

func reasons(trades []sim.Trade) []string {
	out := make([]string, len(trades))
	for i, tr := range trades {
		out[i] = tr.Reason
	}
	return out
}

func countEvents(events []sim.TradingEvent, typ sim.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
