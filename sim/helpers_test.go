package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratsim/account"
	"github.com/rustyeddy/stratsim/journal"
	"github.com/rustyeddy/stratsim/market"
)

type testJournal struct {
	trades []journal.TradeRecord
	events []journal.EventRecord
	equity []journal.EquitySnapshot
	closed bool
}

func (j *testJournal) RecordTrade(rec journal.TradeRecord) error {
	j.trades = append(j.trades, rec)
	return nil
}

func (j *testJournal) RecordEvent(rec journal.EventRecord) error {
	j.events = append(j.events, rec)
	return nil
}

func (j *testJournal) RecordEquity(rec journal.EquitySnapshot) error {
	j.equity = append(j.equity, rec)
	return nil
}

func (j *testJournal) Close() error {
	j.closed = true
	return nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fixture struct {
	engine  *Engine
	ledger  *account.Ledger
	journal *testJournal
	clock   *fakeClock
}

func newFixture(t *testing.T, balance, leverage float64) *fixture {
	t.Helper()
	ledger, err := account.New(account.Config{ID: "acct-1", Currency: "USD", Balance: balance, Leverage: leverage})
	require.NoError(t, err)

	f := &fixture{
		ledger:  ledger,
		journal: &testJournal{},
		clock:   &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.engine, err = NewEngine(Config{Ledger: ledger, Clock: f.clock, Journal: f.journal, RunID: "run-1"})
	require.NoError(t, err)
	return f
}

func newSymbol(t *testing.T, mutate ...func(*market.SymbolInfo)) *market.Symbol {
	t.Helper()
	info := market.SymbolInfo{
		Name:            "EUR_USD",
		TickSize:        0.0001,
		TickValue:       1,
		Digits:          4,
		MinVolume:       0.01,
		MaxVolume:       100,
		VolumeStep:      0.01,
		VolumeUnitValue: 100_000,
	}
	for _, m := range mutate {
		m(&info)
	}
	s, err := market.NewSymbol(info)
	require.NoError(t, err)
	return s
}

func quote(t *testing.T, s *market.Symbol, bid, ask float64) {
	t.Helper()
	require.NoError(t, s.PublishTick(bid, ask, time.Time{}))
}

func (f *fixture) open(t *testing.T, s *market.Symbol, side market.TradeType, volume float64, sl, tp *float64) *MarketOrder {
	t.Helper()
	res := f.engine.Execute(OrderParams{Symbol: s, OrderType: Market, TradeType: side, Volume: volume, StopLoss: sl, TakeProfit: tp})
	require.True(t, res.IsSuccessful, "execute failed: %v", res.Err)
	return res.Order.(*MarketOrder)
}

func eventTypes(events []TradingEvent) []EventType {
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}
