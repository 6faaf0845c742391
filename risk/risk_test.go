package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratsim/account"
	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/sim"
)

func eurusd(t *testing.T) *market.Symbol {
	t.Helper()
	info, ok := market.Lookup("EUR_USD")
	require.True(t, ok)
	info.Commission = 2
	s, err := market.NewSymbol(info)
	require.NoError(t, err)
	return s
}

func TestPlannedLoss(t *testing.T) {
	s := eurusd(t)
	// 20 pips plus 4 commission per lot on half a lot
	assert.InDelta(t, 22, PlannedLoss(s, 0.5, 1.1000, 1.0980), 1e-6)
}

func TestRR(t *testing.T) {
	assert.InDelta(t, 2.0, RR(1.1, 1.09, 1.12), 1e-9)
	assert.Zero(t, RR(1.1, 1.1, 1.2))
}

func TestRiskPct(t *testing.T) {
	assert.InDelta(t, 0.01, RiskPct(100, 10000), 1e-12)
	assert.True(t, RiskPct(1, 0) > 1e300)
}

func TestEvaluate(t *testing.T) {
	s := eurusd(t)
	policy := Policy{
		DefaultRiskPct:  0.005,
		MaxRiskPct:      0.01,
		MaxDailyLossPct: 0.015,
		MaxOpenTrades:   2,
		MaxMarginPct:    0.2,
		MinRR:           1.5,
	}
	intent := TradeIntent{Symbol: s, TradeType: market.Buy, Volume: 0.1, Entry: 1.1000, Stop: 1.0980, TakeProfit: 1.1040}
	acct := AccountSnapshot{Balance: 10000, Equity: 10000}

	d := Evaluate(policy, intent, acct, PnLSnapshot{})
	assert.True(t, d.Allowed, "violations: %v", d.Codes())
	assert.InDelta(t, 2.0, d.PlannedRR, 1e-6)

	tests := []struct {
		name   string
		mutate func(*TradeIntent, *AccountSnapshot, *PnLSnapshot)
		code   string
	}{
		{"no stop", func(i *TradeIntent, _ *AccountSnapshot, _ *PnLSnapshot) { i.Stop = 0 }, "NO_STOP_OR_ENTRY"},
		{"no volume", func(i *TradeIntent, _ *AccountSnapshot, _ *PnLSnapshot) { i.Volume = 0 }, "NO_VOLUME"},
		{"wide stop", func(i *TradeIntent, _ *AccountSnapshot, _ *PnLSnapshot) { i.Stop = 1.0800 }, "RISK_TOO_HIGH"},
		{"poor reward", func(i *TradeIntent, _ *AccountSnapshot, _ *PnLSnapshot) { i.TakeProfit = 1.1010 }, "RR_TOO_LOW"},
		{"open trades", func(_ *TradeIntent, a *AccountSnapshot, _ *PnLSnapshot) { a.OpenTrades = 2 }, "TOO_MANY_OPEN_TRADES"},
		{"margin", func(_ *TradeIntent, a *AccountSnapshot, _ *PnLSnapshot) { a.MarginUsed = 2500 }, "MARGIN_TOO_HIGH"},
		{"daily loss", func(_ *TradeIntent, _ *AccountSnapshot, p *PnLSnapshot) { p.DayRealized = -150 }, "DAILY_LOSS_LIMIT"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			i, a, p := intent, acct, PnLSnapshot{}
			tt.mutate(&i, &a, &p)
			d := Evaluate(policy, i, a, p)
			assert.False(t, d.Allowed)
			assert.Contains(t, d.Codes(), tt.code)
		})
	}
}

func TestEvaluateZeroPolicyAllowsAll(t *testing.T) {
	s := eurusd(t)
	d := Evaluate(Policy{}, TradeIntent{Symbol: s, Volume: 1, Entry: 1.1, Stop: 1.0}, AccountSnapshot{Equity: 1}, PnLSnapshot{DayRealized: -1e6})
	assert.True(t, d.Allowed)
}

func TestSnapshot(t *testing.T) {
	s := eurusd(t)
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) // a Wednesday
	clock := now.Add(-48 * time.Hour)

	ledger, err := account.New(account.Config{Balance: 10000, Leverage: 100})
	require.NoError(t, err)
	e, err := sim.NewEngine(sim.Config{Ledger: ledger, Clock: sim.ClockFunc(func() time.Time { return clock })})
	require.NoError(t, err)

	require.NoError(t, s.PublishTick(1.1, 1.1, clock))
	open := func() *sim.MarketOrder {
		res := e.Execute(sim.OrderParams{Symbol: s, OrderType: sim.Market, TradeType: market.Buy, Volume: 0.1})
		require.True(t, res.IsSuccessful)
		return res.Order.(*sim.MarketOrder)
	}

	// monday loss of 10 pips
	o := open()
	require.NoError(t, s.PublishTick(1.099, 1.099, clock))
	e.CloseMarketOrder(o, "")

	// wednesday gain of 20 pips
	clock = now
	o = open()
	require.NoError(t, s.PublishTick(1.101, 1.101, clock))
	e.CloseMarketOrder(o, "")
	open()

	acct, pnl := Snapshot(e, now)
	assert.Equal(t, 1, acct.OpenTrades)
	assert.InDelta(t, 100, acct.MarginUsed, 1e-9)
	// net of 0.4 commission each
	assert.InDelta(t, 19.6, pnl.DayRealized, 1e-6)
	assert.InDelta(t, 9.2, pnl.WeekRealized, 1e-6)
}
