package strategies

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/indicators"
	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/risk"
	"github.com/rustyeddy/stratsim/sim"
	"github.com/rustyeddy/stratsim/strategy"
)

var emaCrossParams = []strategy.Param{
	{Name: "fast", Min: 2, Max: 200, Default: 20, Step: 1},
	{Name: "slow", Min: 3, Max: 500, Default: 50, Step: 1},
	volumeParam,
	{Name: "stop_pips", Min: 1, Max: 10000, Default: 20, Step: 1},
	{Name: "rr", Min: 0.5, Max: 10, Default: 2, Step: 0.5},
	{Name: "risk_pct", Min: 0.001, Max: 0.1, Default: 0.01, Step: 0.001},
	{Name: "max_daily_loss_pct", Min: 0, Max: 1, Default: 0.03, Step: 0.005},
}

// EMACross trades a fast/slow EMA crossover of bar closes.
//   - Enters only on cross
//   - Reverses on opposite cross (close then open)
//   - Fixed stop in pips, take profit at RR times the stop
//   - Every entry must pass the risk policy
type EMACross struct {
	strategy.Base

	Symbol   string
	Volume   float64
	StopPips float64
	RR       float64
	Policy   risk.Policy

	fast *indicators.ExponentialMA
	slow *indicators.ExponentialMA

	lastDiff     float64
	haveLastDiff bool
}

func newEMACross(s Settings) (strategy.Strategy, error) {
	fast, slow := s.Params.Int("fast"), s.Params.Int("slow")
	if fast >= slow {
		return nil, fmt.Errorf("ema-cross: fast period %d must be below slow period %d", fast, slow)
	}
	return &EMACross{
		Symbol:   s.Symbol,
		Volume:   s.Params.Float("volume"),
		StopPips: s.Params.Float("stop_pips"),
		RR:       s.Params.Float("rr"),
		Policy: risk.Policy{
			MaxRiskPct:      s.Params.Float("risk_pct"),
			MaxDailyLossPct: s.Params.Float("max_daily_loss_pct"),
		},
		fast: indicators.NewEMA(fast),
		slow: indicators.NewEMA(slow),
	}, nil
}

func (c *EMACross) Params() []strategy.Param { return emaCrossParams }

func (c *EMACross) OnStart(rt strategy.Runtime) error {
	s, err := traded(rt, c.Symbol)
	if err != nil {
		return fmt.Errorf("ema-cross: %w", err)
	}
	c.Symbol = s.Name
	c.fast.Reset()
	c.slow.Reset()
	c.haveLastDiff = false
	return nil
}

func (c *EMACross) OnBar(rt strategy.Runtime, s *market.Symbol, index int) error {
	if s.Name != c.Symbol {
		return nil
	}
	bar, _ := s.Bars().Bar(index)
	c.fast.Update(bar)
	c.slow.Update(bar)

	// wait until both EMAs are warmed up
	if !c.fast.Ready() || !c.slow.Ready() {
		return nil
	}
	diff := c.fast.Value() - c.slow.Value()
	if !c.haveLastDiff {
		c.lastDiff = diff
		c.haveLastDiff = true
		return nil
	}

	bullCross := diff > 0 && c.lastDiff <= 0
	bearCross := diff < 0 && c.lastDiff >= 0
	c.lastDiff = diff

	switch {
	case bullCross:
		c.onSignal(rt, s, market.Buy, "BullCross")
	case bearCross:
		c.onSignal(rt, s, market.Sell, "BearCross")
	}
	return nil
}

func (c *EMACross) onSignal(rt strategy.Runtime, s *market.Symbol, side market.TradeType, signal string) {
	e := rt.Engine()
	closeSide(e, s, opposite(side), "ExitOn"+signal)
	// already positioned with the cross
	if len(marketOrdersOf(e, s)) > 0 || !tradable(rt, s, c.Volume, signal) {
		return
	}

	entry := s.GetPrice(side)
	sl, tp := stops(s, side, entry, c.StopPips, c.StopPips*c.RR)
	log := rt.Logger().WithFields(logrus.Fields{
		"symbol": s.Name,
		"signal": signal,
	})

	acct, pnl := risk.Snapshot(e, rt.Now())
	d := risk.Evaluate(c.Policy, risk.TradeIntent{
		Now:        rt.Now(),
		Symbol:     s,
		TradeType:  side,
		Volume:     c.Volume,
		Entry:      entry,
		Stop:       *sl,
		TakeProfit: *tp,
	}, acct, pnl)
	if !d.Allowed {
		log.WithField("violations", d.Codes()).Info("ema-cross: entry blocked by risk policy")
		return
	}

	res := e.Execute(sim.OrderParams{
		Symbol:     s,
		OrderType:  sim.Market,
		TradeType:  side,
		Volume:     c.Volume,
		StopLoss:   sl,
		TakeProfit: tp,
		Comment:    signal,
	})
	if !res.IsSuccessful {
		log.WithField("reason", res.Err.Error()).Warn("ema-cross: entry rejected")
	}
}
