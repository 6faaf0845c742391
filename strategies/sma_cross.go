package strategies

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/indicators"
	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/sim"
	"github.com/rustyeddy/stratsim/strategy"
)

var smaCrossParams = []strategy.Param{
	{Name: "fast", Min: 2, Max: 200, Default: 10, Step: 1},
	{Name: "slow", Min: 3, Max: 500, Default: 30, Step: 1},
	volumeParam,
	{Name: "stop_pips", Min: 0, Max: 10000, Default: 0, Step: 1},
	{Name: "take_pips", Min: 0, Max: 10000, Default: 0, Step: 1},
}

// SMACross trades a simple moving average crossover of bar closes. It is
// always in the market after the first cross: an opposite cross closes the
// position and opens the reverse one.
type SMACross struct {
	strategy.Base

	Symbol   string
	Fast     int
	Slow     int
	Volume   float64
	StopPips float64
	TakePips float64

	lastDiff     float64
	haveLastDiff bool
}

func newSMACross(s Settings) (strategy.Strategy, error) {
	c := &SMACross{
		Symbol:   s.Symbol,
		Fast:     s.Params.Int("fast"),
		Slow:     s.Params.Int("slow"),
		Volume:   s.Params.Float("volume"),
		StopPips: s.Params.Float("stop_pips"),
		TakePips: s.Params.Float("take_pips"),
	}
	if c.Fast >= c.Slow {
		return nil, fmt.Errorf("sma-cross: fast period %d must be below slow period %d", c.Fast, c.Slow)
	}
	return c, nil
}

func (c *SMACross) Params() []strategy.Param { return smaCrossParams }

func (c *SMACross) OnStart(rt strategy.Runtime) error {
	s, err := traded(rt, c.Symbol)
	if err != nil {
		return fmt.Errorf("sma-cross: %w", err)
	}
	c.Symbol = s.Name
	c.haveLastDiff = false
	return nil
}

func (c *SMACross) OnBar(rt strategy.Runtime, s *market.Symbol, index int) error {
	if s.Name != c.Symbol || index+1 < c.Slow {
		return nil
	}

	closes := s.Bars().Close
	fast, err := indicators.MA(closes.Tail(c.Fast), c.Fast)
	if err != nil {
		return err
	}
	slow, err := indicators.MA(closes.Tail(c.Slow), c.Slow)
	if err != nil {
		return err
	}
	diff := fast - slow

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
		c.enter(rt, s, market.Buy, "BullCross")
	case bearCross:
		c.enter(rt, s, market.Sell, "BearCross")
	}
	return nil
}

func (c *SMACross) enter(rt strategy.Runtime, s *market.Symbol, side market.TradeType, signal string) {
	e := rt.Engine()
	closeSide(e, s, opposite(side), "ExitOn"+signal)
	if len(marketOrdersOf(e, s)) > 0 || !tradable(rt, s, c.Volume, signal) {
		return
	}

	sl, tp := stops(s, side, s.GetPrice(side), c.StopPips, c.TakePips)
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
		rt.Logger().WithFields(logrus.Fields{
			"symbol": s.Name,
			"signal": signal,
			"reason": res.Err.Error(),
		}).Warn("sma-cross: entry rejected")
	}
}
