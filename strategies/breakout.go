package strategies

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/sim"
	"github.com/rustyeddy/stratsim/strategy"
)

var breakoutParams = []strategy.Param{
	{Name: "lookback", Min: 2, Max: 500, Default: 20, Step: 1},
	volumeParam,
	{Name: "offset_pips", Min: 0, Max: 1000, Default: 1, Step: 1},
	{Name: "stop_pips", Min: 0, Max: 10000, Default: 30, Step: 1},
	{Name: "take_pips", Min: 0, Max: 10000, Default: 60, Step: 1},
	{Name: "expiry_minutes", Min: 0, Max: 10080, Default: 0, Step: 1},
}

// Breakout brackets the range of the last Lookback bars with a buy stop
// above the high and a sell stop below the low. Once one side fills the
// other is canceled. With an expiry, unfilled brackets are canceled every
// Expiry and placed again on the next bar.
type Breakout struct {
	strategy.Base

	Symbol     string
	Lookback   int
	Volume     float64
	OffsetPips float64
	StopPips   float64
	TakePips   float64
	Expiry     time.Duration
}

func newBreakout(s Settings) (strategy.Strategy, error) {
	return &Breakout{
		Symbol:     s.Symbol,
		Lookback:   s.Params.Int("lookback"),
		Volume:     s.Params.Float("volume"),
		OffsetPips: s.Params.Float("offset_pips"),
		StopPips:   s.Params.Float("stop_pips"),
		TakePips:   s.Params.Float("take_pips"),
		Expiry:     time.Duration(s.Params.Int("expiry_minutes")) * time.Minute,
	}, nil
}

func (b *Breakout) Params() []strategy.Param { return breakoutParams }

func (b *Breakout) OnStart(rt strategy.Runtime) error {
	s, err := traded(rt, b.Symbol)
	if err != nil {
		return fmt.Errorf("breakout: %w", err)
	}
	b.Symbol = s.Name
	if b.Expiry > 0 {
		if _, err := rt.StartTimer(b.Expiry); err != nil {
			return err
		}
	}
	return nil
}

func (b *Breakout) OnTick(rt strategy.Runtime, s *market.Symbol) error {
	if s.Name != b.Symbol {
		return nil
	}
	e := rt.Engine()
	if len(marketOrdersOf(e, s)) == 0 {
		return nil
	}
	// one side filled: drop the other
	for _, po := range pendingOrdersOf(e, s) {
		e.CancelPendingOrder(po)
	}
	return nil
}

func (b *Breakout) OnBar(rt strategy.Runtime, s *market.Symbol, index int) error {
	if s.Name != b.Symbol || index+1 < b.Lookback {
		return nil
	}
	e := rt.Engine()
	if len(marketOrdersOf(e, s)) > 0 || len(pendingOrdersOf(e, s)) > 0 {
		return nil
	}

	high, err := stats.Max(s.Bars().High.Tail(b.Lookback))
	if err != nil {
		return err
	}
	low, err := stats.Min(s.Bars().Low.Tail(b.Lookback))
	if err != nil {
		return err
	}
	if !tradable(rt, s, b.Volume, "breakout") {
		return nil
	}
	offset := b.OffsetPips * s.PipSize()

	b.place(rt, s, market.Buy, high+offset)
	b.place(rt, s, market.Sell, low-offset)
	return nil
}

func (b *Breakout) OnTimer(rt strategy.Runtime, _ *strategy.Timer) error {
	s := rt.Symbol(b.Symbol)
	for _, po := range pendingOrdersOf(rt.Engine(), s) {
		rt.Engine().CancelPendingOrder(po)
	}
	return nil
}

func (b *Breakout) place(rt strategy.Runtime, s *market.Symbol, side market.TradeType, target float64) {
	sl, tp := stops(s, side, target, b.StopPips, b.TakePips)
	res := rt.Engine().Execute(sim.OrderParams{
		Symbol:      s,
		OrderType:   sim.Stop,
		TradeType:   side,
		Volume:      b.Volume,
		TargetPrice: target,
		StopLoss:    sl,
		TakeProfit:  tp,
		Comment:     "breakout",
	})
	if !res.IsSuccessful {
		rt.Logger().WithField("reason", res.Err.Error()).Debug("breakout: bracket not placed")
	}
}
