package strategies

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/sim"
	"github.com/rustyeddy/stratsim/strategy"
)

var openOnceParams = []strategy.Param{
	volumeParam,
	{Name: "sell", Min: 0, Max: 1, Default: 0, Step: 1},
	{Name: "stop_pips", Min: 0, Max: 10000, Default: 0, Step: 1},
	{Name: "take_pips", Min: 0, Max: 10000, Default: 0, Step: 1},
}

// OpenOnce opens a single market order on the first tick and holds it.
type OpenOnce struct {
	strategy.Base

	Symbol    string
	TradeType market.TradeType
	Volume    float64
	StopPips  float64
	TakePips  float64

	attempted bool
	order     *sim.MarketOrder
}

func newOpenOnce(s Settings) (strategy.Strategy, error) {
	o := &OpenOnce{
		Symbol:   s.Symbol,
		Volume:   s.Params.Float("volume"),
		StopPips: s.Params.Float("stop_pips"),
		TakePips: s.Params.Float("take_pips"),
	}
	if s.Params.Int("sell") == 1 {
		o.TradeType = market.Sell
	}
	return o, nil
}

func (o *OpenOnce) Params() []strategy.Param { return openOnceParams }

// Order returns the opened order, nil until it was opened.
func (o *OpenOnce) Order() *sim.MarketOrder { return o.order }

func (o *OpenOnce) OnStart(rt strategy.Runtime) error {
	s, err := traded(rt, o.Symbol)
	if err != nil {
		return fmt.Errorf("open-once: %w", err)
	}
	if err := s.ValidateVolume(o.Volume); err != nil {
		return fmt.Errorf("open-once: %w", err)
	}
	o.Symbol = s.Name
	return nil
}

func (o *OpenOnce) OnTick(rt strategy.Runtime, s *market.Symbol) error {
	if o.attempted || s.Name != o.Symbol {
		return nil
	}
	o.attempted = true

	sl, tp := stops(s, o.TradeType, s.GetPrice(o.TradeType), o.StopPips, o.TakePips)
	res := rt.Engine().Execute(sim.OrderParams{
		Symbol:     s,
		OrderType:  sim.Market,
		TradeType:  o.TradeType,
		Volume:     o.Volume,
		StopLoss:   sl,
		TakeProfit: tp,
		Comment:    "open-once",
	})
	if !res.IsSuccessful {
		rt.Logger().WithFields(logrus.Fields{
			"symbol": s.Name,
			"reason": res.Err.Error(),
		}).Warn("open-once: order rejected")
		return nil
	}
	o.order = res.Order.(*sim.MarketOrder)
	return nil
}
