package strategies

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/sim"
	"github.com/rustyeddy/stratsim/strategy"
)

var volumeParam = strategy.Param{Name: "volume", Min: 0.01, Max: 100, Default: 0.1, Step: 0.01}

// traded resolves the symbol a single-symbol strategy trades.
func traded(rt strategy.Runtime, name string) (*market.Symbol, error) {
	if name == "" {
		return rt.Symbols()[0], nil
	}
	if s := rt.Symbol(name); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("symbol %s is not tracked", name)
}

// stops converts pip distances into stop loss and take profit prices for
// an order of side entered at entry. A zero distance leaves the bound unset.
func stops(s *market.Symbol, side market.TradeType, entry, stopPips, takePips float64) (sl, tp *float64) {
	dir := 1.0
	if side == market.Sell {
		dir = -1
	}
	pip := s.PipSize()
	if stopPips > 0 {
		v := entry - dir*stopPips*pip
		sl = &v
	}
	if takePips > 0 {
		v := entry + dir*takePips*pip
		tp = &v
	}
	return sl, tp
}

// tradable reports whether volume is a valid order size on s. An invalid
// size is logged and the order must not be sent.
func tradable(rt strategy.Runtime, s *market.Symbol, volume float64, signal string) bool {
	if err := s.ValidateVolume(volume); err != nil {
		rt.Logger().WithFields(logrus.Fields{
			"symbol": s.Name,
			"signal": signal,
			"volume": volume,
		}).WithError(err).Warn("order skipped")
		return false
	}
	return true
}

func marketOrdersOf(e *sim.Engine, s *market.Symbol) []*sim.MarketOrder {
	var out []*sim.MarketOrder
	for _, o := range e.MarketOrders() {
		if o.Symbol == s {
			out = append(out, o)
		}
	}
	return out
}

func pendingOrdersOf(e *sim.Engine, s *market.Symbol) []*sim.PendingOrder {
	var out []*sim.PendingOrder
	for _, o := range e.PendingOrders() {
		if o.Symbol == s {
			out = append(out, o)
		}
	}
	return out
}

// closeSide closes the open orders of side on s and returns how many.
func closeSide(e *sim.Engine, s *market.Symbol, side market.TradeType, reason string) int {
	n := 0
	for _, o := range marketOrdersOf(e, s) {
		if o.TradeType == side && e.CloseMarketOrder(o, reason) {
			n++
		}
	}
	return n
}

func opposite(side market.TradeType) market.TradeType {
	if side == market.Buy {
		return market.Sell
	}
	return market.Buy
}
