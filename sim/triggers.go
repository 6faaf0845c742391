// sim/triggers.go
package sim

import "github.com/rustyeddy/stratsim/market"

// Longs are evaluated on the bid, shorts on the ask. An unset bound never
// triggers.
func hitStopLoss(o *MarketOrder, bid, ask float64) bool {
	if o.StopLoss == nil {
		return false
	}
	if o.TradeType == market.Buy {
		return bid <= *o.StopLoss
	}
	return ask >= *o.StopLoss
}

func hitTakeProfit(o *MarketOrder, bid, ask float64) bool {
	if o.TakeProfit == nil {
		return false
	}
	if o.TradeType == market.Buy {
		return bid >= *o.TakeProfit
	}
	return ask <= *o.TakeProfit
}

func closeReason(o *MarketOrder, bid, ask float64) string {
	switch {
	case hitStopLoss(o, bid, ask):
		return "StopLoss"
	case hitTakeProfit(o, bid, ask):
		return "TakeProfit"
	}
	return ""
}

// validTarget reports whether a pending order may be placed at target given
// the current quote.
func validTarget(typ OrderType, side market.TradeType, target, bid, ask float64) bool {
	switch {
	case typ == Limit && side == market.Buy:
		return target < ask
	case typ == Limit && side == market.Sell:
		return target > bid
	case typ == Stop && side == market.Buy:
		return target > ask
	case typ == Stop && side == market.Sell:
		return target < bid
	}
	return false
}

// triggered reports whether a pending order fills at price, the execution
// side price of its trade type.
func triggered(o *PendingOrder, price float64) bool {
	switch {
	case o.OrderType == Limit && o.TradeType == market.Buy:
		return price <= o.TargetPrice
	case o.OrderType == Stop && o.TradeType == market.Buy:
		return price >= o.TargetPrice
	case o.OrderType == Limit && o.TradeType == market.Sell:
		return price >= o.TargetPrice
	case o.OrderType == Stop && o.TradeType == market.Sell:
		return price <= o.TargetPrice
	}
	return false
}
