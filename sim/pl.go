package sim

import (
	"math"

	"github.com/rustyeddy/stratsim/market"
)

// GrossProfit is the price move in quote digits times the tick value:
// longs move with the bid, shorts with the ask.
func GrossProfit(o *MarketOrder, bid, ask float64, digits int, tickValue float64) float64 {
	move := bid - o.EntryPrice
	if o.TradeType == market.Sell {
		move = o.EntryPrice - ask
	}
	return move * math.Pow10(digits) * tickValue
}

// NetProfit deducts the round trip commission of the order's volume.
func NetProfit(o *MarketOrder, gross float64) float64 {
	return gross - o.Commission*o.Volume
}
