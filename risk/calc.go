package risk

import (
	"math"

	"github.com/rustyeddy/stratsim/market"
)

// PlannedLoss is what an order of volume on s loses if it is opened at
// entry and stopped out at stop, commission included. It uses the same
// profit model as the trade engine.
func PlannedLoss(s *market.Symbol, volume, entry, stop float64) float64 {
	move := math.Abs(entry - stop)
	return move*math.Pow10(s.Digits)*s.TickValue + s.Commission*2*volume
}

func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	reward := math.Abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

func RiskPct(plannedLoss, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return plannedLoss / equity
}
