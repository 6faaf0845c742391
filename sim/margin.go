package sim

import "github.com/rustyeddy/stratsim/market"

// RequiredMargin is the margin reserved by opening volume on s.
func RequiredMargin(s *market.Symbol, volume, leverage float64) float64 {
	return volume * s.VolumeUnitValue / leverage
}

// EntryPrice applies the symbol's slippage, in ticks, against the trader.
func EntryPrice(s *market.Symbol, side market.TradeType) float64 {
	slip := s.Slippage * s.TickSize
	if side == market.Buy {
		return s.Ask() + slip
	}
	return s.Bid() - slip
}
