package sim

import (
	"time"

	"github.com/rustyeddy/stratsim/market"
)

// Trade is the immutable record of a closed market order.
type Trade struct {
	ID         string
	OrderID    string
	Symbol     string
	TradeType  market.TradeType
	Volume     float64
	EntryPrice float64
	ClosePrice float64
	OpenTime   time.Time
	CloseTime  time.Time
	StopLoss   *float64
	TakeProfit *float64

	Commission  float64
	MarginUsed  float64
	GrossProfit float64
	NetProfit   float64

	Comment string
	Reason  string
}

func newTrade(id string, o *MarketOrder, closePrice float64, closeTime time.Time, reason string) Trade {
	return Trade{
		ID:          id,
		OrderID:     o.ID,
		Symbol:      o.Symbol.Name,
		TradeType:   o.TradeType,
		Volume:      o.Volume,
		EntryPrice:  o.EntryPrice,
		ClosePrice:  closePrice,
		OpenTime:    o.OpenTime,
		CloseTime:   closeTime,
		StopLoss:    copyPtr(o.StopLoss),
		TakeProfit:  copyPtr(o.TakeProfit),
		Commission:  o.Commission,
		MarginUsed:  o.MarginUsed,
		GrossProfit: o.GrossProfit,
		NetProfit:   o.NetProfit,
		Comment:     o.Comment,
		Reason:      reason,
	}
}
