package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/stratsim/market"
)

// OrderType selects how Execute handles a request.
type OrderType int

const (
	Market OrderType = iota
	Limit
	Stop
)

func (t OrderType) String() string {
	switch t {
	case Market:
		return "Market"
	case Limit:
		return "Limit"
	case Stop:
		return "Stop"
	}
	return fmt.Sprintf("OrderType(%d)", int(t))
}

// OrderParams is a request to Execute. Volume must already satisfy
// Symbol.ValidateVolume; the engine does not check it again.
type OrderParams struct {
	Symbol      *market.Symbol
	OrderType   OrderType
	TradeType   market.TradeType
	Volume      float64
	TargetPrice float64 // pending orders only
	StopLoss    *float64
	TakeProfit  *float64
	Comment     string
}

// OrderBase holds what market and pending orders share. Everything but
// StopLoss and TakeProfit is fixed at creation.
type OrderBase struct {
	ID         string
	Symbol     *market.Symbol
	TradeType  market.TradeType
	Volume     float64
	Comment    string
	OpenTime   time.Time
	StopLoss   *float64
	TakeProfit *float64
}

func (b *OrderBase) Base() *OrderBase { return b }

// Order is either a *MarketOrder or a *PendingOrder.
type Order interface {
	Base() *OrderBase
	Kind() OrderType
}

// MarketOrder is an open position. GrossProfit and NetProfit are marked to
// market by Engine.UpdateSymbolOrders.
type MarketOrder struct {
	OrderBase

	EntryPrice  float64
	Commission  float64 // round trip, per unit of volume
	MarginUsed  float64
	GrossProfit float64
	NetProfit   float64
}

func (o *MarketOrder) Kind() OrderType { return Market }

// PendingOrder becomes a market order once price crosses TargetPrice.
type PendingOrder struct {
	OrderBase

	OrderType   OrderType
	TargetPrice float64
}

func (o *PendingOrder) Kind() OrderType { return o.OrderType }

func ptr(v float64) *float64 { return &v }

func copyPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return ptr(*p)
}
