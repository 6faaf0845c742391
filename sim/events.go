package sim

import (
	"fmt"
	"time"
)

type EventType int

const (
	MarketOrderExecuted EventType = iota
	MarketOrderClosed
	PendingOrderPlaced
	PendingOrderFilled
	PendingOrderCanceled
	OrderModified
)

var eventNames = map[EventType]string{
	MarketOrderExecuted:  "MarketOrderExecuted",
	MarketOrderClosed:    "MarketOrderClosed",
	PendingOrderPlaced:   "PendingOrderPlaced",
	PendingOrderFilled:   "PendingOrderFilled",
	PendingOrderCanceled: "PendingOrderCanceled",
	OrderModified:        "OrderModified",
}

func (t EventType) String() string {
	if n, ok := eventNames[t]; ok {
		return n
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// TradingEvent is one entry of the engine's append-only journal.
type TradingEvent struct {
	Seq   int
	Time  time.Time
	Type  EventType
	Order Order
	Note  string
}
