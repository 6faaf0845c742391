package sim

import "fmt"

// TradeError is a rejection returned inside a TradeResult. Rejections are
// ordinary outcomes for strategy code, not Go errors.
type TradeError int

const (
	ErrNotEnoughMargin TradeError = iota + 1
	ErrInvalidTargetPrice
	ErrUnknownOrderType
	ErrMissingSymbol
)

func (e TradeError) Error() string {
	switch e {
	case ErrNotEnoughMargin:
		return "not enough margin"
	case ErrInvalidTargetPrice:
		return "invalid target price"
	case ErrUnknownOrderType:
		return "unknown order type"
	case ErrMissingSymbol:
		return "missing symbol"
	}
	return fmt.Sprintf("trade error %d", int(e))
}

// TradeResult is what Execute returns. Order is set on success.
type TradeResult struct {
	IsSuccessful bool
	Err          TradeError
	Order        Order
}

// Result is a copy of the engine state at the end of a run.
type Result struct {
	Orders []Order
	Trades []Trade
	Events []TradingEvent

	Balance float64
	Equity  float64
	Margin  float64
}
