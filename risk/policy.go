package risk

import (
	"time"

	"github.com/rustyeddy/stratsim/market"
)

// Policy holds the pre-trade limits. A zero limit is not enforced.
type Policy struct {
	// Risk limits, fractions of equity
	DefaultRiskPct float64 `json:"default_risk_pct" yaml:"default_risk_pct"` // 0.005
	MaxRiskPct     float64 `json:"max_risk_pct" yaml:"max_risk_pct"`         // 0.01

	// Circuit breakers
	MaxDailyLossPct  float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`   // 0.015
	MaxWeeklyLossPct float64 `json:"max_weekly_loss_pct" yaml:"max_weekly_loss_pct"` // 0.03

	// Exposure limits
	MaxOpenTrades int     `json:"max_open_trades" yaml:"max_open_trades"` // 3
	MaxMarginPct  float64 `json:"max_margin_pct" yaml:"max_margin_pct"`   // 0.20

	MinRR float64 `json:"min_rr" yaml:"min_rr"` // 1.5
}

type TradeIntent struct {
	Now       time.Time
	Symbol    *market.Symbol
	TradeType market.TradeType
	Volume    float64

	Entry      float64
	Stop       float64
	TakeProfit float64
}

type AccountSnapshot struct {
	Balance    float64
	Equity     float64
	MarginUsed float64
	FreeMargin float64
	OpenTrades int
}

type PnLSnapshot struct {
	DayRealized  float64
	WeekRealized float64
}
