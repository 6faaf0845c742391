package risk

import (
	"time"

	"github.com/rustyeddy/stratsim/sim"
)

// Snapshot reads the account state and the realized P/L of the UTC day and
// ISO week containing now from e.
func Snapshot(e *sim.Engine, now time.Time) (AccountSnapshot, PnLSnapshot) {
	l := e.Ledger()
	acct := AccountSnapshot{
		Balance:    l.Balance(),
		Equity:     l.Equity(),
		MarginUsed: l.Margin(),
		FreeMargin: l.FreeMargin(),
		OpenTrades: len(e.MarketOrders()),
	}

	now = now.UTC()
	day := now.Truncate(24 * time.Hour)
	year, week := now.ISOWeek()

	var pnl PnLSnapshot
	for _, t := range e.Trades() {
		ct := t.CloseTime.UTC()
		if y, w := ct.ISOWeek(); y == year && w == week {
			pnl.WeekRealized += t.NetProfit
		}
		if !ct.Before(day) && ct.Before(day.Add(24*time.Hour)) {
			pnl.DayRealized += t.NetProfit
		}
	}
	return acct, pnl
}
