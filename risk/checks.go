package risk

import "fmt"

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	PlannedLoss    float64
	PlannedRiskPct float64
	PlannedRR      float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Codes lists the violation codes, for logging.
func (d Decision) Codes() []string {
	out := make([]string, len(d.Violations))
	for i, v := range d.Violations {
		out[i] = v.Code
	}
	return out
}

// Evaluate checks an intended trade against p.
func Evaluate(p Policy, intent TradeIntent, acct AccountSnapshot, pnl PnLSnapshot) Decision {
	d := Decision{Allowed: true}

	if intent.Symbol == nil {
		d.add("NO_SYMBOL", "symbol must be set")
		return d
	}
	if intent.Stop == 0 || intent.Entry == 0 {
		d.add("NO_STOP_OR_ENTRY", "entry/stop must be set")
		return d
	}
	if intent.Volume <= 0 {
		d.add("NO_VOLUME", "volume must be positive")
		return d
	}

	d.PlannedLoss = PlannedLoss(intent.Symbol, intent.Volume, intent.Entry, intent.Stop)
	d.PlannedRiskPct = RiskPct(d.PlannedLoss, acct.Equity)
	d.PlannedRR = RR(intent.Entry, intent.Stop, intent.TakeProfit)

	if p.MaxRiskPct > 0 && d.PlannedRiskPct > p.MaxRiskPct {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("planned risk %.2f%% exceeds max %.2f%%",
				100*d.PlannedRiskPct, 100*p.MaxRiskPct))
	}
	if p.DefaultRiskPct > 0 && d.PlannedRiskPct > p.DefaultRiskPct {
		d.add("RISK_OVER_DEFAULT",
			fmt.Sprintf("planned risk %.2f%% exceeds default %.2f%% (requires override)",
				100*d.PlannedRiskPct, 100*p.DefaultRiskPct))
	}
	if p.MinRR > 0 && d.PlannedRR < p.MinRR {
		d.add("RR_TOO_LOW",
			fmt.Sprintf("RR %.2f below minimum %.2f", d.PlannedRR, p.MinRR))
	}

	if p.MaxOpenTrades > 0 && acct.OpenTrades >= p.MaxOpenTrades {
		d.add("TOO_MANY_OPEN_TRADES",
			fmt.Sprintf("open trades %d >= max %d", acct.OpenTrades, p.MaxOpenTrades))
	}

	if p.MaxMarginPct > 0 && acct.Equity > 0 && acct.MarginUsed/acct.Equity > p.MaxMarginPct {
		d.add("MARGIN_TOO_HIGH",
			fmt.Sprintf("margin used %.2f%% exceeds max %.2f%%",
				100*(acct.MarginUsed/acct.Equity), 100*p.MaxMarginPct))
	}

	// circuit breakers on realized losses
	if p.MaxDailyLossPct > 0 {
		dayLimit := -p.MaxDailyLossPct * acct.Equity
		if pnl.DayRealized <= dayLimit {
			d.add("DAILY_LOSS_LIMIT", fmt.Sprintf("day realized %.2f <= limit %.2f", pnl.DayRealized, dayLimit))
		}
	}
	if p.MaxWeeklyLossPct > 0 {
		weekLimit := -p.MaxWeeklyLossPct * acct.Equity
		if pnl.WeekRealized <= weekLimit {
			d.add("WEEKLY_LOSS_LIMIT", fmt.Sprintf("week realized %.2f <= limit %.2f", pnl.WeekRealized, weekLimit))
		}
	}

	return d
}
