package backtest

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"github.com/rustyeddy/stratsim/journal"
	"github.com/rustyeddy/stratsim/sim"
)

// Summary is a lightweight performance report of a backtest run.
type Summary struct {
	RunID    string
	Strategy string
	Symbols  []string
	Start    time.Time
	End      time.Time
	Bars     int

	Trades  int
	Wins    int
	Losses  int
	WinRate float64 // fraction of trades with a positive net profit

	StartBalance float64
	EndBalance   float64
	EndEquity    float64
	NetPL        float64
	ReturnPct    float64

	GrossProfit  float64
	GrossLoss    float64
	ProfitFactor float64 // 0 when there are no losing trades
	AvgTrade     float64
	StdDevTrade  float64

	MaxDrawdown float64
	MaxDDPct    float64
}

// Summarize computes trade statistics over trades and the drawdown of the
// equity curve. The curve should start with the opening balance.
func Summarize(trades []sim.Trade, startBalance, endBalance, endEquity float64, curve []float64) Summary {
	s := Summary{
		Trades:       len(trades),
		StartBalance: startBalance,
		EndBalance:   endBalance,
		EndEquity:    endEquity,
		NetPL:        endBalance - startBalance,
	}
	if startBalance > 0 {
		s.ReturnPct = s.NetPL / startBalance * 100
	}

	profits := make([]float64, len(trades))
	for i, tr := range trades {
		profits[i] = tr.NetProfit
		switch {
		case tr.NetProfit > 0:
			s.Wins++
			s.GrossProfit += tr.NetProfit
		case tr.NetProfit < 0:
			s.Losses++
			s.GrossLoss -= tr.NetProfit
		}
	}
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades)
		s.AvgTrade, _ = stats.Mean(profits)
		s.StdDevTrade, _ = stats.StandardDeviation(profits)
	}
	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}
	s.MaxDrawdown, s.MaxDDPct = MaxDrawdown(curve)
	return s
}

// MaxDrawdown returns the largest peak to trough fall of curve, absolute
// and as a percent of the peak.
func MaxDrawdown(curve []float64) (abs, pct float64) {
	if len(curve) == 0 {
		return 0, 0
	}
	peak := curve[0]
	for _, v := range curve {
		peak = math.Max(peak, v)
		if dd := peak - v; dd > abs {
			abs = dd
			if peak > 0 {
				pct = dd / peak * 100
			}
		}
	}
	return abs, pct
}

// Record converts the summary to the journal's run row.
func (s Summary) Record(created time.Time) journal.RunRecord {
	return journal.RunRecord{
		RunID:        s.RunID,
		Created:      created,
		Strategy:     s.Strategy,
		Symbols:      strings.Join(s.Symbols, ","),
		Start:        s.Start,
		End:          s.End,
		StartBalance: s.StartBalance,
		EndBalance:   s.EndBalance,
		EndEquity:    s.EndEquity,
		Trades:       s.Trades,
	}
}

// WriteTable renders the summary as a two column table.
func (s Summary) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	rows := [][]string{
		{"Run ID", s.RunID},
		{"Strategy", s.Strategy},
		{"Symbols", strings.Join(s.Symbols, ", ")},
		{"Period", fmt.Sprintf("%s - %s", s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339))},
		{"Bars", fmt.Sprint(s.Bars)},
		{"Trades", fmt.Sprint(s.Trades)},
		{"Wins", fmt.Sprint(s.Wins)},
		{"Losses", fmt.Sprint(s.Losses)},
		{"Win Rate", fmt.Sprintf("%.2f%%", s.WinRate*100)},
		{"Start Balance", fmt.Sprintf("%.2f", s.StartBalance)},
		{"End Balance", fmt.Sprintf("%.2f", s.EndBalance)},
		{"End Equity", fmt.Sprintf("%.2f", s.EndEquity)},
		{"Net P/L", fmt.Sprintf("%.2f", s.NetPL)},
		{"Return", fmt.Sprintf("%.2f%%", s.ReturnPct)},
		{"Avg Trade", fmt.Sprintf("%.2f", s.AvgTrade)},
		{"StdDev Trade", fmt.Sprintf("%.2f", s.StdDevTrade)},
	}
	if s.ProfitFactor > 0 {
		rows = append(rows, []string{"Profit Factor", fmt.Sprintf("%.2f", s.ProfitFactor)})
	}
	rows = append(rows, []string{"Max Drawdown", fmt.Sprintf("%.2f (%.2f%%)", s.MaxDrawdown, s.MaxDDPct)})

	table.AppendBulk(rows)
	table.Render()
}

// WriteTrades renders closed trades, one row each.
func WriteTrades(w io.Writer, trades []journal.TradeRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Trade", "Symbol", "Side", "Volume", "Entry", "Close", "Opened", "Closed", "Net", "Reason"})
	for _, tr := range trades {
		table.Append([]string{
			tr.TradeID,
			tr.Symbol,
			tr.TradeType,
			fmt.Sprintf("%.2f", tr.Volume),
			fmt.Sprintf("%.5f", tr.EntryPrice),
			fmt.Sprintf("%.5f", tr.ClosePrice),
			tr.OpenTime.Format(time.RFC3339),
			tr.CloseTime.Format(time.RFC3339),
			fmt.Sprintf("%.2f", tr.NetProfit),
			tr.Reason,
		})
	}
	table.Render()
}

// WriteEvents renders journal entries, one row each.
func WriteEvents(w io.Writer, events []journal.EventRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Seq", "Time", "Type", "Order", "Symbol", "Note"})
	for _, ev := range events {
		table.Append([]string{
			fmt.Sprint(ev.Seq),
			ev.Time.Format(time.RFC3339),
			ev.Type,
			ev.OrderID,
			ev.Symbol,
			ev.Note,
		})
	}
	table.Render()
}
