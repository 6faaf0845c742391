// journal/journal.go
package journal

import "time"

// TradeRecord is the persisted form of a closed order.
type TradeRecord struct {
	RunID       string
	TradeID     string
	OrderID     string
	Symbol      string
	TradeType   string
	Volume      float64
	EntryPrice  float64
	ClosePrice  float64
	OpenTime    time.Time
	CloseTime   time.Time
	Commission  float64
	GrossProfit float64
	NetProfit   float64
	Reason      string
}

// EventRecord is the persisted form of one trading journal entry.
type EventRecord struct {
	RunID   string
	Seq     int
	Time    time.Time
	Type    string
	OrderID string
	Symbol  string
	Note    string
}

// EquitySnapshot captures the account after a ledger change.
type EquitySnapshot struct {
	RunID       string
	Time        time.Time
	Balance     float64
	Equity      float64
	Margin      float64
	FreeMargin  float64
	MarginLevel float64
	Note        string
}

// RunRecord describes one simulation run.
type RunRecord struct {
	RunID        string
	Created      time.Time
	Strategy     string
	Symbols      string
	Start        time.Time
	End          time.Time
	StartBalance float64
	EndBalance   float64
	EndEquity    float64
	Trades       int
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEvent(EventRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// RunRecorder is implemented by journals that also keep run summaries.
type RunRecorder interface {
	RecordRun(RunRecord) error
}
