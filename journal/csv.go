package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
)

type tradeRow struct {
	RunID       string `csv:"run_id"`
	TradeID     string `csv:"trade_id"`
	OrderID     string `csv:"order_id"`
	Symbol      string `csv:"symbol"`
	TradeType   string `csv:"trade_type"`
	Volume      string `csv:"volume"`
	EntryPrice  string `csv:"entry_price"`
	ClosePrice  string `csv:"close_price"`
	OpenTime    string `csv:"open_time"`
	CloseTime   string `csv:"close_time"`
	Commission  string `csv:"commission"`
	GrossProfit string `csv:"gross_profit"`
	NetProfit   string `csv:"net_profit"`
	Reason      string `csv:"reason"`
}

type eventRow struct {
	RunID   string `csv:"run_id"`
	Seq     string `csv:"seq"`
	Time    string `csv:"time"`
	Type    string `csv:"type"`
	OrderID string `csv:"order_id"`
	Symbol  string `csv:"symbol"`
	Note    string `csv:"note"`
}

type equityRow struct {
	RunID       string `csv:"run_id"`
	Time        string `csv:"time"`
	Balance     string `csv:"balance"`
	Equity      string `csv:"equity"`
	Margin      string `csv:"margin"`
	FreeMargin  string `csv:"free_margin"`
	MarginLevel string `csv:"margin_level"`
	Note        string `csv:"note"`
}

// csvFile appends gocsv rows to one file, writing the header with the
// first row.
type csvFile struct {
	f      *os.File
	w      *gocsv.SafeCSVWriter
	header bool
}

func createCSV(path string) (*csvFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &csvFile{f: f, w: gocsv.NewSafeCSVWriter(csv.NewWriter(f))}, nil
}

func (c *csvFile) write(rows any) error {
	if c.header {
		return gocsv.MarshalCSVWithoutHeaders(rows, c.w)
	}
	c.header = true
	return gocsv.MarshalCSV(rows, c.w)
}

func (c *csvFile) close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		_ = c.f.Close()
		return err
	}
	return c.f.Close()
}

// CSV writes trades, events and equity snapshots to three files.
type CSV struct {
	trades *csvFile
	events *csvFile
	equity *csvFile
}

func NewCSV(tradesPath, eventsPath, equityPath string) (*CSV, error) {
	j := &CSV{}
	var err error
	if j.trades, err = createCSV(tradesPath); err != nil {
		return nil, err
	}
	if j.events, err = createCSV(eventsPath); err != nil {
		_ = j.trades.close()
		return nil, err
	}
	if j.equity, err = createCSV(equityPath); err != nil {
		_ = j.trades.close()
		_ = j.events.close()
		return nil, err
	}
	return j, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	return j.trades.write([]tradeRow{{
		RunID:       t.RunID,
		TradeID:     t.TradeID,
		OrderID:     t.OrderID,
		Symbol:      t.Symbol,
		TradeType:   t.TradeType,
		Volume:      f(t.Volume),
		EntryPrice:  f(t.EntryPrice),
		ClosePrice:  f(t.ClosePrice),
		OpenTime:    t.OpenTime.Format(time.RFC3339),
		CloseTime:   t.CloseTime.Format(time.RFC3339),
		Commission:  f(t.Commission),
		GrossProfit: f(t.GrossProfit),
		NetProfit:   f(t.NetProfit),
		Reason:      t.Reason,
	}})
}

func (j *CSV) RecordEvent(e EventRecord) error {
	return j.events.write([]eventRow{{
		RunID:   e.RunID,
		Seq:     strconv.Itoa(e.Seq),
		Time:    e.Time.Format(time.RFC3339),
		Type:    e.Type,
		OrderID: e.OrderID,
		Symbol:  e.Symbol,
		Note:    e.Note,
	}})
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	return j.equity.write([]equityRow{{
		RunID:       e.RunID,
		Time:        e.Time.Format(time.RFC3339),
		Balance:     f(e.Balance),
		Equity:      f(e.Equity),
		Margin:      f(e.Margin),
		FreeMargin:  f(e.FreeMargin),
		MarginLevel: f(e.MarginLevel),
		Note:        e.Note,
	}})
}

func (j *CSV) Close() error {
	var first error
	for _, c := range []*csvFile{j.trades, j.events, j.equity} {
		if err := c.close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
