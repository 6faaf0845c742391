package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, order_id, symbol, trade_type, volume, entry_price, close_price,
		 open_time, close_time, commission, gross_profit, net_profit, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.OrderID, t.Symbol, t.TradeType, t.Volume, t.EntryPrice, t.ClosePrice,
		t.OpenTime, t.CloseTime, t.Commission, t.GrossProfit, t.NetProfit, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEvent(e EventRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO events
		(run_id, seq, time, type, order_id, symbol, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Seq, e.Time, e.Type, e.OrderID, e.Symbol, e.Note,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, balance, equity, margin, free_margin, margin_level, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Balance, e.Equity, e.Margin, e.FreeMargin, e.MarginLevel, e.Note,
	)
	return err
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, created, strategy, symbols, start_time, end_time, start_balance, end_balance, end_equity, trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, r.Symbols, r.Start, r.End,
		r.StartBalance, r.EndBalance, r.EndEquity, r.Trades,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
