package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

const tradeColumns = `trade_id, run_id, order_id, symbol, trade_type, volume, entry_price, close_price,
	open_time, close_time, commission, gross_profit, net_profit, reason`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var rec TradeRecord
	err := s.Scan(
		&rec.TradeID,
		&rec.RunID,
		&rec.OrderID,
		&rec.Symbol,
		&rec.TradeType,
		&rec.Volume,
		&rec.EntryPrice,
		&rec.ClosePrice,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.Commission,
		&rec.GrossProfit,
		&rec.NetProfit,
		&rec.Reason,
	)
	return rec, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)
	rec, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
	}
	return rec, err
}

// ListTrades returns the trades of a run ordered by close time.
func (j *SQLite) ListTrades(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`SELECT `+tradeColumns+` FROM trades WHERE run_id = ? ORDER BY close_time ASC, trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEvents returns the journal entries of a run in sequence order.
func (j *SQLite) ListEvents(runID string) ([]EventRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, seq, time, type, order_id, symbol, note
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var rec EventRecord
		if err := rows.Scan(&rec.RunID, &rec.Seq, &rec.Time, &rec.Type, &rec.OrderID, &rec.Symbol, &rec.Note); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquity returns the equity snapshots of a run in time order.
func (j *SQLite) ListEquity(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, balance, equity, margin, free_margin, margin_level, note
		FROM equity
		WHERE run_id = ?
		ORDER BY rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var rec EquitySnapshot
		if err := rows.Scan(&rec.RunID, &rec.Time, &rec.Balance, &rec.Equity, &rec.Margin, &rec.FreeMargin, &rec.MarginLevel, &rec.Note); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListRuns returns all recorded runs, newest first.
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, strategy, symbols, start_time, end_time, start_balance, end_balance, end_equity, trades
		FROM runs
		ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.Created, &r.Strategy, &r.Symbols, &r.Start, &r.End,
			&r.StartBalance, &r.EndBalance, &r.EndEquity, &r.Trades); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
