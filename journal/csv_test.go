package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func newTestCSV(t *testing.T) (*CSV, string) {
	t.Helper()
	dir := t.TempDir()
	j, err := NewCSV(
		filepath.Join(dir, "trades.csv"),
		filepath.Join(dir, "events.csv"),
		filepath.Join(dir, "equity.csv"),
	)
	require.NoError(t, err)
	return j, dir
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	j, dir := newTestCSV(t)

	open := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	closeT := time.Date(2024, 1, 2, 4, 5, 6, 0, time.UTC)

	for _, id := range []string{"T1", "T2"} {
		require.NoError(t, j.RecordTrade(TradeRecord{
			RunID:      "R1",
			TradeID:    id,
			Symbol:     "EUR_USD",
			TradeType:  "Sell",
			Volume:     0.5,
			EntryPrice: 1.2345678,
			OpenTime:   open,
			CloseTime:  closeT,
			NetProfit:  -12.5,
			Reason:     "StopLoss",
		}))
	}
	require.NoError(t, j.Close())

	rows := readCSV(t, filepath.Join(dir, "trades.csv"))
	require.Len(t, rows, 3, "header plus two rows")
	assert.Equal(t, []string{"run_id", "trade_id", "order_id", "symbol", "trade_type", "volume", "entry_price",
		"close_price", "open_time", "close_time", "commission", "gross_profit", "net_profit", "reason"}, rows[0])
	assert.Equal(t, "T1", rows[1][1])
	assert.Equal(t, "T2", rows[2][1])
	assert.Equal(t, "1.234568", rows[1][6])
	assert.Equal(t, open.Format(time.RFC3339), rows[1][8])
	assert.Equal(t, "-12.500000", rows[1][12])
}

func TestCSVJournalEventsAndEquity(t *testing.T) {
	t.Parallel()

	j, dir := newTestCSV(t)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, j.RecordEvent(EventRecord{RunID: "R1", Seq: 7, Time: ts, Type: "PendingOrderPlaced", OrderID: "O1", Symbol: "EUR_USD", Note: "limit"}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "R1", Time: ts, Balance: 1000, Equity: 1001, Margin: 10, FreeMargin: 991, MarginLevel: 10010}))
	require.NoError(t, j.Close())

	events := readCSV(t, filepath.Join(dir, "events.csv"))
	require.Len(t, events, 2)
	assert.Equal(t, []string{"R1", "7", ts.Format(time.RFC3339), "PendingOrderPlaced", "O1", "EUR_USD", "limit"}, events[1])

	equity := readCSV(t, filepath.Join(dir, "equity.csv"))
	require.Len(t, equity, 2)
	assert.Equal(t, "1001.000000", equity[1][3])
}
