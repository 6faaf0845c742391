package backtest

import (
	"github.com/kataras/go-events"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/account"
	"github.com/rustyeddy/stratsim/journal"
)

// EquityRecorder snapshots the ledger after every balance, equity or
// margin change. Snapshots go to the journal, when set, and to the
// in-memory equity curve used for drawdown.
type EquityRecorder struct {
	ledger *account.Ledger
	sink   journal.Journal
	runID  string
	log    logrus.FieldLogger

	curve []float64
	unsub []func()
}

func NewEquityRecorder(l *account.Ledger, sink journal.Journal, runID string, log logrus.FieldLogger) *EquityRecorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &EquityRecorder{
		ledger: l,
		sink:   sink,
		runID:  runID,
		log:    log,
		curve:  []float64{l.Equity()},
	}
	for _, topic := range []events.EventName{account.BalanceChanged, account.EquityChanged, account.MarginChanged} {
		r.unsub = append(r.unsub, l.On(topic, r.record))
	}
	return r
}

// Curve returns the equity after each change, starting with the equity
// at construction.
func (r *EquityRecorder) Curve() []float64 {
	return append([]float64(nil), r.curve...)
}

func (r *EquityRecorder) record(c account.Change) {
	if c.Equity != r.curve[len(r.curve)-1] {
		r.curve = append(r.curve, c.Equity)
	}
	if r.sink == nil {
		return
	}
	err := r.sink.RecordEquity(journal.EquitySnapshot{
		RunID:       r.runID,
		Time:        c.Time,
		Balance:     c.Balance,
		Equity:      c.Equity,
		Margin:      c.Margin,
		FreeMargin:  c.Equity - c.Margin,
		MarginLevel: r.ledger.MarginLevel(),
		Note:        c.Note,
	})
	if err != nil {
		r.log.WithError(err).Error("journal equity")
	}
}

// Close stops recording.
func (r *EquityRecorder) Close() {
	for _, u := range r.unsub {
		u()
	}
	r.unsub = nil
}
