package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, balance, leverage float64) *Ledger {
	t.Helper()
	l, err := New(Config{ID: "acct-1", Currency: "USD", Balance: balance, Leverage: leverage})
	require.NoError(t, err)
	return l
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Balance: 0, Leverage: 100})
	assert.ErrorIs(t, err, ErrInvalidAccount)

	_, err = New(Config{Balance: 1000, Leverage: 0})
	assert.ErrorIs(t, err, ErrInvalidAccount)
}

func TestLedgerChangesAndNotifications(t *testing.T) {
	l := newLedger(t, 10000, 100)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var got []Change
	record := func(c Change) { got = append(got, c) }
	l.On(EquityChanged, record)
	l.On(BalanceChanged, record)
	l.On(MarginChanged, record)

	l.ChangeMargin(1000, t0, "open")
	l.ChangeEquity(50, t0, "mark")
	l.ChangeBalance(50, t0, "close")

	assert.Equal(t, 10050.0, l.Balance())
	assert.Equal(t, 10050.0, l.Equity())
	assert.Equal(t, 1000.0, l.Margin())
	assert.Equal(t, 9050.0, l.FreeMargin())
	assert.InDelta(t, 1005.0, l.MarginLevel(), 1e-9)

	require.Len(t, got, 3)
	assert.Equal(t, Change{Delta: 1000, Time: t0, Note: "open", Balance: 10000, Equity: 10000, Margin: 1000}, got[0])
	assert.Equal(t, 50.0, got[1].Delta)
	assert.Equal(t, 10050.0, got[1].Equity)
	assert.Equal(t, "close", got[2].Note)
}

func TestUnsubscribe(t *testing.T) {
	l := newLedger(t, 1000, 1)

	calls := 0
	unsub := l.On(BalanceChanged, func(Change) { calls++ })
	l.ChangeBalance(1, time.Time{}, "")
	unsub()
	l.ChangeBalance(1, time.Time{}, "")

	assert.Equal(t, 1, calls)
}

func TestUnsubscribedListenersAreReleased(t *testing.T) {
	l := newLedger(t, 1000, 1)

	for i := 0; i < 1000; i++ {
		l.On(BalanceChanged, func(Change) {})()
	}
	calls := 0
	l.On(BalanceChanged, func(Change) { calls++ })
	l.ChangeBalance(1, time.Time{}, "")

	assert.Len(t, l.subs[BalanceChanged], 1)
	assert.Equal(t, 1, l.emitter.ListenerCount(BalanceChanged))
	assert.Equal(t, 1, calls)
}

func TestSubscribeInsideListener(t *testing.T) {
	l := newLedger(t, 1000, 1)

	var inner []float64
	var unsub func()
	l.On(BalanceChanged, func(c Change) {
		if unsub == nil {
			unsub = l.On(BalanceChanged, func(c Change) { inner = append(inner, c.Delta) })
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.ChangeBalance(1, time.Time{}, "")
		l.ChangeBalance(2, time.Time{}, "")
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscribing inside a listener blocked")
	}

	// the inner listener starts with the next notification
	assert.Equal(t, []float64{2}, inner)
	require.NotNil(t, unsub)
}

func TestListenerMayChangeLedger(t *testing.T) {
	l := newLedger(t, 1000, 1)

	l.On(MarginCall, func(c Change) {
		l.ChangeMargin(-l.Margin(), c.Time, "released")
	})
	l.ChangeMargin(500, time.Time{}, "")
	l.RaiseMarginCall(time.Time{}, "test")

	assert.Zero(t, l.Margin())
}
