package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/sim"
)

var t0 = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

func symbol(t *testing.T, name string) *market.Symbol {
	t.Helper()
	info, ok := market.Lookup(name)
	require.True(t, ok)
	s, err := market.NewSymbol(info)
	require.NoError(t, err)
	return s
}

func bars(closes ...float64) []market.Bar {
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{Time: t0.Add(time.Duration(i) * time.Hour), Open: c, High: c, Low: c, Close: c}
	}
	return out
}

type seen struct {
	symbol string
	close  float64
	clock  time.Time
}

func record(o *Orchestrator, log *[]seen, syms ...*market.Symbol) {
	for _, s := range syms {
		s.OnBar(func(s *market.Symbol, idx int) error {
			b, _ := s.Bars().Bar(idx)
			*log = append(*log, seen{symbol: s.Name, close: b.Close, clock: o.Clock().Now()})
			return nil
		})
	}
}

type snap struct{ r sim.Result }

func (s snap) Snapshot() sim.Result { return s.r }

func TestMergesChronologicallyWithDeclarationTieBreak(t *testing.T) {
	eur, gbp := symbol(t, "EUR_USD"), symbol(t, "GBP_USD")
	gbpBars := []market.Bar{
		{Time: t0, Close: 1.27},
		{Time: t0.Add(30 * time.Minute), Close: 1.28},
		{Time: t0.Add(time.Hour), Close: 1.29},
	}
	o, err := New(Config{Feeds: []Feed{
		{Symbol: eur, Bars: bars(1.10, 1.11)},
		{Symbol: gbp, Bars: gbpBars},
	}})
	require.NoError(t, err)

	var log []seen
	record(o, &log, eur, gbp)
	require.NoError(t, o.Run(context.Background()))

	want := []seen{
		{"EUR_USD", 1.10, t0},
		{"GBP_USD", 1.27, t0},
		{"GBP_USD", 1.28, t0.Add(30 * time.Minute)},
		{"EUR_USD", 1.11, t0.Add(time.Hour)},
		{"GBP_USD", 1.29, t0.Add(time.Hour)},
	}
	assert.Equal(t, want, log)
	assert.True(t, o.IsStopped())
	done, total := o.Progress()
	assert.Equal(t, 5, done)
	assert.Equal(t, 5, total)
}

func TestPublishesQuoteBeforeBar(t *testing.T) {
	eur := symbol(t, "EUR_USD")
	o, err := New(Config{Feeds: []Feed{{Symbol: eur, Bars: bars(1.1, 1.2)}}})
	require.NoError(t, err)

	var ticks []float64
	eur.OnTick(func(s *market.Symbol) error {
		ticks = append(ticks, s.Bid())
		assert.Equal(t, s.Bid(), s.Ask())
		return nil
	})
	require.NoError(t, o.Run(context.Background()))
	assert.Equal(t, []float64{1.1, 1.2}, ticks)
}

func TestStoppedRaisedOnceAtEndOfData(t *testing.T) {
	eur := symbol(t, "EUR_USD")
	o, err := New(Config{Feeds: []Feed{{Symbol: eur, Bars: bars(1.1)}}})
	require.NoError(t, err)

	n := 0
	o.OnStopped(func() { n++ })
	require.NoError(t, o.Run(context.Background()))
	o.Stop()
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, o.Run(context.Background()), ErrStopped)
}

func TestStoppedListenersAreReleased(t *testing.T) {
	eur := symbol(t, "EUR_USD")
	o, err := New(Config{Feeds: []Feed{{Symbol: eur, Bars: bars(1.1)}}})
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		o.OnStopped(func() {})()
	}
	n := 0
	o.OnStopped(func() {
		n++
		o.OnStopped(func() { n += 10 })
	})
	require.NoError(t, o.Run(context.Background()))

	assert.Equal(t, 1, n)
	assert.Len(t, o.onStop, 2)
	assert.Equal(t, 1, o.emitter.ListenerCount(Stopped))
}

func TestPauseAndContinue(t *testing.T) {
	eur := symbol(t, "EUR_USD")
	o, err := New(Config{Feeds: []Feed{{Symbol: eur, Bars: bars(1.1, 1.2, 1.3)}}})
	require.NoError(t, err)

	eur.OnBar(func(_ *market.Symbol, idx int) error {
		if idx == 0 {
			o.Pause()
		}
		return nil
	})

	require.NoError(t, o.Run(context.Background()))
	assert.False(t, o.IsStopped())
	assert.Equal(t, 1, eur.Bars().Len())
	assert.Equal(t, t0, o.Clock().Now())

	require.NoError(t, o.Run(context.Background()))
	assert.True(t, o.IsStopped())
	assert.Equal(t, 3, eur.Bars().Len())
}

func TestStopFromHandler(t *testing.T) {
	eur := symbol(t, "EUR_USD")
	o, err := New(Config{Feeds: []Feed{{Symbol: eur, Bars: bars(1.1, 1.2, 1.3)}}})
	require.NoError(t, err)

	eur.OnBar(func(_ *market.Symbol, idx int) error {
		if idx == 1 {
			o.Stop()
		}
		return nil
	})
	require.NoError(t, o.Run(context.Background()))
	assert.Equal(t, 2, eur.Bars().Len())
}

func TestHandlerErrorStops(t *testing.T) {
	eur := symbol(t, "EUR_USD")
	o, err := New(Config{Feeds: []Feed{{Symbol: eur, Bars: bars(1.1, 1.2)}}})
	require.NoError(t, err)

	boom := errors.New("boom")
	eur.OnTick(func(*market.Symbol) error { return boom })

	err = o.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, o.IsStopped())
	done, _ := o.Progress()
	assert.Equal(t, 1, done)
}

func TestCanceledContext(t *testing.T) {
	eur := symbol(t, "EUR_USD")
	o, err := New(Config{Feeds: []Feed{{Symbol: eur, Bars: bars(1.1, 1.2)}}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	eur.OnBar(func(*market.Symbol, int) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, o.Run(ctx), context.Canceled)
	assert.Equal(t, 1, eur.Bars().Len())
}

func TestGetResult(t *testing.T) {
	eur := symbol(t, "EUR_USD")
	o, err := New(Config{
		Feeds:   []Feed{{Symbol: eur, Bars: bars(1.1, 1.2, 1.3)}},
		Results: snap{sim.Result{Balance: 10100}},
	})
	require.NoError(t, err)

	_, err = o.GetResult()
	assert.ErrorIs(t, err, ErrNotStopped)

	require.NoError(t, o.Run(context.Background()))
	r, err := o.GetResult()
	require.NoError(t, err)
	assert.Equal(t, 10100.0, r.Balance)
	assert.Equal(t, 3, r.Bars)
	assert.Equal(t, t0, r.Start)
	assert.Equal(t, t0.Add(2*time.Hour), r.End)
}

func TestNewValidates(t *testing.T) {
	eur := symbol(t, "EUR_USD")

	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoFeeds)

	_, err = New(Config{Feeds: []Feed{{Bars: bars(1)}}})
	assert.Error(t, err)

	_, err = New(Config{Feeds: []Feed{{Symbol: eur}, {Symbol: eur}}})
	assert.Error(t, err)

	unordered := bars(1.1, 1.2)
	unordered[0], unordered[1] = unordered[1], unordered[0]
	_, err = New(Config{Feeds: []Feed{{Symbol: eur, Bars: unordered}}})
	assert.ErrorIs(t, err, ErrUnordered)
}

func TestClockOnlyMovesForward(t *testing.T) {
	c := NewClock(t0)
	c.Advance(t0.Add(time.Hour))
	c.Advance(t0)
	assert.Equal(t, t0.Add(time.Hour), c.Now())
}
