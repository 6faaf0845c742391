// Package replay drives historical bars through market symbols in global
// chronological order on a virtual clock.
package replay

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kataras/go-events"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/sim"
)

// Stopped is raised once when the replay stops, at the end of the data or
// on Stop.
const Stopped events.EventName = "replay.stopped"

var (
	ErrNoFeeds    = errors.New("replay: at least one feed is required")
	ErrUnordered  = errors.New("replay: bars are not in chronological order")
	ErrStopped    = errors.New("replay: already stopped")
	ErrNotStopped = errors.New("replay: result is only available after the run stopped")
	ErrNoResult   = errors.New("replay: no snapshotter configured")
)

// Feed is the history of one symbol, oldest bar first.
type Feed struct {
	Symbol *market.Symbol
	Bars   []market.Bar
}

// Snapshotter supplies the engine state GetResult reports.
type Snapshotter interface {
	Snapshot() sim.Result
}

type Config struct {
	// Feeds in declaration order; it breaks timestamp ties.
	Feeds []Feed

	// Clock defaults to a clock at the first bar's time.
	Clock *Clock

	Results Snapshotter
	Logger  logrus.FieldLogger
}

// Result summarizes a finished replay.
type Result struct {
	sim.Result

	Bars  int
	Start time.Time
	End   time.Time
}

type step struct {
	symbol *market.Symbol
	bar    market.Bar
}

// Orchestrator publishes the merged bars one at a time. Each bar is fully
// processed by the symbol's handlers before the next one is published.
type Orchestrator struct {
	clock   *Clock
	steps   []step
	pos     int
	paused  bool
	stopped bool

	results Snapshotter
	emitter events.EventEmmiter
	onStop  []*stopListener
	log     logrus.FieldLogger
}

type stopListener struct {
	fn     func()
	active bool
}

func New(cfg Config) (*Orchestrator, error) {
	if len(cfg.Feeds) == 0 {
		return nil, ErrNoFeeds
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	seen := make(map[*market.Symbol]bool, len(cfg.Feeds))
	var steps []step
	for _, f := range cfg.Feeds {
		if f.Symbol == nil {
			return nil, fmt.Errorf("replay: feed without symbol")
		}
		if seen[f.Symbol] {
			return nil, fmt.Errorf("replay: duplicate feed for %s", f.Symbol.Name)
		}
		seen[f.Symbol] = true
		if err := CheckOrder(f.Bars); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Symbol.Name, err)
		}
		for _, b := range f.Bars {
			steps = append(steps, step{symbol: f.Symbol, bar: b})
		}
	}
	// stable: ties keep feed declaration order
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].bar.Time.Before(steps[j].bar.Time)
	})

	clock := cfg.Clock
	if clock == nil {
		var start time.Time
		if len(steps) > 0 {
			start = steps[0].bar.Time
		}
		clock = NewClock(start)
	}

	o := &Orchestrator{
		clock:   clock,
		steps:   steps,
		results: cfg.Results,
		emitter: events.New(),
		log:     cfg.Logger.WithField("component", "replay"),
	}
	o.emitter.On(Stopped, func(...interface{}) { o.notifyStopped() })
	return o, nil
}

func (o *Orchestrator) Clock() *Clock { return o.clock }

// Progress returns how many of the merged bars were published.
func (o *Orchestrator) Progress() (done, total int) { return o.pos, len(o.steps) }

func (o *Orchestrator) IsStopped() bool { return o.stopped }

// Run publishes bars until the data is exhausted, Pause or Stop is called
// from a handler, or ctx is done. Cancellation is checked between bars. A
// handler error stops the replay and is returned.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.stopped {
		return ErrStopped
	}
	o.paused = false
	o.log.WithFields(logrus.Fields{
		"from":  o.pos,
		"total": len(o.steps),
	}).Debug("replay running")

	for o.pos < len(o.steps) {
		if o.stopped || o.paused {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		st := o.steps[o.pos]
		o.pos++
		o.clock.Advance(st.bar.Time)
		if _, err := st.symbol.PublishBar(st.bar); err != nil {
			o.Stop()
			return fmt.Errorf("replay %s bar at %s: %w", st.symbol.Name, st.bar.Time.Format(time.RFC3339), err)
		}
	}

	o.log.WithField("bars", len(o.steps)).Info("end of replay data")
	o.Stop()
	return nil
}

// Pause makes Run return after the bar being processed.
func (o *Orchestrator) Pause() { o.paused = true }

// Stop ends the replay for good and raises Stopped once.
func (o *Orchestrator) Stop() {
	if o.stopped {
		return
	}
	o.stopped = true
	o.emitter.Emit(Stopped)
}

// OnStopped registers fn for the Stopped notification. It may be called
// from inside a notification.
func (o *Orchestrator) OnStopped(fn func()) (unsubscribe func()) {
	sub := &stopListener{fn: fn, active: true}
	live := o.onStop[:0:0]
	for _, l := range o.onStop {
		if l.active {
			live = append(live, l)
		}
	}
	o.onStop = append(live, sub)
	return func() { sub.active = false }
}

func (o *Orchestrator) notifyStopped() {
	for _, l := range append([]*stopListener(nil), o.onStop...) {
		if l.active {
			l.fn()
		}
	}
}

// GetResult reports the run once it stopped.
func (o *Orchestrator) GetResult() (Result, error) {
	if !o.stopped {
		return Result{}, ErrNotStopped
	}
	if o.results == nil {
		return Result{}, ErrNoResult
	}
	r := Result{Result: o.results.Snapshot(), Bars: o.pos}
	if o.pos > 0 {
		r.Start = o.steps[0].bar.Time
		r.End = o.steps[o.pos-1].bar.Time
	}
	return r, nil
}

// CheckOrder reports ErrUnordered if a bar is older than its predecessor.
func CheckOrder(bars []market.Bar) error {
	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Before(bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d at %s precedes %s", ErrUnordered, i,
				bars[i].Time.Format(time.RFC3339), bars[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}
