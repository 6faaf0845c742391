// Package feed serializes live market updates from concurrent sources onto
// the single goroutine that owns the symbols, engine and lifecycle.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/market"
)

var (
	ErrQueueFull   = errors.New("feed queue full")
	ErrQueueClosed = errors.New("feed queue closed")
)

type Kind int

const (
	Tick Kind = iota
	Bar
)

// Update is one market update for a symbol.
type Update struct {
	Symbol *market.Symbol
	Kind   Kind

	Bid, Ask float64
	Time     time.Time

	Bar market.Bar
}

func TickUpdate(s *market.Symbol, bid, ask float64, t time.Time) Update {
	return Update{Symbol: s, Kind: Tick, Bid: bid, Ask: ask, Time: t}
}

func BarUpdate(s *market.Symbol, b market.Bar) Update {
	return Update{Symbol: s, Kind: Bar, Bar: b, Time: b.Time}
}

// Queue is a bounded queue of updates. Any number of goroutines may
// publish; exactly one goroutine calls Run, which applies the updates to
// their symbols in arrival order.
type Queue struct {
	ch   chan Update
	done chan struct{}
	once sync.Once
	log  logrus.FieldLogger
}

func NewQueue(capacity int, log logrus.FieldLogger) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Queue{
		ch:   make(chan Update, capacity),
		done: make(chan struct{}),
		log:  log.WithField("component", "feed"),
	}
}

// TryPublish enqueues u without blocking.
func (q *Queue) TryPublish(u Update) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- u:
		return nil
	default:
		return ErrQueueFull
	}
}

// Publish enqueues u, waiting for room until ctx is done.
func (q *Queue) Publish(ctx context.Context, u Update) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- u:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting updates. Run drains what is buffered and returns.
// Updates published concurrently with Close may be dropped.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
}

func (q *Queue) Len() int { return len(q.ch) }

// Run applies updates until the queue is closed and drained, ctx is done,
// or a symbol handler fails. A handler failure closes the queue.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u := <-q.ch:
			if err := q.apply(u); err != nil {
				q.Close()
				return err
			}
		case <-q.done:
			return q.drain()
		}
	}
}

func (q *Queue) drain() error {
	for {
		select {
		case u := <-q.ch:
			if err := q.apply(u); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (q *Queue) apply(u Update) error {
	if u.Symbol == nil {
		q.log.Warn("update without symbol dropped")
		return nil
	}
	var err error
	switch u.Kind {
	case Tick:
		err = u.Symbol.PublishTick(u.Bid, u.Ask, u.Time)
	case Bar:
		_, err = u.Symbol.PublishBar(u.Bar)
	default:
		q.log.WithField("kind", u.Kind).Warn("unknown update kind dropped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("feed %s at %s: %w", u.Symbol.Name, u.Time.Format(time.RFC3339), err)
	}
	return nil
}
