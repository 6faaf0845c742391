package account

import (
	"errors"
	"fmt"
	"time"

	"github.com/kataras/go-events"
	"github.com/sirupsen/logrus"
)

// Notification topics raised by a Ledger.
const (
	EquityChanged  events.EventName = "account.equity"
	BalanceChanged events.EventName = "account.balance"
	MarginChanged  events.EventName = "account.margin"
	MarginCall     events.EventName = "account.margin_call"
)

var ErrInvalidAccount = errors.New("invalid account")

// Change is the payload of every ledger notification. Balance, Equity and
// Margin hold the values after the change was applied.
type Change struct {
	Delta float64
	Time  time.Time
	Note  string

	Balance float64
	Equity  float64
	Margin  float64
}

type Config struct {
	ID       string
	Currency string
	Balance  float64
	Leverage float64
	Logger   logrus.FieldLogger
}

// Ledger keeps balance, equity and used margin of a simulated account.
// Equity is maintained incrementally from the deltas posted by the trade
// engine: it always equals balance plus the unrealized P/L of open orders.
// A Ledger is owned by a single goroutine.
type Ledger struct {
	ID       string
	Currency string

	balance  float64
	equity   float64
	margin   float64
	leverage float64

	emitter events.EventEmmiter
	subs    map[events.EventName][]*listener
	log     logrus.FieldLogger
}

type listener struct {
	fn     func(Change)
	active bool
}

var topics = []events.EventName{EquityChanged, BalanceChanged, MarginChanged, MarginCall}

func New(cfg Config) (*Ledger, error) {
	if cfg.Balance <= 0 {
		return nil, fmt.Errorf("%w: balance must be positive", ErrInvalidAccount)
	}
	if cfg.Leverage <= 0 {
		return nil, fmt.Errorf("%w: leverage must be positive", ErrInvalidAccount)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	l := &Ledger{
		ID:       cfg.ID,
		Currency: cfg.Currency,
		balance:  cfg.Balance,
		equity:   cfg.Balance,
		leverage: cfg.Leverage,
		emitter:  events.New(),
		subs:     make(map[events.EventName][]*listener, len(topics)),
		log:      cfg.Logger.WithField("account", cfg.ID),
	}
	// one dispatcher per topic; On never touches the emitter
	for _, topic := range topics {
		topic := topic
		l.emitter.On(topic, func(payload ...interface{}) {
			if len(payload) == 0 {
				return
			}
			if c, ok := payload[0].(Change); ok {
				l.dispatch(topic, c)
			}
		})
	}
	return l, nil
}

func (l *Ledger) Balance() float64  { return l.balance }
func (l *Ledger) Equity() float64   { return l.equity }
func (l *Ledger) Margin() float64   { return l.margin }
func (l *Ledger) Leverage() float64 { return l.leverage }

// FreeMargin is equity not reserved by open positions.
func (l *Ledger) FreeMargin() float64 { return l.equity - l.margin }

// MarginLevel is equity over used margin in percent; zero without margin.
func (l *Ledger) MarginLevel() float64 {
	if l.margin <= 0 {
		return 0
	}
	return l.equity / l.margin * 100
}

func (l *Ledger) ChangeEquity(delta float64, t time.Time, note string) {
	l.equity += delta
	l.emit(EquityChanged, delta, t, note)
}

func (l *Ledger) ChangeBalance(delta float64, t time.Time, note string) {
	l.balance += delta
	l.emit(BalanceChanged, delta, t, note)
}

func (l *Ledger) ChangeMargin(delta float64, t time.Time, note string) {
	l.margin += delta
	l.emit(MarginChanged, delta, t, note)
}

// RaiseMarginCall notifies margin call listeners. It does not touch the
// ledger; reacting is up to the listeners.
func (l *Ledger) RaiseMarginCall(t time.Time, note string) {
	l.log.WithFields(logrus.Fields{
		"equity":       l.equity,
		"margin":       l.margin,
		"margin_level": l.MarginLevel(),
	}).Warn("margin call")
	l.emit(MarginCall, 0, t, note)
}

// On registers fn for topic. Listeners run synchronously on the goroutine
// that changed the ledger and may change the ledger again. A listener added
// or removed during a notification takes effect on the next one.
func (l *Ledger) On(topic events.EventName, fn func(Change)) (unsubscribe func()) {
	sub := &listener{fn: fn, active: true}
	l.subs[topic] = append(prune(l.subs[topic]), sub)
	return func() { sub.active = false }
}

func (l *Ledger) dispatch(topic events.EventName, c Change) {
	subs := append([]*listener(nil), l.subs[topic]...)
	for _, sub := range subs {
		if sub.active {
			sub.fn(c)
		}
	}
}

func prune(subs []*listener) []*listener {
	out := subs[:0:0]
	for _, sub := range subs {
		if sub.active {
			out = append(out, sub)
		}
	}
	return out
}

func (l *Ledger) emit(topic events.EventName, delta float64, t time.Time, note string) {
	l.emitter.Emit(topic, Change{
		Delta:   delta,
		Time:    t,
		Note:    note,
		Balance: l.balance,
		Equity:  l.equity,
		Margin:  l.margin,
	})
}
