package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/account"
	"github.com/rustyeddy/stratsim/internal/id"
	"github.com/rustyeddy/stratsim/journal"
	"github.com/rustyeddy/stratsim/market"
)

var ErrNoLedger = errors.New("sim: ledger is required")

// Clock supplies the simulation time used to stamp orders, trades and
// journal entries.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type Config struct {
	Ledger *account.Ledger

	// Clock defaults to the wall clock.
	Clock Clock

	// Journal optionally persists trades and journal entries under RunID.
	Journal journal.Journal
	RunID   string

	Logger logrus.FieldLogger
}

// Engine executes orders against symbol quotes and books the results on the
// ledger. It exclusively owns open orders, trades and the journal. It is
// not safe for concurrent use and must not be locked: ledger listeners may
// call back into it (a margin call stopping a strategy closes orders).
type Engine struct {
	ledger *account.Ledger
	clock  Clock
	sink   journal.Journal
	runID  string
	log    logrus.FieldLogger

	orders []Order
	trades []Trade
	events []TradingEvent
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Ledger == nil {
		return nil, ErrNoLedger
	}
	if cfg.Clock == nil {
		cfg.Clock = ClockFunc(time.Now)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Engine{
		ledger: cfg.Ledger,
		clock:  cfg.Clock,
		sink:   cfg.Journal,
		runID:  cfg.RunID,
		log:    cfg.Logger.WithField("component", "engine"),
	}, nil
}

func (e *Engine) Ledger() *account.Ledger { return e.ledger }
func (e *Engine) Now() time.Time          { return e.clock.Now() }

// Execute opens a market order or places a pending order.
func (e *Engine) Execute(p OrderParams) TradeResult {
	if p.Symbol == nil {
		return e.reject(p, ErrMissingSymbol)
	}
	switch p.OrderType {
	case Market:
		return e.executeMarket(p)
	case Limit, Stop:
		return e.placePending(p)
	}
	return e.reject(p, ErrUnknownOrderType)
}

func (e *Engine) executeMarket(p OrderParams) TradeResult {
	sym := p.Symbol
	required := RequiredMargin(sym, p.Volume, e.ledger.Leverage())
	if free := e.ledger.FreeMargin(); required >= free {
		e.log.WithFields(logrus.Fields{
			"required":    required,
			"free_margin": free,
		}).Debug("margin check failed")
		return e.reject(p, ErrNotEnoughMargin)
	}

	now := e.clock.Now()
	o := &MarketOrder{
		OrderBase: OrderBase{
			ID:         id.At(now),
			Symbol:     sym,
			TradeType:  p.TradeType,
			Volume:     p.Volume,
			Comment:    p.Comment,
			OpenTime:   now,
			StopLoss:   copyPtr(p.StopLoss),
			TakeProfit: copyPtr(p.TakeProfit),
		},
		EntryPrice: EntryPrice(sym, p.TradeType),
		Commission: sym.Commission * 2,
		MarginUsed: required,
	}
	e.orders = append(e.orders, o)

	note := fmt.Sprintf("%s %v %s @ %v", o.TradeType, o.Volume, sym.Name, o.EntryPrice)
	e.ledger.ChangeMargin(required, now, note)
	e.record(MarketOrderExecuted, o, note)

	e.log.WithFields(logrus.Fields{
		"order":  o.ID,
		"symbol": sym.Name,
		"side":   o.TradeType,
		"volume": o.Volume,
		"entry":  o.EntryPrice,
		"margin": required,
	}).Debug("market order executed")

	return TradeResult{IsSuccessful: true, Order: o}
}

func (e *Engine) placePending(p OrderParams) TradeResult {
	sym := p.Symbol
	if !validTarget(p.OrderType, p.TradeType, p.TargetPrice, sym.Bid(), sym.Ask()) {
		return e.reject(p, ErrInvalidTargetPrice)
	}

	now := e.clock.Now()
	o := &PendingOrder{
		OrderBase: OrderBase{
			ID:         id.At(now),
			Symbol:     sym,
			TradeType:  p.TradeType,
			Volume:     p.Volume,
			Comment:    p.Comment,
			OpenTime:   now,
			StopLoss:   copyPtr(p.StopLoss),
			TakeProfit: copyPtr(p.TakeProfit),
		},
		OrderType:   p.OrderType,
		TargetPrice: p.TargetPrice,
	}
	e.orders = append(e.orders, o)
	e.record(PendingOrderPlaced, o, fmt.Sprintf("%s %s %v %s @ %v", o.OrderType, o.TradeType, o.Volume, sym.Name, o.TargetPrice))

	return TradeResult{IsSuccessful: true, Order: o}
}

func (e *Engine) reject(p OrderParams, reason TradeError) TradeResult {
	fields := logrus.Fields{
		"type":   p.OrderType,
		"side":   p.TradeType,
		"volume": p.Volume,
		"reason": reason.Error(),
	}
	if p.Symbol != nil {
		fields["symbol"] = p.Symbol.Name
	}
	e.log.WithFields(fields).Warn("order rejected")
	return TradeResult{Err: reason}
}

// UpdateSymbolOrders marks every open market order of sym to market, closes
// the ones whose stop loss or take profit was hit and fills the pending
// orders whose target was crossed. The equity and balance changes of the
// whole sweep are posted to the ledger once each, and only when non-zero.
func (e *Engine) UpdateSymbolOrders(sym *market.Symbol) {
	now := e.clock.Now()
	bid, ask := sym.Bid(), sym.Ask()

	var equityDelta, balanceDelta float64
	for _, o := range e.ordersOf(sym) {
		mo, ok := o.(*MarketOrder)
		if !ok || !e.isOpen(mo) {
			continue
		}
		equityDelta += e.mark(mo, bid, ask)

		if reason := closeReason(mo, bid, ask); reason != "" && e.closeMarketOrder(mo, reason, now) {
			balanceDelta += mo.NetProfit
		}
	}

	for _, o := range e.ordersOf(sym) {
		po, ok := o.(*PendingOrder)
		if !ok || !e.isOpen(po) || !triggered(po, sym.GetPrice(po.TradeType)) {
			continue
		}
		e.fill(po)
	}

	if equityDelta != 0 {
		e.ledger.ChangeEquity(equityDelta, now, sym.Name+" marked to market")
	}
	if balanceDelta != 0 {
		e.ledger.ChangeBalance(balanceDelta, now, sym.Name+" orders closed")
	}
}

// mark recomputes the profit of o and returns the change of its net profit.
func (e *Engine) mark(o *MarketOrder, bid, ask float64) float64 {
	gross := GrossProfit(o, bid, ask, o.Symbol.Digits, o.Symbol.TickValue)
	net := NetProfit(o, gross)
	delta := net - o.NetProfit
	o.GrossProfit, o.NetProfit = gross, net
	return delta
}

func (e *Engine) fill(po *PendingOrder) {
	if !e.remove(po) {
		return
	}
	e.record(PendingOrderFilled, po, fmt.Sprintf("%s %s @ %v", po.OrderType, po.TradeType, po.TargetPrice))

	res := e.Execute(OrderParams{
		Symbol:     po.Symbol,
		OrderType:  Market,
		TradeType:  po.TradeType,
		Volume:     po.Volume,
		StopLoss:   po.StopLoss,
		TakeProfit: po.TakeProfit,
		Comment:    po.Comment,
	})
	if !res.IsSuccessful {
		e.log.WithFields(logrus.Fields{
			"order":  po.ID,
			"reason": res.Err.Error(),
		}).Warn("filled pending order could not be executed")
	}
}

// CloseMarketOrder closes o at the current quote and realizes its net
// profit. It reports false when o is not open.
func (e *Engine) CloseMarketOrder(o *MarketOrder, reason string) bool {
	if !e.isOpen(o) {
		return false
	}
	if reason == "" {
		reason = "ManualClose"
	}

	now := e.clock.Now()
	if delta := e.mark(o, o.Symbol.Bid(), o.Symbol.Ask()); delta != 0 {
		e.ledger.ChangeEquity(delta, now, o.Symbol.Name+" marked to market")
	}
	e.closeMarketOrder(o, reason, now)
	if o.NetProfit != 0 {
		e.ledger.ChangeBalance(o.NetProfit, now, fmt.Sprintf("order %s closed", o.ID))
	}
	return true
}

// closeMarketOrder moves o to the trade history and releases its margin.
// Realizing the profit on the balance is left to the caller.
func (e *Engine) closeMarketOrder(o *MarketOrder, reason string, now time.Time) bool {
	if !e.remove(o) {
		return false
	}

	closePrice := o.Symbol.Bid()
	if o.TradeType == market.Sell {
		closePrice = o.Symbol.Ask()
	}
	t := newTrade(id.At(now), o, closePrice, now, reason)
	e.trades = append(e.trades, t)
	e.record(MarketOrderClosed, o, reason)
	e.persistTrade(t)

	e.ledger.ChangeMargin(-o.MarginUsed, now, fmt.Sprintf("order %s closed", o.ID))

	e.log.WithFields(logrus.Fields{
		"order":      o.ID,
		"symbol":     o.Symbol.Name,
		"reason":     reason,
		"net_profit": o.NetProfit,
	}).Debug("market order closed")
	return true
}

// CancelPendingOrder removes o. Pending orders hold no margin so the
// ledger is untouched.
func (e *Engine) CancelPendingOrder(o *PendingOrder) bool {
	if !e.remove(o) {
		return false
	}
	e.record(PendingOrderCanceled, o, "")
	return true
}

// CloseAllMarketOrders closes every open market order, or only those of
// the given trade types, and returns how many were closed.
func (e *Engine) CloseAllMarketOrders(reason string, only ...market.TradeType) int {
	n := 0
	for _, o := range e.MarketOrders() {
		if len(only) > 0 && !hasType(only, o.TradeType) {
			continue
		}
		if e.CloseMarketOrder(o, reason) {
			n++
		}
	}
	return n
}

// ModifyOrder replaces the protective stops of an open order.
func (e *Engine) ModifyOrder(o Order, stopLoss, takeProfit *float64) bool {
	if !e.isOpen(o) {
		return false
	}
	b := o.Base()
	b.StopLoss = copyPtr(stopLoss)
	b.TakeProfit = copyPtr(takeProfit)
	e.record(OrderModified, o, fmt.Sprintf("sl=%s tp=%s", fmtPtr(stopLoss), fmtPtr(takeProfit)))
	return true
}

// OpenOrders returns the open orders in creation order.
func (e *Engine) OpenOrders() []Order {
	return append([]Order(nil), e.orders...)
}

func (e *Engine) MarketOrders() []*MarketOrder {
	var out []*MarketOrder
	for _, o := range e.orders {
		if mo, ok := o.(*MarketOrder); ok {
			out = append(out, mo)
		}
	}
	return out
}

func (e *Engine) PendingOrders() []*PendingOrder {
	var out []*PendingOrder
	for _, o := range e.orders {
		if po, ok := o.(*PendingOrder); ok {
			out = append(out, po)
		}
	}
	return out
}

func (e *Engine) Trades() []Trade {
	return append([]Trade(nil), e.trades...)
}

func (e *Engine) Events() []TradingEvent {
	return append([]TradingEvent(nil), e.events...)
}

// Snapshot copies the current engine and ledger state.
func (e *Engine) Snapshot() Result {
	return Result{
		Orders:  e.OpenOrders(),
		Trades:  e.Trades(),
		Events:  e.Events(),
		Balance: e.ledger.Balance(),
		Equity:  e.ledger.Equity(),
		Margin:  e.ledger.Margin(),
	}
}

func (e *Engine) ordersOf(sym *market.Symbol) []Order {
	var out []Order
	for _, o := range e.orders {
		if o.Base().Symbol == sym {
			out = append(out, o)
		}
	}
	return out
}

func (e *Engine) isOpen(o Order) bool {
	for _, open := range e.orders {
		if open == o {
			return true
		}
	}
	return false
}

func (e *Engine) remove(o Order) bool {
	for i, open := range e.orders {
		if open == o {
			e.orders = append(e.orders[:i], e.orders[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Engine) record(typ EventType, o Order, note string) {
	ev := TradingEvent{
		Seq:   len(e.events),
		Time:  e.clock.Now(),
		Type:  typ,
		Order: o,
		Note:  note,
	}
	e.events = append(e.events, ev)

	if e.sink == nil {
		return
	}
	b := o.Base()
	err := e.sink.RecordEvent(journal.EventRecord{
		RunID:   e.runID,
		Seq:     ev.Seq,
		Time:    ev.Time,
		Type:    typ.String(),
		OrderID: b.ID,
		Symbol:  b.Symbol.Name,
		Note:    note,
	})
	if err != nil {
		e.log.WithError(err).Error("journal event")
	}
}

func (e *Engine) persistTrade(t Trade) {
	if e.sink == nil {
		return
	}
	err := e.sink.RecordTrade(journal.TradeRecord{
		RunID:       e.runID,
		TradeID:     t.ID,
		OrderID:     t.OrderID,
		Symbol:      t.Symbol,
		TradeType:   t.TradeType.String(),
		Volume:      t.Volume,
		EntryPrice:  t.EntryPrice,
		ClosePrice:  t.ClosePrice,
		OpenTime:    t.OpenTime,
		CloseTime:   t.CloseTime,
		Commission:  t.Commission,
		GrossProfit: t.GrossProfit,
		NetProfit:   t.NetProfit,
		Reason:      t.Reason,
	})
	if err != nil {
		e.log.WithError(err).Error("journal trade")
	}
}

func hasType(types []market.TradeType, t market.TradeType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func fmtPtr(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}
