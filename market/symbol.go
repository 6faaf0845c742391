package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrVolumeOutOfRange = errors.New("volume out of range")
	ErrVolumeNotStepped = errors.New("volume is not a multiple of the volume step")
)

// TradeType is the side of an order.
type TradeType int

const (
	Buy TradeType = iota
	Sell
)

func (t TradeType) String() string {
	switch t {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	}
	return fmt.Sprintf("TradeType(%d)", int(t))
}

// TickHandler is notified after every price update of a symbol.
type TickHandler func(s *Symbol) error

// BarHandler is notified after a bar was appended at index.
type BarHandler func(s *Symbol, index int) error

type subscription[H any] struct {
	handler H
	active  bool
}

// Symbol carries the identity, the current quote and the published bars of
// one tradable instrument. The quote only changes through PublishBar and
// PublishTick. Not safe for concurrent use; live feeds serialize onto one
// goroutine first (see package feed).
type Symbol struct {
	SymbolInfo

	bid  float64
	ask  float64
	time time.Time
	bars *Bars

	tickSubs []*subscription[TickHandler]
	barSubs  []*subscription[BarHandler]
}

func NewSymbol(info SymbolInfo) (*Symbol, error) {
	switch {
	case info.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSymbol)
	case info.TickSize <= 0:
		return nil, fmt.Errorf("%w: %s tick_size must be positive", ErrInvalidSymbol, info.Name)
	case info.VolumeStep <= 0:
		return nil, fmt.Errorf("%w: %s volume_step must be positive", ErrInvalidSymbol, info.Name)
	case info.MinVolume <= 0 || info.MaxVolume < info.MinVolume:
		return nil, fmt.Errorf("%w: %s volume bounds [%v, %v]", ErrInvalidSymbol, info.Name, info.MinVolume, info.MaxVolume)
	case info.VolumeUnitValue <= 0:
		return nil, fmt.Errorf("%w: %s volume_unit_value must be positive", ErrInvalidSymbol, info.Name)
	}
	return &Symbol{SymbolInfo: info, bars: NewBars(0)}, nil
}

func (s *Symbol) Bid() float64    { return s.bid }
func (s *Symbol) Ask() float64    { return s.ask }
func (s *Symbol) Spread() float64 { return s.ask - s.bid }
func (s *Symbol) Time() time.Time { return s.time }
func (s *Symbol) Bars() *Bars     { return s.bars }

// PipSize is one unit in the last quoted digit.
func (s *Symbol) PipSize() float64 {
	return math.Pow10(-s.Digits)
}

// GetPrice returns the price an order of side t executes at: ask for buys,
// bid for sells.
func (s *Symbol) GetPrice(t TradeType) float64 {
	if t == Buy {
		return s.ask
	}
	return s.bid
}

// ValidateVolume checks v against the volume bounds and step.
func (s *Symbol) ValidateVolume(v float64) error {
	if v < s.MinVolume || v > s.MaxVolume {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrVolumeOutOfRange, v, s.MinVolume, s.MaxVolume)
	}
	steps := v / s.VolumeStep
	if math.Abs(steps-math.Round(steps)) > 1e-9 {
		return fmt.Errorf("%w: %v (step %v)", ErrVolumeNotStepped, v, s.VolumeStep)
	}
	return nil
}

// NormalizeVolume rounds v down to the volume step and clamps it to the
// volume bounds.
func (s *Symbol) NormalizeVolume(v float64) float64 {
	steps := math.Floor(v/s.VolumeStep + 1e-9)
	v = steps * s.VolumeStep
	v = math.Min(math.Max(v, s.MinVolume), s.MaxVolume)
	return math.Round(v/s.VolumeStep) * s.VolumeStep
}

// OnTick registers h and returns a function that removes it again.
func (s *Symbol) OnTick(h TickHandler) (unsubscribe func()) {
	sub := &subscription[TickHandler]{handler: h, active: true}
	s.tickSubs = append(s.tickSubs, sub)
	return func() {
		sub.active = false
		s.tickSubs = prune(s.tickSubs)
	}
}

// OnBar registers h and returns a function that removes it again.
func (s *Symbol) OnBar(h BarHandler) (unsubscribe func()) {
	sub := &subscription[BarHandler]{handler: h, active: true}
	s.barSubs = append(s.barSubs, sub)
	return func() {
		sub.active = false
		s.barSubs = prune(s.barSubs)
	}
}

// PublishTick updates the quote and notifies tick handlers.
func (s *Symbol) PublishTick(bid, ask float64, t time.Time) error {
	s.bid, s.ask, s.time = bid, ask, t
	return s.notifyTick()
}

// PublishBar simulates a zero spread tick at the bar close, then appends the
// bar and notifies bar handlers with its index. A failing tick handler
// still leaves the bar appended but suppresses the bar notification.
func (s *Symbol) PublishBar(bar Bar) (int, error) {
	s.bid, s.ask, s.time = bar.Close, bar.Close, bar.Time
	tickErr := s.notifyTick()

	idx := s.bars.Append(bar)
	if tickErr != nil {
		return idx, tickErr
	}
	return idx, s.notifyBar(idx)
}

// Handlers added or removed during a notification take effect on the next
// one; a removed handler is never called again.
func (s *Symbol) notifyTick() error {
	subs := append([]*subscription[TickHandler](nil), s.tickSubs...)
	for _, sub := range subs {
		if !sub.active {
			continue
		}
		if err := sub.handler(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Symbol) notifyBar(idx int) error {
	subs := append([]*subscription[BarHandler](nil), s.barSubs...)
	for _, sub := range subs {
		if !sub.active {
			continue
		}
		if err := sub.handler(s, idx); err != nil {
			return err
		}
	}
	return nil
}

func prune[H any](subs []*subscription[H]) []*subscription[H] {
	out := subs[:0:0]
	for _, sub := range subs {
		if sub.active {
			out = append(out, sub)
		}
	}
	return out
}
