package market

import "time"

// Bar is one OHLCV sample. Bars are values and are never modified after
// they are published.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bars is the column store of a symbol's published bars. Every column
// shares the same index.
type Bars struct {
	OpenTimes *TimeSeries[time.Time]
	Open      *TimeSeries[float64]
	High      *TimeSeries[float64]
	Low       *TimeSeries[float64]
	Close     *TimeSeries[float64]
	Volume    *TimeSeries[float64]
}

func NewBars(capacity int) *Bars {
	return &Bars{
		OpenTimes: NewTimeSeries[time.Time](capacity),
		Open:      NewTimeSeries[float64](capacity),
		High:      NewTimeSeries[float64](capacity),
		Low:       NewTimeSeries[float64](capacity),
		Close:     NewTimeSeries[float64](capacity),
		Volume:    NewTimeSeries[float64](capacity),
	}
}

// Append adds b to every column and returns the shared index.
func (b *Bars) Append(bar Bar) int {
	idx := b.OpenTimes.Append(bar.Time)
	b.Open.Append(bar.Open)
	b.High.Append(bar.High)
	b.Low.Append(bar.Low)
	b.Close.Append(bar.Close)
	b.Volume.Append(bar.Volume)
	return idx
}

func (b *Bars) Len() int { return b.OpenTimes.Len() }

// Bar reassembles the bar stored at idx.
func (b *Bars) Bar(idx int) (Bar, bool) {
	t, ok := b.OpenTimes.At(idx)
	if !ok {
		return Bar{}, false
	}
	o, _ := b.Open.At(idx)
	h, _ := b.High.At(idx)
	l, _ := b.Low.At(idx)
	c, _ := b.Close.At(idx)
	v, _ := b.Volume.At(idx)
	return Bar{Time: t, Open: o, High: h, Low: l, Close: c, Volume: v}, true
}

func (b *Bars) LastBar() (Bar, bool) {
	return b.Bar(b.Len() - 1)
}
