package replay

import (
	"time"

	"github.com/rustyeddy/stratsim/market"
)

// Resample aggregates bars into buckets of tf aligned to UTC. Buckets built
// from fewer than minBars source bars are dropped.
func Resample(bars []market.Bar, tf time.Duration, minBars int) []market.Bar {
	if tf <= 0 || len(bars) == 0 {
		return bars
	}
	if minBars < 1 {
		minBars = 1
	}

	var out []market.Bar
	var cur market.Bar
	n := 0
	flush := func() {
		if n >= minBars {
			out = append(out, cur)
		}
	}
	for _, b := range bars {
		start := b.Time.UTC().Truncate(tf)
		if n > 0 && start.Equal(cur.Time) {
			cur.High = max(cur.High, b.High)
			cur.Low = min(cur.Low, b.Low)
			cur.Close = b.Close
			cur.Volume += b.Volume
			n++
			continue
		}
		if n > 0 {
			flush()
		}
		cur = market.Bar{Time: start, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
		n = 1
	}
	flush()
	return out
}

type GapKind string

const (
	GapMinor      GapKind = "minor"
	GapWeekend    GapKind = "weekend"
	GapSuspicious GapKind = "suspicious"
)

// Gap is a run of missing bars between two present ones.
type Gap struct {
	Start   time.Time // open time of the first missing bar
	Missing int
	Kind    GapKind
}

type GapStats struct {
	Bars        int
	Missing     int
	Gaps        int
	Weekend     int
	Suspicious  int
	Longest     int
	LongestKind GapKind
}

// FindGaps lists the holes in bars at timeframe tf.
func FindGaps(bars []market.Bar, tf time.Duration) []Gap {
	if tf <= 0 {
		return nil
	}
	var gaps []Gap
	for i := 1; i < len(bars); i++ {
		missing := int(bars[i].Time.Sub(bars[i-1].Time)/tf) - 1
		if missing <= 0 {
			continue
		}
		start := bars[i-1].Time.Add(tf)
		gaps = append(gaps, Gap{Start: start, Missing: missing, Kind: classifyGap(start, missing, tf)})
	}
	return gaps
}

// GapReport summarizes FindGaps.
func GapReport(bars []market.Bar, tf time.Duration) GapStats {
	s := GapStats{Bars: len(bars)}
	for _, g := range FindGaps(bars, tf) {
		s.Gaps++
		s.Missing += g.Missing
		if g.Missing > s.Longest {
			s.Longest = g.Missing
			s.LongestKind = g.Kind
		}
		switch g.Kind {
		case GapWeekend:
			s.Weekend++
		case GapSuspicious:
			s.Suspicious++
		}
	}
	return s
}

// A day or more starting Friday to Sunday (UTC) is a market weekend. Ten
// minutes or more anywhere else is worth a look.
func classifyGap(start time.Time, missing int, tf time.Duration) GapKind {
	length := time.Duration(missing) * tf
	if length >= 24*time.Hour {
		switch start.UTC().Weekday() {
		case time.Friday, time.Saturday, time.Sunday:
			return GapWeekend
		}
		return GapSuspicious
	}
	if length >= 10*time.Minute {
		return GapSuspicious
	}
	return GapMinor
}

// InferTimeframe returns the smallest positive spacing of bars, or 0.
func InferTimeframe(bars []market.Bar) time.Duration {
	var tf time.Duration
	for i := 1; i < len(bars); i++ {
		d := bars[i].Time.Sub(bars[i-1].Time)
		if d > 0 && (tf == 0 || d < tf) {
			tf = d
		}
	}
	return tf
}
