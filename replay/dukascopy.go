package replay

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/stratsim/market"
)

// Dukascopy exports stamp bars in EST without daylight saving.
var estNoDST = time.FixedZone("EST", -5*60*60)

const dukascopyLayout = "20060102 150405"

// Ingest counts the lines ReadDukascopy skipped.
type Ingest struct {
	Duplicates int
	BadLines   int
}

// LoadDukascopy reads a Dukascopy bar export, optionally compressed like
// LoadBars.
func LoadDukascopy(path string) ([]market.Bar, Ingest, error) {
	r, closeFn, err := openData(path)
	if err != nil {
		return nil, Ingest{}, err
	}
	defer closeFn()

	bars, in, err := ReadDukascopy(r)
	if err != nil {
		return nil, in, fmt.Errorf("%s: %w", path, err)
	}
	return bars, in, nil
}

// ReadDukascopy parses "20060102 150405;open;high;low;close;volume" lines.
// The result is sorted by time in UTC; the first of duplicate timestamps
// wins and malformed lines are counted and skipped.
func ReadDukascopy(r io.Reader) ([]market.Bar, Ingest, error) {
	var in Ingest
	var bars []market.Bar

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(strings.ToLower(line), "time;") {
			continue
		}
		b, ok := parseDukascopy(line)
		if !ok {
			in.BadLines++
			continue
		}
		bars = append(bars, b)
	}
	if err := sc.Err(); err != nil {
		return nil, in, err
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && b.Time.Equal(out[len(out)-1].Time) {
			in.Duplicates++
			continue
		}
		out = append(out, b)
	}
	return out, in, nil
}

func parseDukascopy(line string) (market.Bar, bool) {
	parts := strings.Split(line, ";")
	if len(parts) < 5 {
		return market.Bar{}, false
	}
	t, err := time.ParseInLocation(dukascopyLayout, strings.TrimSpace(parts[0]), estNoDST)
	if err != nil {
		return market.Bar{}, false
	}

	var px [5]float64
	n := min(len(parts)-1, 5)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return market.Bar{}, false
		}
		px[i] = v
	}
	return market.Bar{Time: t.UTC(), Open: px[0], High: px[1], Low: px[2], Close: px[3], Volume: px[4]}, true
}
