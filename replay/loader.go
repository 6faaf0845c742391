package replay

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/stratsim/market"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime accepts the layouts above or unix seconds, always in UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}

type barRow struct {
	Time   string  `csv:"time"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

func (r barRow) toBar() (market.Bar, error) {
	t, err := ParseTime(r.Time)
	if err != nil {
		return market.Bar{}, err
	}
	return market.Bar{Time: t, Open: r.Open, High: r.High, Low: r.Low, Close: r.Close, Volume: r.Volume}, nil
}

// LoadBars reads a bar CSV with the header time,open,high,low,close[,volume].
// Files ending in .xz or .gz are decompressed.
func LoadBars(path string) ([]market.Bar, error) {
	r, closeFn, err := openData(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	bars, err := ReadBars(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

func openData(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		return xr, func() { f.Close() }, nil
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		return gz, func() { gz.Close(); f.Close() }, nil
	}
	return f, func() { f.Close() }, nil
}

// ReadBars decodes bar CSV from r and checks the bars are chronological.
func ReadBars(r io.Reader) ([]market.Bar, error) {
	var rows []barRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	bars := make([]market.Bar, len(rows))
	for i, row := range rows {
		b, err := row.toBar()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		bars[i] = b
	}
	if err := CheckOrder(bars); err != nil {
		return nil, err
	}
	return bars, nil
}
