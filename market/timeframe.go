package market

import (
	"fmt"
	"strings"
	"time"
)

var timeframes = map[string]time.Duration{
	"M1":  time.Minute,
	"M5":  5 * time.Minute,
	"M15": 15 * time.Minute,
	"M30": 30 * time.Minute,
	"H1":  time.Hour,
	"H4":  4 * time.Hour,
	"D1":  24 * time.Hour,
	"W1":  7 * 24 * time.Hour,
}

// ParseTimeframe converts a timeframe such as "M5", "H1" or "D1" to its bar
// duration.
func ParseTimeframe(tf string) (time.Duration, error) {
	d, ok := timeframes[strings.ToUpper(strings.TrimSpace(tf))]
	if !ok {
		return 0, fmt.Errorf("unsupported timeframe: %q", tf)
	}
	return d, nil
}

// FormatTimeframe is the inverse of ParseTimeframe for any whole number of
// minutes, hours or days.
func FormatTimeframe(d time.Duration) (string, error) {
	if d <= 0 {
		return "", fmt.Errorf("invalid timeframe: %v", d)
	}
	day := 24 * time.Hour
	switch {
	case d < time.Hour && d%time.Minute == 0:
		return fmt.Sprintf("M%d", d/time.Minute), nil
	case d < day && d%time.Hour == 0:
		return fmt.Sprintf("H%d", d/time.Hour), nil
	case d == 7*day:
		return "W1", nil
	case d%day == 0:
		return fmt.Sprintf("D%d", d/day), nil
	}
	return "", fmt.Errorf("cannot map timeframe: %v", d)
}
