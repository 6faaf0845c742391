package indicators

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// MA calculates the Simple Moving Average of the last period values.
func MA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("not enough values: need %d, got %d", period, len(values))
	}
	return stats.Mean(values[len(values)-period:])
}

// EMA calculates the Exponential Moving Average of values, seeded with the
// SMA of the first period values.
func EMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("not enough values: need %d, got %d", period, len(values))
	}

	ema, err := stats.Mean(values[:period])
	if err != nil {
		return 0, err
	}
	multiplier := 2.0 / float64(period+1)
	for _, v := range values[period:] {
		ema = (v-ema)*multiplier + ema
	}
	return ema, nil
}
