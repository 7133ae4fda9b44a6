package indicators

import "github.com/markcheno/go-talib"

// EMA returns the exponential moving average of series at its newest point.
// The average is seeded with the simple mean of the oldest period values and
// smoothed forward with k = 2/(period+1). With fewer than period values the
// newest value is returned unchanged.
func EMA(series []float64, period int) float64 {
	if len(series) == 0 {
		return 0
	}
	if period <= 0 || len(series) < period {
		return series[len(series)-1]
	}
	return last(talib.Ema(series, period))
}

// SMA returns the simple mean of the trailing period values (or of all values
// when fewer are available).
func SMA(series []float64, period int) float64 {
	w := trailing(series, period)
	if len(w) == 0 {
		return 0
	}
	return last(talib.Sma(w, len(w)))
}

func trailing(xs []float64, period int) []float64 {
	if period <= 0 || len(xs) <= period {
		return xs
	}
	return xs[len(xs)-period:]
}

func last(xs []float64) float64 { return xs[len(xs)-1] }
