package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
)

// DefaultVolatility is used when fewer than two prices are available.
const DefaultVolatility = 0.05

// SimpleReturns computes r_t = C_t/C_{t-1} - 1. Non-positive previous prices
// yield a zero return. The result has len(closes)-1 entries, or nil.
func SimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// Volatility is the population standard deviation of simple period-over-period
// returns across the whole series.
func Volatility(closes []float64) float64 {
	if len(closes) < 2 {
		return DefaultVolatility
	}
	rets := SimpleReturns(closes)
	v := last(talib.StdDev(rets, len(rets), 1))
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultVolatility
	}
	return v
}
