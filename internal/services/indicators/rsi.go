package indicators

import "math"

const (
	// NeutralRSI is returned when there is not enough data or no price movement.
	NeutralRSI = 50.0
	// MaxRSI is returned when the window has gains but no losses.
	MaxRSI = 100.0
)

// RSI computes the relative strength index over the trailing period deltas
// using simple averages of gains and losses.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return NeutralRSI
	}

	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return NeutralRSI
		}
		return MaxRSI
	}

	rsi := 100 - 100/(1+avgGain/avgLoss)
	if math.IsNaN(rsi) || math.IsInf(rsi, 0) {
		return NeutralRSI
	}
	return math.Max(0, math.Min(MaxRSI, rsi))
}
