package indicators

import "github.com/markcheno/go-talib"

// MACDResult holds the newest MACD line, signal line and histogram values.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD computes the moving average convergence/divergence of closes.
//
// The MACD line is EMA(fast) - EMA(slow) at every bar where both averages are
// defined; the signal line is the EMA of that line over signalPeriod bars.
// When the line has fewer than signalPeriod values the signal equals the line
// and the histogram is zero.
func MACD(closes []float64, fast, slow, signalPeriod int) MACDResult {
	if len(closes) == 0 || fast <= 0 || slow <= 0 {
		return MACDResult{}
	}

	start := max(fast, slow)
	if len(closes) < start {
		line := EMA(closes, fast) - EMA(closes, slow)
		return MACDResult{MACD: line, Signal: line}
	}

	fastS := talib.Ema(closes, fast)
	slowS := talib.Ema(closes, slow)
	line := make([]float64, 0, len(closes)-start+1)
	for i := start - 1; i < len(closes); i++ {
		line = append(line, fastS[i]-slowS[i])
	}

	m := last(line)
	sig := EMA(line, signalPeriod)
	return MACDResult{MACD: m, Signal: sig, Histogram: m - sig}
}
