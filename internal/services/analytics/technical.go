package analytics

import (
	"FinSignal/internal/domain/models"
	"FinSignal/internal/services/indicators"
)

// Technical evaluator reason tags.
const (
	ReasonInsufficientData = "insufficient data"
	ReasonOversold         = "oversold"
	ReasonOverbought       = "overbought"
	ReasonBullishCrossover = "bullish crossover"
	ReasonBearishCrossover = "bearish crossover"
	ReasonLowerBandVolume  = "lower-band touch with elevated volume"
	ReasonUpperBandTouch   = "upper-band touch"
	ReasonAboveVWMA        = "price above VWMA"
	ReasonBelowVWMA        = "price below VWMA"
)

// EvaluateTechnical scores the price history (ascending) from four equally
// weighted sub-signals: RSI, MACD, Bollinger Bands with volume context and VWMA.
func EvaluateTechnical(points []models.PricePoint) models.EvaluatorResult {
	if len(points) < MinTechnicalBars {
		return models.EvaluatorResult{Score: 0, Reasons: []string{ReasonInsufficientData}}
	}

	closes := models.Closes(points)
	volumes := models.Volumes(points)
	last := closes[len(closes)-1]
	reasons := make([]string, 0, 4)

	var rsiSig float64
	switch rsi := indicators.RSI(closes, RSIPeriod); {
	case rsi < RSIOversold:
		rsiSig = 1
		reasons = append(reasons, ReasonOversold)
	case rsi > RSIOverbought:
		rsiSig = -1
		reasons = append(reasons, ReasonOverbought)
	}

	var macdSig float64
	m := indicators.MACD(closes, MACDFast, MACDSlow, MACDSignal)
	switch {
	case m.Histogram > 0 && m.MACD > m.Signal:
		macdSig = 1
		reasons = append(reasons, ReasonBullishCrossover)
	case m.Histogram < 0 && m.MACD < m.Signal:
		macdSig = -1
		reasons = append(reasons, ReasonBearishCrossover)
	}

	var bbSig float64
	bands := indicators.BollingerBands(closes, BollingerPeriod, BollingerStdDev)
	// collapsed bands carry no information
	if bands.Width() > 0 {
		avgVol := indicators.SMA(volumes, VolumeLookback)
		curVol := volumes[len(volumes)-1]
		switch {
		case last <= bands.Lower && curVol > VolumeSpikeFactor*avgVol:
			bbSig = 1
			reasons = append(reasons, ReasonLowerBandVolume)
		case last >= bands.Upper:
			bbSig = -1
			reasons = append(reasons, ReasonUpperBandTouch)
		}
	}

	var vwmaSig float64
	switch vwma := indicators.VWMA(closes, volumes, VWMAPeriod); {
	case last > vwma:
		vwmaSig = 0.5
		reasons = append(reasons, ReasonAboveVWMA)
	case last < vwma:
		vwmaSig = -0.5
		reasons = append(reasons, ReasonBelowVWMA)
	}

	score := (rsiSig + macdSig + bbSig + vwmaSig) / 4
	return models.EvaluatorResult{Score: clampScore(score), Reasons: reasons}
}
