package analytics

import (
	"math"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/services/indicators"
)

// Aggregate fuses the three evaluator results into a signal draft. closes is
// the ascending close history the technical result was computed from.
func (p Policy) Aggregate(closes []float64, tech, onChain, sentiment models.EvaluatorResult) models.SignalDraft {
	tech.Score = clampScore(tech.Score)
	onChain.Score = clampScore(onChain.Score)
	sentiment.Score = clampScore(sentiment.Score)

	ensemble := clampScore(p.TechnicalWeight*tech.Score + p.OnChainWeight*onChain.Score + p.SentimentWeight*sentiment.Score)

	d := models.SignalDraft{
		SignalType:      p.classify(ensemble),
		ConfidenceScore: clamp(math.Abs(ensemble)*100, 0, 100),
		EnsembleScore:   ensemble,
		Volatility:      indicators.Volatility(closes),
		Technical:       tech,
		OnChain:         onChain,
		Sentiment:       sentiment,
	}
	if len(closes) > 0 {
		d.CurrentPrice = closes[len(closes)-1]
	}
	d.RiskLevel = p.riskLevel(d.Volatility)

	// without a price there is nothing to anchor a target to
	if d.CurrentPrice <= 0 {
		d.SignalType = models.SignalHold
	}

	price, v := d.CurrentPrice, d.Volatility
	switch d.SignalType {
	case models.SignalBuy:
		d.TargetPrice = models.Float(price * (1 + p.TargetMultiple*v))
		d.StopLoss = models.Float(math.Max(0, price*(1-p.StopMultiple*v)))
	case models.SignalSell:
		d.TargetPrice = models.Float(math.Max(0, price*(1-p.TargetMultiple*v)))
		d.StopLoss = models.Float(price * (1 + p.StopMultiple*v))
	}
	return d
}

// Evaluate runs the full engine over fetched histories: price ascending,
// on-chain and sentiment newest first.
func (p Policy) Evaluate(prices []models.PricePoint, onChain []models.OnChainSnapshot, sentiment []models.SentimentSnapshot) models.SignalDraft {
	return p.Aggregate(
		models.Closes(prices),
		EvaluateTechnical(prices),
		EvaluateOnChain(onChain),
		EvaluateSentiment(sentiment),
	)
}

func (p Policy) classify(ensemble float64) models.SignalType {
	switch {
	case ensemble > p.BuyThreshold:
		return models.SignalBuy
	case ensemble < p.SellThreshold:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

func (p Policy) riskLevel(volatility float64) models.RiskLevel {
	switch {
	case volatility < p.LowVolatility:
		return models.RiskLow
	case volatility < p.MediumVolatility:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}
