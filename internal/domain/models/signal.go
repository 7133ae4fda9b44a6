package models

import "time"

type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// EvaluatorResult is the bounded score one evaluator produced, with short
// reason tags in the order they were detected.
type EvaluatorResult struct {
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// Signal is a generated trading signal. ID and CreatedAt are owned by the
// signal store and are zero until the signal is persisted.
type Signal struct {
	ID              string     `json:"id"`
	TokenSymbol     string     `json:"token_symbol"`
	SignalType      SignalType `json:"signal_type"`
	ConfidenceScore float64    `json:"confidence_score"`
	TargetPrice     *float64   `json:"target_price"`
	StopLoss        *float64   `json:"stop_loss"`
	RiskLevel       RiskLevel  `json:"risk_level"`
	Timeframe       string     `json:"timeframe"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`

	// Breakdown of how the signal was reached.
	EnsembleScore  float64  `json:"ensemble_score"`
	TechnicalScore float64  `json:"technical_score"`
	OnChainScore   float64  `json:"onchain_score"`
	SentimentScore float64  `json:"sentiment_score"`
	Reasons        []string `json:"reasons"`
}

// SignalDraft is the aggregator output before it is bound to a symbol and
// timeframe.
type SignalDraft struct {
	SignalType      SignalType
	ConfidenceScore float64
	TargetPrice     *float64
	StopLoss        *float64
	RiskLevel       RiskLevel
	EnsembleScore   float64
	CurrentPrice    float64
	Volatility      float64
	Technical       EvaluatorResult
	OnChain         EvaluatorResult
	Sentiment       EvaluatorResult
}

// Reasons concatenates evaluator reasons in technical, on-chain, sentiment order.
func (d SignalDraft) Reasons() []string {
	out := make([]string, 0, len(d.Technical.Reasons)+len(d.OnChain.Reasons)+len(d.Sentiment.Reasons))
	out = append(out, d.Technical.Reasons...)
	out = append(out, d.OnChain.Reasons...)
	out = append(out, d.Sentiment.Reasons...)
	return out
}
