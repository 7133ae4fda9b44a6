package analytics

import (
	"fmt"
	"math"
)

// Technical evaluator windows and thresholds.
const (
	MinTechnicalBars = 26

	RSIPeriod     = 7
	RSIOversold   = 30.0
	RSIOverbought = 70.0

	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9

	BollingerPeriod = 20
	BollingerStdDev = 2.0

	VolumeLookback    = 10
	VolumeSpikeFactor = 1.5

	VWMAPeriod = 14
)

// On-chain and sentiment evaluator constants.
const (
	MinOnChainSnapshots      = 2
	ActiveAddressGrowthPct   = 10.0
	ActiveAddressGrowthBonus = 0.5
	AccumulationBonus        = 0.5
	DistributionPenalty      = 0.3

	SocialSentimentWeight = 0.6
	FearGreedWeight       = 0.4
	SentimentStrong       = 0.3
	FearGreedNeutral      = 50.0
	FearGreedExtremeFear  = 25.0
	FearGreedExtremeGreed = 75.0
)

// Policy is the aggregation policy: how evaluator scores are weighted, where
// BUY/SELL cut in, how volatility maps to risk and how far targets and stops
// sit from the current price.
type Policy struct {
	TechnicalWeight float64 `yaml:"technical_weight"`
	OnChainWeight   float64 `yaml:"onchain_weight"`
	SentimentWeight float64 `yaml:"sentiment_weight"`

	BuyThreshold  float64 `yaml:"buy_threshold"`
	SellThreshold float64 `yaml:"sell_threshold"`

	LowVolatility    float64 `yaml:"low_volatility"`
	MediumVolatility float64 `yaml:"medium_volatility"`

	TargetMultiple float64 `yaml:"target_multiple"`
	StopMultiple   float64 `yaml:"stop_multiple"`
}

// DefaultPolicy returns the production weights and thresholds.
func DefaultPolicy() Policy {
	return Policy{
		TechnicalWeight:  0.4,
		OnChainWeight:    0.3,
		SentimentWeight:  0.3,
		BuyThreshold:     0.3,
		SellThreshold:    -0.3,
		LowVolatility:    0.02,
		MediumVolatility: 0.05,
		TargetMultiple:   2,
		StopMultiple:     1,
	}
}

// Validate rejects policies that could push the ensemble score outside [-1,1]
// or make the classification ambiguous.
func (p Policy) Validate() error {
	for name, w := range map[string]float64{
		"technical_weight": p.TechnicalWeight,
		"onchain_weight":   p.OnChainWeight,
		"sentiment_weight": p.SentimentWeight,
	} {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("policy: %s must be non-negative", name)
		}
	}
	if sum := p.TechnicalWeight + p.OnChainWeight + p.SentimentWeight; sum > 1+1e-9 {
		return fmt.Errorf("policy: weights sum to %.4f, must be <= 1", sum)
	}
	if !(p.BuyThreshold > 0) || !(p.SellThreshold < 0) {
		return fmt.Errorf("policy: need buy_threshold > 0 > sell_threshold")
	}
	if !(p.LowVolatility > 0) || p.LowVolatility >= p.MediumVolatility {
		return fmt.Errorf("policy: need 0 < low_volatility < medium_volatility")
	}
	if !(p.TargetMultiple > 0) || !(p.StopMultiple > 0) {
		return fmt.Errorf("policy: target and stop multiples must be positive")
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampScore(v float64) float64 { return clamp(v, -1, 1) }
