package analytics

import "FinSignal/internal/domain/models"

const (
	ReasonInsufficientOnChain = "insufficient on-chain data"
	ReasonActiveAddressGrowth = "active addresses growth >10%"
	ReasonAccumulation        = "accumulation"
	ReasonDistribution        = "distribution"
)

// EvaluateOnChain scores the two newest snapshots (newest first).
func EvaluateOnChain(snaps []models.OnChainSnapshot) models.EvaluatorResult {
	if len(snaps) < MinOnChainSnapshots {
		return models.EvaluatorResult{Score: 0, Reasons: []string{ReasonInsufficientOnChain}}
	}
	latest, prev := snaps[0], snaps[1]
	score := 0.0
	reasons := make([]string, 0, 2)

	if latest.ActiveAddresses != nil && prev.ActiveAddresses != nil && *prev.ActiveAddresses != 0 {
		growth := (*latest.ActiveAddresses - *prev.ActiveAddresses) / *prev.ActiveAddresses * 100
		if growth > ActiveAddressGrowthPct {
			score += ActiveAddressGrowthBonus
			reasons = append(reasons, ReasonActiveAddressGrowth)
		}
	}

	if latest.ExchangeInflows != nil && latest.ExchangeOutflows != nil {
		netflow := *latest.ExchangeInflows - *latest.ExchangeOutflows
		switch {
		case netflow < 0:
			score += AccumulationBonus
			reasons = append(reasons, ReasonAccumulation)
		case netflow > 0:
			score -= DistributionPenalty
			reasons = append(reasons, ReasonDistribution)
		}
	}

	return models.EvaluatorResult{Score: clampScore(score), Reasons: reasons}
}
