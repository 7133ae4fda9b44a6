package analytics

import "FinSignal/internal/domain/models"

const (
	ReasonNoSentiment       = "no sentiment data"
	ReasonPositiveSentiment = "positive social sentiment"
	ReasonNegativeSentiment = "negative social sentiment"
	ReasonExtremeFear       = "extreme fear (buy opportunity)"
	ReasonExtremeGreed      = "extreme greed (caution)"
)

// EvaluateSentiment scores the newest snapshot (snaps are newest first).
func EvaluateSentiment(snaps []models.SentimentSnapshot) models.EvaluatorResult {
	if len(snaps) == 0 {
		return models.EvaluatorResult{Score: 0, Reasons: []string{ReasonNoSentiment}}
	}
	latest := snaps[0]
	score := 0.0
	reasons := make([]string, 0, 2)

	if s := latest.SentimentScore; s != nil {
		score += *s * SocialSentimentWeight
		switch {
		case *s > SentimentStrong:
			reasons = append(reasons, ReasonPositiveSentiment)
		case *s < -SentimentStrong:
			reasons = append(reasons, ReasonNegativeSentiment)
		}
	}

	if fg := latest.FearGreedIndex; fg != nil {
		score += (*fg - FearGreedNeutral) / FearGreedNeutral * FearGreedWeight
		switch {
		case *fg < FearGreedExtremeFear:
			reasons = append(reasons, ReasonExtremeFear)
		case *fg > FearGreedExtremeGreed:
			reasons = append(reasons, ReasonExtremeGreed)
		}
	}

	return models.EvaluatorResult{Score: clampScore(score), Reasons: reasons}
}
