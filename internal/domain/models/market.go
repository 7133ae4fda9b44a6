package models

import "time"

// PricePoint is one OHLCV bar for a token. Histories are ordered ascending by
// Timestamp with no duplicate timestamps per symbol.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open_price"`
	High      float64   `json:"high_price"`
	Low       float64   `json:"low_price"`
	Close     float64   `json:"close_price"`
	Volume    *float64  `json:"volume,omitempty"`
	MarketCap *float64  `json:"market_cap,omitempty"`
}

// OnChainSnapshot holds network activity for a token at a point in time.
// Every metric is optional; providers leave missing values nil.
type OnChainSnapshot struct {
	Timestamp         time.Time `json:"timestamp"`
	ActiveAddresses   *float64  `json:"active_addresses,omitempty"`
	TransactionVolume *float64  `json:"transaction_volume,omitempty"`
	ExchangeInflows   *float64  `json:"exchange_inflows,omitempty"`
	ExchangeOutflows  *float64  `json:"exchange_outflows,omitempty"`
	NetworkValue      *float64  `json:"network_value,omitempty"`
}

// SentimentSnapshot holds social/market sentiment for a token.
// SentimentScore is in [-1,1], FearGreedIndex in [0,100].
type SentimentSnapshot struct {
	Timestamp      time.Time `json:"timestamp"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"`
	FearGreedIndex *float64  `json:"fear_greed_index,omitempty"`
	SocialMentions *float64  `json:"social_mentions,omitempty"`
	NewsSentiment  *float64  `json:"news_sentiment,omitempty"`
	SentimentLabel *string   `json:"sentiment_label,omitempty"`
}

// Closes extracts closing prices in history order.
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

// Volumes extracts volumes in history order; missing volume counts as zero.
func Volumes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		if p.Volume != nil {
			out[i] = *p.Volume
		}
	}
	return out
}

// Float returns a pointer to v. Handy for building optional metrics.
func Float(v float64) *float64 { return &v }
