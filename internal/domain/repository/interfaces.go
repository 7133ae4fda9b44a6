package repository

import (
	"context"

	"FinSignal/internal/domain/models"
)

// PriceHistoryProvider returns price bars from the last lookbackDays, ascending by timestamp.
type PriceHistoryProvider interface {
	GetPriceHistory(ctx context.Context, symbol string, lookbackDays int) ([]models.PricePoint, error)
}

// OnChainHistoryProvider returns on-chain snapshots from the last lookbackDays, newest first.
type OnChainHistoryProvider interface {
	GetOnChainHistory(ctx context.Context, symbol string, lookbackDays int) ([]models.OnChainSnapshot, error)
}

// SentimentHistoryProvider returns sentiment snapshots from the last lookbackDays, newest first.
type SentimentHistoryProvider interface {
	GetSentimentHistory(ctx context.Context, symbol string, lookbackDays int) ([]models.SentimentSnapshot, error)
}

// MarketHistory bundles the three read-only providers.
type MarketHistory interface {
	PriceHistoryProvider
	OnChainHistoryProvider
	SentimentHistoryProvider
}

// PriceWriter persists price bars, ignoring bars whose timestamp already exists.
// It returns the number of bars actually inserted.
type PriceWriter interface {
	StorePricePoints(ctx context.Context, symbol string, points []models.PricePoint) (int, error)
}

// TokenCatalog lists the supported tokens.
type TokenCatalog interface {
	// ListTokens returns active tokens, largest market cap first, tokens
	// without a market cap last.
	ListTokens(ctx context.Context) ([]models.Token, error)
}

// DefaultSignalLimit applies when ListSignals is called without a positive limit.
const DefaultSignalLimit = 10

// SignalStore is the system of record for generated signals.
type SignalStore interface {
	// SaveSignal persists s and returns it with ID and CreatedAt assigned.
	SaveSignal(ctx context.Context, s models.Signal) (models.Signal, error)
	// GetSignal returns models.ErrSignalNotFound when id is unknown.
	GetSignal(ctx context.Context, id string) (models.Signal, error)
	// ListSignals returns the newest signals first; empty symbol means all symbols.
	ListSignals(ctx context.Context, symbol string, limit int) ([]models.Signal, error)
}

// SignalPublisher fans a persisted signal out to downstream consumers.
type SignalPublisher interface {
	PublishSignal(ctx context.Context, s models.Signal) error
}

type Metrics interface {
	RecordSignal(symbol string, signalType models.SignalType, timeframe string, confidence float64)
	RecordPublished(sink string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
