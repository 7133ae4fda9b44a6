package service

import (
	"context"

	"FinSignal/internal/domain/models"
)

// SignalGenerator produces and persists one trading signal for a symbol and timeframe.
type SignalGenerator interface {
	GenerateSignal(ctx context.Context, symbol, timeframe string) (models.Signal, error)
}

// SignalReader exposes read access to persisted signals.
type SignalReader interface {
	GetSignal(ctx context.Context, id string) (models.Signal, error)
	ListSignals(ctx context.Context, symbol string, limit int) ([]models.Signal, error)
}
