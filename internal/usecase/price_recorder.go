package usecase

import (
	"context"
	"fmt"
	"sort"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	applogger "FinSignal/pkg/logger"
)

const maxHistoryDays = 365

// PriceStore is what PriceRecorder needs from storage.
type PriceStore interface {
	domrepo.PriceHistoryProvider
	domrepo.PriceWriter
}

// PriceRecorder ingests price bars and serves raw price history.
type PriceRecorder struct {
	store   PriceStore
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewPriceRecorder(store PriceStore, metrics domrepo.Metrics) *PriceRecorder {
	return &PriceRecorder{store: store, metrics: metrics}
}

func (r *PriceRecorder) SetLogger(l *applogger.Logger) { r.l = l }

// Record validates points, drops duplicate timestamps within the batch and
// stores the rest in ascending order. It returns how many bars were new.
func (r *PriceRecorder) Record(ctx context.Context, symbol string, points []models.PricePoint) (int, error) {
	sym := domrepo.NormalizeSymbol(symbol)
	if sym == "" {
		return 0, &models.ValidationError{Field: "symbol", Message: "must not be empty"}
	}
	if len(points) == 0 {
		return 0, &models.ValidationError{Field: "points", Message: "must not be empty"}
	}
	for i, p := range points {
		if err := validateBar(p); err != nil {
			return 0, &models.ValidationError{Field: fmt.Sprintf("points[%d]", i), Message: err.Error()}
		}
	}

	sorted := make([]models.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })
	uniq := sorted[:0]
	for i, p := range sorted {
		if i > 0 && p.Timestamp.Equal(sorted[i-1].Timestamp) {
			continue
		}
		uniq = append(uniq, p)
	}

	n, err := r.store.StorePricePoints(ctx, sym, uniq)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordError("store_prices")
		}
		return 0, &models.DataUnavailableError{Source: "price_store", Err: err}
	}
	if r.l != nil {
		r.l.Info("price points stored",
			applogger.String("symbol", sym),
			applogger.Int("received", len(points)),
			applogger.Int("inserted", n),
		)
	}
	return n, nil
}

// PriceHistory returns ascending bars from the last days days.
func (r *PriceRecorder) PriceHistory(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	sym := domrepo.NormalizeSymbol(symbol)
	if sym == "" {
		return nil, &models.ValidationError{Field: "symbol", Message: "must not be empty"}
	}
	if days <= 0 || days > maxHistoryDays {
		return nil, &models.ValidationError{Field: "days", Message: fmt.Sprintf("must be between 1 and %d", maxHistoryDays)}
	}
	out, err := r.store.GetPriceHistory(ctx, sym, days)
	if err != nil {
		return nil, &models.DataUnavailableError{Source: "price_history", Err: err}
	}
	return out, nil
}

func validateBar(p models.PricePoint) error {
	switch {
	case p.Timestamp.IsZero():
		return fmt.Errorf("timestamp required")
	case p.Open <= 0 || p.High <= 0 || p.Low <= 0 || p.Close <= 0:
		return fmt.Errorf("prices must be positive")
	case p.High < p.Low:
		return fmt.Errorf("high below low")
	case p.Volume != nil && *p.Volume < 0:
		return fmt.Errorf("volume must not be negative")
	case p.MarketCap != nil && *p.MarketCap < 0:
		return fmt.Errorf("market cap must not be negative")
	}
	return nil
}
