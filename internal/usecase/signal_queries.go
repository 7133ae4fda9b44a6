package usecase

import (
	"context"
	"fmt"
	"strings"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
	"FinSignal/pkg/util"
)

const maxSignalLimit = 100

// SignalQueries serves read access to persisted signals.
type SignalQueries struct {
	store domrepo.SignalStore
}

func NewSignalQueries(store domrepo.SignalStore) *SignalQueries {
	return &SignalQueries{store: store}
}

func (q *SignalQueries) GetSignal(ctx context.Context, id string) (models.Signal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Signal{}, &models.ValidationError{Field: "id", Message: "must not be empty"}
	}
	s, err := q.store.GetSignal(ctx, id)
	if err != nil {
		return models.Signal{}, fmt.Errorf("get signal %s: %w", id, err)
	}
	return s, nil
}

// ListSignals returns the newest signals first. limit is clamped to [1,100];
// zero means the store default.
func (q *SignalQueries) ListSignals(ctx context.Context, symbol string, limit int) ([]models.Signal, error) {
	if limit == 0 {
		limit = domrepo.DefaultSignalLimit
	}
	limit = util.ClampInt(limit, 1, maxSignalLimit)
	out, err := q.store.ListSignals(ctx, domrepo.NormalizeSymbol(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	return out, nil
}

var _ domsvc.SignalReader = (*SignalQueries)(nil)
