package usecase

import (
	"context"
	"errors"
	"testing"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/repository"
)

type limitRecorder struct {
	*repository.MemoryStore
	symbol string
	limit  int
}

func (r *limitRecorder) ListSignals(ctx context.Context, symbol string, limit int) ([]models.Signal, error) {
	r.symbol, r.limit = symbol, limit
	return r.MemoryStore.ListSignals(ctx, symbol, limit)
}

func TestListSignalsClampsLimit(t *testing.T) {
	rec := &limitRecorder{MemoryStore: repository.NewMemoryStore()}
	q := NewSignalQueries(rec)

	cases := []struct{ in, want int }{{0, 10}, {-3, 1}, {1, 1}, {50, 50}, {1000, 100}}
	for _, tc := range cases {
		if _, err := q.ListSignals(context.Background(), "eth", tc.in); err != nil {
			t.Fatalf("list: %v", err)
		}
		if rec.limit != tc.want || rec.symbol != "ETH" {
			t.Fatalf("limit %d -> %d (symbol %q), want %d", tc.in, rec.limit, rec.symbol, tc.want)
		}
	}
}

func TestGetSignalNotFound(t *testing.T) {
	q := NewSignalQueries(repository.NewMemoryStore())

	if _, err := q.GetSignal(context.Background(), "nope"); !errors.Is(err, models.ErrSignalNotFound) {
		t.Fatalf("err=%v", err)
	}
	if _, err := q.GetSignal(context.Background(), " "); !models.IsValidation(err) {
		t.Fatalf("blank id err=%v", err)
	}
}
