package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/repository"
)

var now0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

type fakeMetrics struct {
	mu        sync.Mutex
	signals   int
	published map[string]int
	errors    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{published: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordSignal(string, models.SignalType, string, float64) {
	m.mu.Lock()
	m.signals++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordPublished(sink string) {
	m.mu.Lock()
	m.published[sink]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

// flatStore returns a memory store holding n daily bars closing at price.
func flatStore(symbol string, n int, price float64) *repository.MemoryStore {
	s := repository.NewMemoryStore(repository.WithClock(func() time.Time { return now0 }))
	pts := make([]models.PricePoint, n)
	for i := range pts {
		pts[i] = models.PricePoint{
			Timestamp: now0.AddDate(0, 0, -(n - 1 - i)),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
		}
	}
	_, _ = s.StorePricePoints(context.Background(), symbol, pts)
	return s
}

type failingHistory struct {
	*repository.MemoryStore
	onChainErr error
}

func (f failingHistory) GetOnChainHistory(ctx context.Context, symbol string, days int) ([]models.OnChainSnapshot, error) {
	if f.onChainErr != nil {
		return nil, f.onChainErr
	}
	return f.MemoryStore.GetOnChainHistory(ctx, symbol, days)
}

type failingStore struct{ *repository.MemoryStore }

func (failingStore) SaveSignal(context.Context, models.Signal) (models.Signal, error) {
	return models.Signal{}, errors.New("clickhouse: connection refused")
}

type publisherFunc func(context.Context, models.Signal) error

func (f publisherFunc) PublishSignal(ctx context.Context, s models.Signal) error { return f(ctx, s) }

type blockingHistory struct{ *repository.MemoryStore }

func (blockingHistory) GetSentimentHistory(ctx context.Context, _ string, _ int) ([]models.SentimentSnapshot, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
