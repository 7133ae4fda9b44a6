package usecase

import (
	"context"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/repository"
)

func bar(ts time.Time, o, h, l, c float64) models.PricePoint {
	return models.PricePoint{Timestamp: ts, Open: o, High: h, Low: l, Close: c}
}

func TestPriceRecorderStoresSortedUnique(t *testing.T) {
	store := repository.NewMemoryStore(repository.WithClock(func() time.Time { return now0 }))
	r := NewPriceRecorder(store, newFakeMetrics())
	ctx := context.Background()

	d1, d2 := now0.Add(-48*time.Hour), now0.Add(-24*time.Hour)
	n, err := r.Record(ctx, "btc", []models.PricePoint{
		bar(d2, 11, 12, 10, 11),
		bar(d1, 10, 11, 9, 10),
		bar(d2, 11, 12, 10, 11),
	})
	if err != nil || n != 2 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	n, _ = r.Record(ctx, "BTC", []models.PricePoint{bar(d2, 1, 1, 1, 1)})
	if n != 0 {
		t.Fatalf("existing timestamp re-inserted")
	}

	hist, err := r.PriceHistory(ctx, "BTC", 7)
	if err != nil || len(hist) != 2 || !hist[0].Timestamp.Equal(d1) || hist[1].Close != 11 {
		t.Fatalf("history=%+v err=%v", hist, err)
	}
}

func TestPriceRecorderValidation(t *testing.T) {
	r := NewPriceRecorder(repository.NewMemoryStore(), nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		symbol string
		pts    []models.PricePoint
	}{
		{"no symbol", "", []models.PricePoint{bar(now0, 1, 1, 1, 1)}},
		{"no points", "BTC", nil},
		{"zero close", "BTC", []models.PricePoint{bar(now0, 1, 1, 1, 0)}},
		{"high below low", "BTC", []models.PricePoint{bar(now0, 5, 4, 6, 5)}},
		{"missing timestamp", "BTC", []models.PricePoint{bar(time.Time{}, 1, 1, 1, 1)}},
	}
	for _, tc := range cases {
		if _, err := r.Record(ctx, tc.symbol, tc.pts); !models.IsValidation(err) {
			t.Fatalf("%s: err=%v, want validation", tc.name, err)
		}
	}
	if _, err := r.PriceHistory(ctx, "BTC", 0); !models.IsValidation(err) {
		t.Fatalf("days=0 err=%v", err)
	}
}
