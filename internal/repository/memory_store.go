package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"

	"github.com/google/uuid"
)

// MemoryStore keeps market history and signals in process. It backs the
// "memory" storage backend and doubles as the fake in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	prices    map[string][]models.PricePoint
	onChain   map[string][]models.OnChainSnapshot
	sentiment map[string][]models.SentimentSnapshot
	tokens    map[string]models.Token
	signals   []models.Signal
	byID      map[string]int
	now       func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock overrides time.Now for lookback windows and createdAt.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		prices:    make(map[string][]models.PricePoint),
		onChain:   make(map[string][]models.OnChainSnapshot),
		sentiment: make(map[string][]models.SentimentSnapshot),
		tokens:    make(map[string]models.Token),
		byID:      make(map[string]int),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) since(lookbackDays int) time.Time {
	return s.now().AddDate(0, 0, -lookbackDays)
}

func (s *MemoryStore) GetPriceHistory(_ context.Context, symbol string, lookbackDays int) ([]models.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := s.since(lookbackDays)
	out := make([]models.PricePoint, 0, len(s.prices[symbol]))
	for _, p := range s.prices[symbol] {
		if !p.Timestamp.Before(from) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetOnChainHistory(_ context.Context, symbol string, lookbackDays int) ([]models.OnChainSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := s.since(lookbackDays)
	out := make([]models.OnChainSnapshot, 0, len(s.onChain[symbol]))
	for _, snap := range s.onChain[symbol] {
		if !snap.Timestamp.Before(from) {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetSentimentHistory(_ context.Context, symbol string, lookbackDays int) ([]models.SentimentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := s.since(lookbackDays)
	out := make([]models.SentimentSnapshot, 0, len(s.sentiment[symbol]))
	for _, snap := range s.sentiment[symbol] {
		if !snap.Timestamp.Before(from) {
			out = append(out, snap)
		}
	}
	return out, nil
}

// StorePricePoints inserts bars whose timestamp is not yet stored for symbol.
func (s *MemoryStore) StorePricePoints(_ context.Context, symbol string, points []models.PricePoint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.prices[symbol]
	seen := make(map[int64]struct{}, len(existing)+len(points))
	for _, p := range existing {
		seen[p.Timestamp.UnixMilli()] = struct{}{}
	}
	inserted := 0
	for _, p := range points {
		k := p.Timestamp.UnixMilli()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		p.Timestamp = p.Timestamp.UTC().Truncate(time.Millisecond)
		existing = append(existing, p)
		inserted++
	}
	sort.Slice(existing, func(i, j int) bool { return existing[i].Timestamp.Before(existing[j].Timestamp) })
	s.prices[symbol] = existing
	return inserted, nil
}

// AddTokens upserts catalog entries keyed by symbol.
func (s *MemoryStore) AddTokens(tokens ...models.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Truncate(time.Millisecond)
	for _, t := range tokens {
		t.Symbol = domrepo.NormalizeSymbol(t.Symbol)
		if prev, ok := s.tokens[t.Symbol]; ok {
			t.ID, t.CreatedAt = prev.ID, prev.CreatedAt
		} else {
			t.ID, t.CreatedAt = uuid.NewString(), now
		}
		t.UpdatedAt = now
		s.tokens[t.Symbol] = t
	}
}

func (s *MemoryStore) ListTokens(_ context.Context) ([]models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Token, 0, len(s.tokens))
	for _, t := range s.tokens {
		if t.IsActive {
			out = append(out, t)
		}
	}
	models.SortTokensByMarketCap(out)
	return out, nil
}

// AddOnChainSnapshots appends snapshots for symbol, kept newest first.
func (s *MemoryStore) AddOnChainSnapshots(symbol string, snaps ...models.OnChainSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := append(s.onChain[symbol], snaps...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
	s.onChain[symbol] = all
}

// AddSentimentSnapshots appends snapshots for symbol, kept newest first.
func (s *MemoryStore) AddSentimentSnapshots(symbol string, snaps ...models.SentimentSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := append(s.sentiment[symbol], snaps...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
	s.sentiment[symbol] = all
}

func (s *MemoryStore) SaveSignal(_ context.Context, sig models.Signal) (models.Signal, error) {
	persisted := sig.Persisted(uuid.NewString(), s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[persisted.ID] = len(s.signals)
	s.signals = append(s.signals, cloneSignal(persisted))
	return persisted, nil
}

func (s *MemoryStore) GetSignal(_ context.Context, id string) (models.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return models.Signal{}, models.ErrSignalNotFound
	}
	return cloneSignal(s.signals[i]), nil
}

func (s *MemoryStore) ListSignals(_ context.Context, symbol string, limit int) ([]models.Signal, error) {
	if limit <= 0 {
		limit = domrepo.DefaultSignalLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Signal, 0, limit)
	for i := len(s.signals) - 1; i >= 0 && len(out) < limit; i-- {
		if symbol != "" && !strings.EqualFold(s.signals[i].TokenSymbol, symbol) {
			continue
		}
		out = append(out, cloneSignal(s.signals[i]))
	}
	// newest first; ties keep insertion order reversed
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func cloneSignal(s models.Signal) models.Signal {
	if s.TargetPrice != nil {
		s.TargetPrice = models.Float(*s.TargetPrice)
	}
	if s.StopLoss != nil {
		s.StopLoss = models.Float(*s.StopLoss)
	}
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		s.ExpiresAt = &t
	}
	s.Reasons = append([]string{}, s.Reasons...)
	return s
}

var (
	_ domrepo.MarketHistory = (*MemoryStore)(nil)
	_ domrepo.PriceWriter   = (*MemoryStore)(nil)
	_ domrepo.SignalStore   = (*MemoryStore)(nil)
	_ domrepo.TokenCatalog  = (*MemoryStore)(nil)
)
