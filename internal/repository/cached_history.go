package repository

import (
	"context"
	"errors"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/pkg/cache"
	applogger "FinSignal/pkg/logger"
)

// HistoryTTL holds per-kind cache lifetimes.
type HistoryTTL struct {
	Price     time.Duration
	OnChain   time.Duration
	Sentiment time.Duration
}

// CachedHistory decorates MarketHistory with a read-through cache. Cache
// failures fall back to the provider; provider errors are never cached.
type CachedHistory struct {
	inner domrepo.MarketHistory
	c     cache.Service
	ttl   HistoryTTL
	l     *applogger.Logger
	m     domrepo.Metrics
}

func NewCachedHistory(inner domrepo.MarketHistory, c cache.Service, ttl HistoryTTL) *CachedHistory {
	return &CachedHistory{inner: inner, c: c, ttl: ttl}
}

func (h *CachedHistory) SetLogger(l *applogger.Logger) { h.l = l }

func (h *CachedHistory) SetMetrics(m domrepo.Metrics) { h.m = m }

func (h *CachedHistory) GetPriceHistory(ctx context.Context, symbol string, lookbackDays int) ([]models.PricePoint, error) {
	return readThrough(ctx, h, "price", symbol, lookbackDays, h.ttl.Price, h.inner.GetPriceHistory)
}

func (h *CachedHistory) GetOnChainHistory(ctx context.Context, symbol string, lookbackDays int) ([]models.OnChainSnapshot, error) {
	return readThrough(ctx, h, "onchain", symbol, lookbackDays, h.ttl.OnChain, h.inner.GetOnChainHistory)
}

func (h *CachedHistory) GetSentimentHistory(ctx context.Context, symbol string, lookbackDays int) ([]models.SentimentSnapshot, error) {
	return readThrough(ctx, h, "sentiment", symbol, lookbackDays, h.ttl.Sentiment, h.inner.GetSentimentHistory)
}

func readThrough[T any](
	ctx context.Context,
	h *CachedHistory,
	kind, symbol string,
	lookbackDays int,
	ttl time.Duration,
	load func(context.Context, string, int) ([]T, error),
) ([]T, error) {
	key := cache.GenerateKeyWithParams("history", kind, symbol, lookbackDays)

	var cached []T
	err := h.c.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		h.cacheFailure("cache get failed", key, err)
	}

	fresh, err := load(ctx, symbol, lookbackDays)
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		if err := h.c.Set(ctx, key, fresh, ttl); err != nil {
			h.cacheFailure("cache set failed", key, err)
		}
	}
	return fresh, nil
}

func (h *CachedHistory) cacheFailure(msg, key string, err error) {
	if h.m != nil {
		h.m.RecordError("history_cache")
	}
	if h.l != nil {
		h.l.Warn(msg, applogger.String("key", key), applogger.Error(err))
	}
}

var _ domrepo.MarketHistory = (*CachedHistory)(nil)
