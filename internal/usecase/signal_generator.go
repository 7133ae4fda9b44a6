package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
	"FinSignal/internal/services/analytics"
	applogger "FinSignal/pkg/logger"
)

// Lookbacks are the history windows fetched per generation, in days.
type Lookbacks struct {
	PriceDays     int
	OnChainDays   int
	SentimentDays int
}

// DefaultLookbacks returns 30 days of prices and a week of on-chain and sentiment data.
func DefaultLookbacks() Lookbacks {
	return Lookbacks{PriceDays: 30, OnChainDays: 7, SentimentDays: 7}
}

// InFlightLocker is the subset of pkg/cache.Service used to reject duplicate
// concurrent generations.
type InFlightLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type namedPublisher struct {
	name string
	pub  domrepo.SignalPublisher
}

// SignalGenerator fetches history, runs the analytics engine and persists the
// resulting signal.
type SignalGenerator struct {
	history    domrepo.MarketHistory
	store      domrepo.SignalStore
	policy     analytics.Policy
	lookbacks  Lookbacks
	publishers []namedPublisher
	metrics    domrepo.Metrics
	locker     InFlightLocker
	lockTTL    time.Duration
	timeout    time.Duration
	now        func() time.Time
	l          *applogger.Logger
}

type GeneratorOption func(*SignalGenerator)

func WithLookbacks(lb Lookbacks) GeneratorOption {
	return func(g *SignalGenerator) {
		if lb.PriceDays > 0 {
			g.lookbacks.PriceDays = lb.PriceDays
		}
		if lb.OnChainDays > 0 {
			g.lookbacks.OnChainDays = lb.OnChainDays
		}
		if lb.SentimentDays > 0 {
			g.lookbacks.SentimentDays = lb.SentimentDays
		}
	}
}

// WithPublisher registers a sink that receives every persisted signal.
func WithPublisher(name string, p domrepo.SignalPublisher) GeneratorOption {
	return func(g *SignalGenerator) {
		if p != nil {
			g.publishers = append(g.publishers, namedPublisher{name: name, pub: p})
		}
	}
}

func WithMetrics(m domrepo.Metrics) GeneratorOption {
	return func(g *SignalGenerator) { g.metrics = m }
}

// WithInFlightGuard rejects a generation for a (symbol, timeframe) pair that
// is already running. ttl bounds how long a crashed holder keeps the lock.
func WithInFlightGuard(locker InFlightLocker, ttl time.Duration) GeneratorOption {
	return func(g *SignalGenerator) {
		g.locker = locker
		if ttl > 0 {
			g.lockTTL = ttl
		}
	}
}

// WithTimeout bounds a whole generation. Zero leaves the caller's context alone.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *SignalGenerator) { g.timeout = d }
}

func NewSignalGenerator(history domrepo.MarketHistory, store domrepo.SignalStore, policy analytics.Policy, opts ...GeneratorOption) *SignalGenerator {
	g := &SignalGenerator{
		history:   history,
		store:     store,
		policy:    policy,
		lookbacks: DefaultLookbacks(),
		lockTTL:   30 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *SignalGenerator) SetLogger(l *applogger.Logger) { g.l = l }

// GenerateSignal produces, persists and publishes one signal. Nothing is
// persisted when validation or any fetch fails.
func (g *SignalGenerator) GenerateSignal(ctx context.Context, symbol, timeframe string) (models.Signal, error) {
	sym := domrepo.NormalizeSymbol(symbol)
	tf := domrepo.NormalizeTimeframe(timeframe)
	if sym == "" {
		return models.Signal{}, &models.ValidationError{Field: "symbol", Message: "must not be empty"}
	}
	if tf == "" {
		return models.Signal{}, &models.ValidationError{Field: "timeframe", Message: "must not be empty"}
	}
	if !domrepo.IsValidTimeframe(tf) {
		return models.Signal{}, &models.ValidationError{Field: "timeframe", Message: fmt.Sprintf("unsupported horizon %q", string(tf))}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if g.locker != nil {
		release, err := g.acquire(ctx, sym, string(tf))
		if err != nil {
			return models.Signal{}, err
		}
		defer release()
	}

	start := g.now()
	sig, err := g.generate(ctx, sym, string(tf))
	g.observe("generate_signal", start)
	if err != nil {
		g.recordError("generate")
		return models.Signal{}, err
	}

	if g.metrics != nil {
		g.metrics.RecordSignal(sig.TokenSymbol, sig.SignalType, sig.Timeframe, sig.ConfidenceScore)
	}
	if g.l != nil {
		g.l.Info("signal generated",
			applogger.String("id", sig.ID),
			applogger.String("symbol", sig.TokenSymbol),
			applogger.String("timeframe", sig.Timeframe),
			applogger.String("type", string(sig.SignalType)),
			applogger.Float64("confidence", sig.ConfidenceScore),
			applogger.Float64("ensemble", sig.EnsembleScore),
			applogger.Any("target_price", sig.TargetPrice),
			applogger.Any("stop_loss", sig.StopLoss),
			applogger.Strings("reasons", sig.Reasons),
		)
	}

	g.publish(ctx, sig)
	return sig, nil
}

func (g *SignalGenerator) generate(ctx context.Context, symbol, timeframe string) (models.Signal, error) {
	prices, onChain, sentiment, err := g.fetch(ctx, symbol)
	if err != nil {
		return models.Signal{}, err
	}

	d := g.policy.Evaluate(prices, onChain, sentiment)
	sig := models.Signal{
		TokenSymbol:     symbol,
		SignalType:      d.SignalType,
		ConfidenceScore: d.ConfidenceScore,
		TargetPrice:     d.TargetPrice,
		StopLoss:        d.StopLoss,
		RiskLevel:       d.RiskLevel,
		Timeframe:       timeframe,
		EnsembleScore:   d.EnsembleScore,
		TechnicalScore:  d.Technical.Score,
		OnChainScore:    d.OnChain.Score,
		SentimentScore:  d.Sentiment.Score,
		Reasons:         d.Reasons(),
	}

	start := g.now()
	saved, err := g.store.SaveSignal(ctx, sig)
	g.observe("save_signal", start)
	if err != nil {
		if g.l != nil {
			g.l.Error("save signal failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
		return models.Signal{}, &models.DataUnavailableError{Source: "signal_store", Err: err}
	}
	return saved, nil
}

// fetch loads the three histories concurrently and returns the first failure
// reported, tagged with its source.
func (g *SignalGenerator) fetch(ctx context.Context, symbol string) ([]models.PricePoint, []models.OnChainSnapshot, []models.SentimentSnapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		prices    []models.PricePoint
		onChain   []models.OnChainSnapshot
		sentiment []models.SentimentSnapshot
	)
	errs := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := g.history.GetPriceHistory(ctx, symbol, g.lookbacks.PriceDays)
		if err != nil {
			errs <- &models.DataUnavailableError{Source: "price_history", Err: err}
			cancel()
			return
		}
		prices = v
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := g.history.GetOnChainHistory(ctx, symbol, g.lookbacks.OnChainDays)
		if err != nil {
			errs <- &models.DataUnavailableError{Source: "onchain_history", Err: err}
			cancel()
			return
		}
		onChain = v
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := g.history.GetSentimentHistory(ctx, symbol, g.lookbacks.SentimentDays)
		if err != nil {
			errs <- &models.DataUnavailableError{Source: "sentiment_history", Err: err}
			cancel()
			return
		}
		sentiment = v
	}()

	wg.Wait()
	close(errs)

	if err, ok := <-errs; ok {
		if g.l != nil {
			g.l.Error("history fetch failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
		return nil, nil, nil, err
	}
	return prices, onChain, sentiment, nil
}

func (g *SignalGenerator) acquire(ctx context.Context, symbol, timeframe string) (func(), error) {
	key := "inflight:" + symbol + ":" + timeframe
	ok, err := g.locker.TryLock(ctx, key, g.lockTTL)
	if err != nil {
		// a broken lock backend must not block generation
		g.recordError("inflight_lock")
		if g.l != nil {
			g.l.Warn("in-flight lock unavailable", applogger.String("key", key), applogger.Error(err))
		}
		return func() {}, nil
	}
	if !ok {
		return nil, models.ErrGenerationInFlight
	}
	return func() {
		if err := g.locker.Unlock(context.WithoutCancel(ctx), key); err != nil && g.l != nil {
			g.l.Warn("in-flight unlock failed", applogger.String("key", key), applogger.Error(err))
		}
	}, nil
}

func (g *SignalGenerator) publish(ctx context.Context, sig models.Signal) {
	for _, np := range g.publishers {
		if err := np.pub.PublishSignal(ctx, sig); err != nil {
			g.recordError("publish_" + np.name)
			if g.l != nil {
				g.l.Warn("publish signal failed",
					applogger.String("sink", np.name),
					applogger.String("id", sig.ID),
					applogger.Error(err),
				)
			}
			continue
		}
		if g.metrics != nil {
			g.metrics.RecordPublished(np.name)
		}
	}
}

func (g *SignalGenerator) observe(op string, start time.Time) {
	if g.metrics != nil {
		g.metrics.RecordLatency(op, g.now().Sub(start).Seconds())
	}
}

func (g *SignalGenerator) recordError(kind string) {
	if g.metrics != nil {
		g.metrics.RecordError(kind)
	}
}

var _ domsvc.SignalGenerator = (*SignalGenerator)(nil)
