package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/handler/api"
	"FinSignal/internal/handler/ws"
	internalrepo "FinSignal/internal/repository"
	"FinSignal/internal/service/ratelimit"
	"FinSignal/internal/services/analytics"
	"FinSignal/internal/usecase"
	"FinSignal/pkg/cache"
	pkgch "FinSignal/pkg/clickhouse"
	"FinSignal/pkg/config"
	xhttp "FinSignal/pkg/http"
	pkgkafka "FinSignal/pkg/kafka"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/metrics"
	"FinSignal/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Storage groups the market and signal stores of the configured backend.
type Storage struct {
	History domrepo.MarketHistory
	Prices  usecase.PriceStore
	Signals domrepo.SignalStore
	Tokens  domrepo.TokenCatalog
	closer  io.Closer
}

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry returns the registry every collector is registered on.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.NewWithRegistry(reg)
}

// ProvideStorage opens the configured backend. The ClickHouse schema is
// created when migrate_on_start is set.
func ProvideStorage(cfg *config.Config, l *applogger.Logger) (*Storage, error) {
	if cfg.Storage.Backend == config.BackendMemory {
		mem := internalrepo.NewMemoryStore()
		mem.AddTokens(tokenSeeds(cfg)...)
		l.Warn("using in-memory storage; data is lost on restart")
		return &Storage{History: mem, Prices: mem, Signals: mem, Tokens: mem}, nil
	}

	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if ch.MigrateOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	l.Info("clickhouse: connected",
		applogger.String("host", ch.Host),
		applogger.String("database", ch.Database),
		applogger.Bool("migrate_on_start", ch.MigrateOnStart),
	)

	market := internalrepo.NewCHMarketStore(client)
	market.SetLogger(l)
	if seeds := tokenSeeds(cfg); len(seeds) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := market.UpsertTokens(ctx, seeds)
		cancel()
		if err != nil {
			l.Warn("token catalog seed failed", applogger.Error(err))
		}
	}
	signals := internalrepo.NewCHSignalStore(client)
	signals.SetLogger(l)
	return &Storage{History: market, Prices: market, Signals: signals, Tokens: market, closer: client}, nil
}

func tokenSeeds(cfg *config.Config) []models.Token {
	out := make([]models.Token, 0, len(cfg.Storage.Tokens))
	for _, t := range cfg.Storage.Tokens {
		tok := models.Token{Symbol: t.Symbol, Name: t.Name, MarketCap: t.MarketCap, IsActive: !t.Inactive}
		if t.CoingeckoID != "" {
			id := t.CoingeckoID
			tok.CoingeckoID = &id
		}
		if t.Blockchain != "" {
			chain := t.Blockchain
			tok.Blockchain = &chain
		}
		out = append(out, tok)
	}
	return out
}

// ProvideCache returns the cache used for history read-through and the
// in-flight guard, or nil when neither is enabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled && !cfg.Engine.DedupeInFlight {
		return nil, nil
	}

	redisOpts := func() []cache.RedisOption {
		r := cfg.Cache.Redis
		return []cache.RedisOption{
			cache.WithRedisAddr(r.Addr),
			cache.WithRedisPassword(r.Password),
			cache.WithRedisDB(r.DB),
			cache.WithRedisPrefix(r.Prefix),
		}
	}

	switch cfg.Cache.Mode {
	case "redis":
		c, err := cache.NewRedisCache(redisOpts()...)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	case "layered":
		rc, err := cache.NewRedisCache(redisOpts()...)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MemorySize)), nil
	default:
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemorySize)), nil
	}
}

// ProvideMarketHistory decorates the backend history with the cache when
// caching is enabled.
func ProvideMarketHistory(cfg *config.Config, st *Storage, c cache.Service, m *metrics.Recorder, l *applogger.Logger) domrepo.MarketHistory {
	if !cfg.Cache.Enabled || c == nil {
		return st.History
	}
	ch := internalrepo.NewCachedHistory(st.History, c, internalrepo.HistoryTTL{
		Price:     cfg.Cache.TTL.Price,
		OnChain:   cfg.Cache.TTL.OnChain,
		Sentiment: cfg.Cache.TTL.Sentiment,
	})
	ch.SetLogger(l)
	ch.SetMetrics(m)
	return ch
}

// ProvidePolicy builds the aggregation policy from the engine section.
func ProvidePolicy(cfg *config.Config) (analytics.Policy, error) {
	e := cfg.Engine
	p := analytics.Policy{
		TechnicalWeight:  e.TechnicalWeight,
		OnChainWeight:    e.OnChainWeight,
		SentimentWeight:  e.SentimentWeight,
		BuyThreshold:     e.BuyThreshold,
		SellThreshold:    e.SellThreshold,
		LowVolatility:    e.LowVolatility,
		MediumVolatility: e.MediumVolatility,
		TargetMultiple:   e.TargetMultiple,
		StopMultiple:     e.StopMultiple,
	}
	if err := p.Validate(); err != nil {
		return analytics.Policy{}, fmt.Errorf("engine policy: %w", err)
	}
	return p, nil
}

// ProvideKafkaProducer creates the signals producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.Producer.MaxAttempts),
		pkgkafka.WithBatching(k.Producer.BatchSize, k.Producer.Linger),
		pkgkafka.WithWriteTimeout(k.Producer.WriteTimeout),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalsHub creates the WebSocket feed.
func ProvideSignalsHub(cfg *config.Config, l *applogger.Logger) *ws.SignalsHub {
	h := ws.NewSignalsHub(cfg.Server.AllowOrigins)
	h.SetLogger(l)
	return h
}

// ProvideSignalGenerator wires the engine to storage, sinks and guards.
func ProvideSignalGenerator(
	cfg *config.Config,
	history domrepo.MarketHistory,
	st *Storage,
	policy analytics.Policy,
	m *metrics.Recorder,
	producer *pkgkafka.Producer,
	hub *ws.SignalsHub,
	c cache.Service,
	l *applogger.Logger,
) *usecase.SignalGenerator {
	e := cfg.Engine
	opts := []usecase.GeneratorOption{
		usecase.WithLookbacks(usecase.Lookbacks{
			PriceDays:     e.PriceLookbackDays,
			OnChainDays:   e.OnChainLookbackDays,
			SentimentDays: e.SentimentLookbackDays,
		}),
		usecase.WithMetrics(m),
		usecase.WithTimeout(e.GenerationTimeout),
		usecase.WithPublisher("websocket", hub),
	}
	if producer != nil {
		opts = append(opts, usecase.WithPublisher("kafka", internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)))
	}
	if e.DedupeInFlight && c != nil {
		opts = append(opts, usecase.WithInFlightGuard(c, e.InFlightTTL))
	}

	g := usecase.NewSignalGenerator(history, st.Signals, policy, opts...)
	g.SetLogger(l)
	return g
}

func ProvideSignalQueries(st *Storage) *usecase.SignalQueries {
	return usecase.NewSignalQueries(st.Signals)
}

func ProvidePriceRecorder(st *Storage, m *metrics.Recorder, l *applogger.Logger) *usecase.PriceRecorder {
	r := usecase.NewPriceRecorder(st.Prices, m)
	r.SetLogger(l)
	return r
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
}

// ProvideKafkaConsumer consumes generation requests, or returns nil when
// Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, g *usecase.SignalGenerator, m *metrics.Recorder, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	k := cfg.Kafka
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(k.Brokers),
		pkgkafka.WithConsumerGroupID(k.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(k.Consumer.Workers),
		pkgkafka.WithConsumerRetry(k.Consumer.RetryMax, k.Consumer.BackoffMin, k.Consumer.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetLogger(l)

	h := usecase.NewKafkaSignalRequestsHandler(k.RequestsTopic, g, m)
	h.SetLogger(l)
	consumer.RegisterHandler(h)
	return consumer, nil
}

// ProvideHTTPServer registers every HTTP and WebSocket route on one Echo server.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	reg *prometheus.Registry,
	g *usecase.SignalGenerator,
	q *usecase.SignalQueries,
	prices *usecase.PriceRecorder,
	limiter *ratelimit.Limiter,
	hub *ws.SignalsHub,
	st *Storage,
) *xhttp.Server {
	handlers := xhttp.Handlers{
		api.NewSignalsEchoHandler(l, g, q, limiter),
		api.NewPricesEchoHandler(l, prices),
		api.NewTokensEchoHandler(l, st.Tokens),
		hub,
	}

	metricsPath := cfg.Metrics.Path
	if !cfg.Metrics.Enabled {
		metricsPath = ""
	}
	return xhttp.NewServer(handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.AllowOrigins...),
		xhttp.WithLogger(l),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithRegistry(reg),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideApp assembles the lifecycle and registers resources to close.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	st *Storage,
	c cache.Service,
	producer *pkgkafka.Producer,
	hub *ws.SignalsHub,
) *server.App {
	app := server.New(l, srv, consumer, cfg.Server.ShutdownTimeout)
	if st.closer != nil {
		app.AddCloser("clickhouse", st.closer)
	}
	if cl, ok := c.(io.Closer); ok {
		app.AddCloser("cache", cl)
	}
	if producer != nil {
		app.AddCloser("kafka producer", producer)
	}
	app.AddCloser("websocket hub", hub)
	return app
}
