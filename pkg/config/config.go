package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendClickHouse = "clickhouse"
	BackendMemory     = "memory"
)

// TokenSeed is a token catalog entry written to storage at startup.
type TokenSeed struct {
	Symbol      string   `yaml:"symbol"`
	Name        string   `yaml:"name"`
	CoingeckoID string   `yaml:"coingecko_id"`
	Blockchain  string   `yaml:"blockchain"`
	MarketCap   *float64 `yaml:"market_cap"`
	Inactive    bool     `yaml:"inactive"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowOrigins    []string      `yaml:"allow_origins"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Storage struct {
		Backend string      `yaml:"backend"`
		Tokens  []TokenSeed `yaml:"tokens"`
	} `yaml:"storage"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		MigrateOnStart   bool          `yaml:"migrate_on_start"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled bool   `yaml:"enabled"`
		Mode    string `yaml:"mode"` // memory, redis or layered
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		MemorySize int `yaml:"memory_size"`
		TTL        struct {
			Price     time.Duration `yaml:"price"`
			OnChain   time.Duration `yaml:"onchain"`
			Sentiment time.Duration `yaml:"sentiment"`
		} `yaml:"ttl"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		SignalsTopic  string   `yaml:"signals_topic"`
		RequestsTopic string   `yaml:"requests_topic"`
		RequiredAcks  int      `yaml:"required_acks"`
		Compression   string   `yaml:"compression"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Engine struct {
		PriceLookbackDays     int           `yaml:"price_lookback_days"`
		OnChainLookbackDays   int           `yaml:"onchain_lookback_days"`
		SentimentLookbackDays int           `yaml:"sentiment_lookback_days"`
		TechnicalWeight       float64       `yaml:"technical_weight"`
		OnChainWeight         float64       `yaml:"onchain_weight"`
		SentimentWeight       float64       `yaml:"sentiment_weight"`
		BuyThreshold          float64       `yaml:"buy_threshold"`
		SellThreshold         float64       `yaml:"sell_threshold"`
		LowVolatility         float64       `yaml:"low_volatility"`
		MediumVolatility      float64       `yaml:"medium_volatility"`
		TargetMultiple        float64       `yaml:"target_multiple"`
		StopMultiple          float64       `yaml:"stop_multiple"`
		DedupeInFlight        bool          `yaml:"dedupe_inflight"`
		InFlightTTL           time.Duration `yaml:"inflight_ttl"`
		GenerationTimeout     time.Duration `yaml:"generation_timeout"`
	} `yaml:"engine"`
	RateLimit struct {
		Enabled   bool    `yaml:"enabled"`
		PerSecond float64 `yaml:"per_second"`
		Burst     int     `yaml:"burst"`
	} `yaml:"ratelimit"`
}

// Default returns a configuration that runs locally with the in-memory backend.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.applyDefaults()
	return c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.SlowThreshold == 0 {
		c.Server.SlowThreshold = time.Second
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "default"
	}
	if c.Cache.Mode == "" {
		c.Cache.Mode = "memory"
	}
	if c.Cache.TTL.Price == 0 {
		c.Cache.TTL.Price = time.Minute
	}
	if c.Cache.TTL.OnChain == 0 {
		c.Cache.TTL.OnChain = 5 * time.Minute
	}
	if c.Cache.TTL.Sentiment == 0 {
		c.Cache.TTL.Sentiment = 5 * time.Minute
	}
	if c.Kafka.SignalsTopic == "" {
		c.Kafka.SignalsTopic = "trading-signals"
	}
	if c.Kafka.RequestsTopic == "" {
		c.Kafka.RequestsTopic = "signal-requests"
	}
	if c.Kafka.Consumer.GroupID == "" {
		c.Kafka.Consumer.GroupID = "finsignal"
	}

	e := &c.Engine
	if e.PriceLookbackDays == 0 {
		e.PriceLookbackDays = 30
	}
	if e.OnChainLookbackDays == 0 {
		e.OnChainLookbackDays = 7
	}
	if e.SentimentLookbackDays == 0 {
		e.SentimentLookbackDays = 7
	}
	if e.TechnicalWeight == 0 && e.OnChainWeight == 0 && e.SentimentWeight == 0 {
		e.TechnicalWeight, e.OnChainWeight, e.SentimentWeight = 0.4, 0.3, 0.3
	}
	if e.BuyThreshold == 0 {
		e.BuyThreshold = 0.3
	}
	if e.SellThreshold == 0 {
		e.SellThreshold = -0.3
	}
	if e.LowVolatility == 0 {
		e.LowVolatility = 0.02
	}
	if e.MediumVolatility == 0 {
		e.MediumVolatility = 0.05
	}
	if e.TargetMultiple == 0 {
		e.TargetMultiple = 2
	}
	if e.StopMultiple == 0 {
		e.StopMultiple = 1
	}
	if e.InFlightTTL == 0 {
		e.InFlightTTL = 30 * time.Second
	}

	if c.RateLimit.PerSecond == 0 {
		c.RateLimit.PerSecond = 1
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Storage.Backend {
	case BackendClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for the clickhouse backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be '%s' or '%s', got '%s'", BackendClickHouse, BackendMemory, c.Storage.Backend)
	}
	for i, t := range c.Storage.Tokens {
		if t.Symbol == "" || t.Name == "" {
			return fmt.Errorf("storage.tokens[%d]: symbol and name are required", i)
		}
	}
	if c.Cache.Enabled {
		switch c.Cache.Mode {
		case "memory":
		case "redis", "layered":
			if c.Cache.Redis.Addr == "" {
				return fmt.Errorf("cache.redis.addr is required for cache mode '%s'", c.Cache.Mode)
			}
		default:
			return fmt.Errorf("cache.mode must be memory, redis or layered, got '%s'", c.Cache.Mode)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}

	e := c.Engine
	if e.PriceLookbackDays <= 0 || e.OnChainLookbackDays <= 0 || e.SentimentLookbackDays <= 0 {
		return fmt.Errorf("engine lookback days must be positive")
	}
	if e.TechnicalWeight < 0 || e.OnChainWeight < 0 || e.SentimentWeight < 0 {
		return fmt.Errorf("engine weights must be non-negative")
	}
	if sum := e.TechnicalWeight + e.OnChainWeight + e.SentimentWeight; sum > 1+1e-9 {
		return fmt.Errorf("engine weights sum to %.4f, must be <= 1", sum)
	}
	if !(e.BuyThreshold > 0 && e.SellThreshold < 0) {
		return fmt.Errorf("engine thresholds must satisfy buy_threshold > 0 > sell_threshold")
	}
	if !(e.LowVolatility > 0 && e.LowVolatility < e.MediumVolatility) {
		return fmt.Errorf("engine volatility tiers must satisfy 0 < low < medium")
	}
	if c.RateLimit.Enabled && (c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("ratelimit per_second and burst must be positive")
	}
	return nil
}
