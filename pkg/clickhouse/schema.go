package clickhouse

// Table names.
const (
	TablePriceData      = "price_data"
	TableOnChainMetrics = "onchain_metrics"
	TableSentimentData  = "sentiment_data"
	TableTradingSignals = "trading_signals"
	TableTokens         = "tokens"
)

// SchemaStatements returns the DDL for every FinSignal table. Each statement is
// idempotent.
func SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS price_data (
			token_symbol LowCardinality(String),
			timestamp    DateTime64(3, 'UTC'),
			open_price   Float64,
			high_price   Float64,
			low_price    Float64,
			close_price  Float64,
			volume       Nullable(Float64),
			market_cap   Nullable(Float64),
			inserted_at  DateTime64(3, 'UTC') DEFAULT now64(3)
		) ENGINE = ReplacingMergeTree(inserted_at)
		ORDER BY (token_symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS onchain_metrics (
			token_symbol       LowCardinality(String),
			timestamp          DateTime64(3, 'UTC'),
			active_addresses   Nullable(Float64),
			transaction_volume Nullable(Float64),
			exchange_inflows   Nullable(Float64),
			exchange_outflows  Nullable(Float64),
			network_value      Nullable(Float64)
		) ENGINE = MergeTree
		ORDER BY (token_symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS sentiment_data (
			token_symbol     LowCardinality(String),
			timestamp        DateTime64(3, 'UTC'),
			sentiment_score  Nullable(Float64),
			fear_greed_index Nullable(Float64),
			social_mentions  Nullable(Float64),
			news_sentiment   Nullable(Float64),
			sentiment_label  Nullable(String)
		) ENGINE = MergeTree
		ORDER BY (token_symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS trading_signals (
			id               UUID,
			token_symbol     LowCardinality(String),
			signal_type      LowCardinality(String),
			confidence_score Float64,
			target_price     Nullable(Float64),
			stop_loss        Nullable(Float64),
			risk_level       LowCardinality(String),
			timeframe        String,
			ensemble_score   Float64,
			technical_score  Float64,
			onchain_score    Float64,
			sentiment_score  Float64,
			reasons          Array(String),
			created_at       DateTime64(3, 'UTC'),
			expires_at       Nullable(DateTime64(3, 'UTC'))
		) ENGINE = MergeTree
		ORDER BY (token_symbol, created_at, id)`,

		`CREATE TABLE IF NOT EXISTS tokens (
			id           UUID DEFAULT generateUUIDv4(),
			symbol       String,
			name         String,
			coingecko_id Nullable(String),
			blockchain   Nullable(String),
			market_cap   Nullable(Float64),
			is_active    Bool DEFAULT true,
			created_at   DateTime64(3, 'UTC') DEFAULT now64(3),
			updated_at   DateTime64(3, 'UTC') DEFAULT now64(3)
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY symbol`,
	}
}
