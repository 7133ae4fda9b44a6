package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	pkgch "FinSignal/pkg/clickhouse"
	applogger "FinSignal/pkg/logger"
)

const priceInsertChunk = 2000

// CHMarketStore serves price, on-chain and sentiment history from ClickHouse
// and accepts new price bars.
type CHMarketStore struct {
	db  *sql.DB
	l   *applogger.Logger
	now func() time.Time
}

func NewCHMarketStore(ch *pkgch.Client) *CHMarketStore {
	return &CHMarketStore{db: ch.DB(), now: time.Now}
}

// SetLogger injects a structured logger.
func (s *CHMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHMarketStore) since(lookbackDays int) time.Time {
	return s.now().UTC().AddDate(0, 0, -lookbackDays)
}

func (s *CHMarketStore) GetPriceHistory(ctx context.Context, symbol string, lookbackDays int) ([]models.PricePoint, error) {
	start := time.Now()
	const q = `
        SELECT timestamp, open_price, high_price, low_price, close_price, volume, market_cap
        FROM price_data
        WHERE token_symbol = ? AND timestamp >= ?
        ORDER BY timestamp ASC
        LIMIT 1 BY timestamp
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, s.since(lookbackDays))
	if err != nil {
		s.logErr("price_history query error", symbol, err)
		return nil, fmt.Errorf("get price history: %w", err)
	}
	defer rows.Close()

	out := make([]models.PricePoint, 0, 64)
	for rows.Next() {
		var (
			p         models.PricePoint
			vol, mcap sql.NullFloat64
		)
		if err := rows.Scan(&p.Timestamp, &p.Open, &p.High, &p.Low, &p.Close, &vol, &mcap); err != nil {
			s.logErr("price_history scan error", symbol, err)
			return nil, fmt.Errorf("scan price: %w", err)
		}
		p.Timestamp = p.Timestamp.UTC()
		p.Volume = nullFloat(vol)
		p.MarketCap = nullFloat(mcap)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		s.logErr("price_history rows error", symbol, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse price_history ok",
			applogger.String("symbol", symbol),
			applogger.Int("lookback_days", lookbackDays),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHMarketStore) GetOnChainHistory(ctx context.Context, symbol string, lookbackDays int) ([]models.OnChainSnapshot, error) {
	const q = `
        SELECT timestamp, active_addresses, transaction_volume, exchange_inflows, exchange_outflows, network_value
        FROM onchain_metrics
        WHERE token_symbol = ? AND timestamp >= ?
        ORDER BY timestamp DESC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, s.since(lookbackDays))
	if err != nil {
		s.logErr("onchain_history query error", symbol, err)
		return nil, fmt.Errorf("get on-chain history: %w", err)
	}
	defer rows.Close()

	var out []models.OnChainSnapshot
	for rows.Next() {
		var (
			snap                     models.OnChainSnapshot
			active, txVol, in, outfl sql.NullFloat64
			nv                       sql.NullFloat64
		)
		if err := rows.Scan(&snap.Timestamp, &active, &txVol, &in, &outfl, &nv); err != nil {
			s.logErr("onchain_history scan error", symbol, err)
			return nil, fmt.Errorf("scan on-chain: %w", err)
		}
		snap.Timestamp = snap.Timestamp.UTC()
		snap.ActiveAddresses = nullFloat(active)
		snap.TransactionVolume = nullFloat(txVol)
		snap.ExchangeInflows = nullFloat(in)
		snap.ExchangeOutflows = nullFloat(outfl)
		snap.NetworkValue = nullFloat(nv)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHMarketStore) GetSentimentHistory(ctx context.Context, symbol string, lookbackDays int) ([]models.SentimentSnapshot, error) {
	const q = `
        SELECT timestamp, sentiment_score, fear_greed_index, social_mentions, news_sentiment, sentiment_label
        FROM sentiment_data
        WHERE token_symbol = ? AND timestamp >= ?
        ORDER BY timestamp DESC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, s.since(lookbackDays))
	if err != nil {
		s.logErr("sentiment_history query error", symbol, err)
		return nil, fmt.Errorf("get sentiment history: %w", err)
	}
	defer rows.Close()

	var out []models.SentimentSnapshot
	for rows.Next() {
		var (
			snap                      models.SentimentSnapshot
			score, fg, mentions, news sql.NullFloat64
			label                     sql.NullString
		)
		if err := rows.Scan(&snap.Timestamp, &score, &fg, &mentions, &news, &label); err != nil {
			s.logErr("sentiment_history scan error", symbol, err)
			return nil, fmt.Errorf("scan sentiment: %w", err)
		}
		snap.Timestamp = snap.Timestamp.UTC()
		snap.SentimentScore = nullFloat(score)
		snap.FearGreedIndex = nullFloat(fg)
		snap.SocialMentions = nullFloat(mentions)
		snap.NewsSentiment = nullFloat(news)
		if label.Valid {
			v := label.String
			snap.SentimentLabel = &v
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// StorePricePoints inserts bars whose (symbol, timestamp) is not stored yet.
// Existing timestamps are looked up first so re-sent bars are ignored rather
// than duplicated.
func (s *CHMarketStore) StorePricePoints(ctx context.Context, symbol string, points []models.PricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	existing, err := s.existingTimestamps(ctx, symbol, points)
	if err != nil {
		return 0, err
	}

	fresh := make([]models.PricePoint, 0, len(points))
	for _, p := range points {
		k := p.Timestamp.UnixMilli()
		if _, dup := existing[k]; dup {
			continue
		}
		existing[k] = struct{}{}
		fresh = append(fresh, p)
	}

	for start := 0; start < len(fresh); start += priceInsertChunk {
		end := start + priceInsertChunk
		if end > len(fresh) {
			end = len(fresh)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, p := range fresh[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				symbol,
				p.Timestamp.UTC(),
				p.Open,
				p.High,
				p.Low,
				p.Close,
				p.Volume,
				p.MarketCap,
			)
		}
		q := "INSERT INTO price_data (token_symbol, timestamp, open_price, high_price, low_price, close_price, volume, market_cap) VALUES " + strings.Join(values, ",")
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.logErr("price insert error", symbol, err)
			return start, fmt.Errorf("insert prices: %w", err)
		}
	}
	return len(fresh), nil
}

func (s *CHMarketStore) existingTimestamps(ctx context.Context, symbol string, points []models.PricePoint) (map[int64]struct{}, error) {
	from, to := points[0].Timestamp, points[0].Timestamp
	for _, p := range points[1:] {
		if p.Timestamp.Before(from) {
			from = p.Timestamp
		}
		if p.Timestamp.After(to) {
			to = p.Timestamp
		}
	}

	const q = `
        SELECT DISTINCT timestamp
        FROM price_data
        WHERE token_symbol = ? AND timestamp >= ? AND timestamp <= ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("existing prices: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]struct{})
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("scan timestamp: %w", err)
		}
		out[ts.UnixMilli()] = struct{}{}
	}
	return out, rows.Err()
}

// ListTokens returns active catalog tokens by market cap, missing caps last.
func (s *CHMarketStore) ListTokens(ctx context.Context) ([]models.Token, error) {
	const q = `
		SELECT toString(id), symbol, name, coingecko_id, blockchain, market_cap, is_active, created_at, updated_at
		FROM tokens FINAL
		WHERE is_active
		ORDER BY market_cap DESC NULLS LAST, symbol ASC
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.logErr("tokens query error", "", err)
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	out := make([]models.Token, 0, 16)
	for rows.Next() {
		var (
			t          models.Token
			cgID, chain sql.NullString
			mcap       sql.NullFloat64
		)
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Name, &cgID, &chain, &mcap, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		t.CoingeckoID = nullString(cgID)
		t.Blockchain = nullString(chain)
		t.MarketCap = nullFloat(mcap)
		t.CreatedAt = t.CreatedAt.UTC()
		t.UpdatedAt = t.UpdatedAt.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// UpsertTokens writes catalog entries. Rows are replaced per symbol on merge,
// the newest updated_at wins.
func (s *CHMarketStore) UpsertTokens(ctx context.Context, tokens []models.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	now := s.now().UTC()
	values := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens)*7)
	for _, t := range tokens {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, domrepo.NormalizeSymbol(t.Symbol), t.Name, t.CoingeckoID, t.Blockchain, t.MarketCap, t.IsActive, now)
	}
	q := "INSERT INTO tokens (symbol, name, coingecko_id, blockchain, market_cap, is_active, updated_at) VALUES " + strings.Join(values, ",")
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		s.logErr("tokens insert error", "", err)
		return fmt.Errorf("upsert tokens: %w", err)
	}
	return nil
}

func (s *CHMarketStore) logErr(msg, symbol string, err error) {
	if s.l != nil {
		s.l.Error("clickhouse "+msg, applogger.String("symbol", symbol), applogger.Error(err))
	}
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float(v.Float64)
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

var (
	_ domrepo.MarketHistory = (*CHMarketStore)(nil)
	_ domrepo.PriceWriter   = (*CHMarketStore)(nil)
	_ domrepo.TokenCatalog  = (*CHMarketStore)(nil)
)
