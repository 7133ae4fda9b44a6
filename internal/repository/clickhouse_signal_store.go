package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	pkgch "FinSignal/pkg/clickhouse"
	applogger "FinSignal/pkg/logger"

	"github.com/google/uuid"
)

const signalColumns = `toString(id), token_symbol, signal_type, confidence_score, target_price, stop_loss,
        risk_level, timeframe, ensemble_score, technical_score, onchain_score, sentiment_score,
        reasons, created_at, expires_at`

// CHSignalStore persists trading signals in ClickHouse.
type CHSignalStore struct {
	db  *sql.DB
	l   *applogger.Logger
	now func() time.Time
}

func NewCHSignalStore(ch *pkgch.Client) *CHSignalStore {
	return &CHSignalStore{db: ch.DB(), now: time.Now}
}

// SetLogger injects a structured logger.
func (s *CHSignalStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSignalStore) SaveSignal(ctx context.Context, sig models.Signal) (models.Signal, error) {
	p := sig.Persisted(uuid.NewString(), s.now())

	const q = `
        INSERT INTO trading_signals (id, token_symbol, signal_type, confidence_score, target_price, stop_loss,
            risk_level, timeframe, ensemble_score, technical_score, onchain_score, sentiment_score,
            reasons, created_at, expires_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, q,
		p.ID,
		p.TokenSymbol,
		string(p.SignalType),
		p.ConfidenceScore,
		p.TargetPrice,
		p.StopLoss,
		string(p.RiskLevel),
		p.Timeframe,
		p.EnsembleScore,
		p.TechnicalScore,
		p.OnChainScore,
		p.SentimentScore,
		p.Reasons,
		p.CreatedAt,
		p.ExpiresAt,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_signal error",
				applogger.String("symbol", p.TokenSymbol),
				applogger.String("timeframe", p.Timeframe),
				applogger.Error(err),
			)
		}
		return models.Signal{}, fmt.Errorf("insert signal: %w", err)
	}
	return p, nil
}

func (s *CHSignalStore) GetSignal(ctx context.Context, id string) (models.Signal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Signal{}, models.ErrSignalNotFound
	}
	q := `SELECT ` + signalColumns + ` FROM trading_signals WHERE id = toUUID(?) LIMIT 1`
	row := s.db.QueryRowContext(ctx, q, id)
	sig, err := scanSignal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Signal{}, models.ErrSignalNotFound
	}
	if err != nil {
		return models.Signal{}, fmt.Errorf("get signal: %w", err)
	}
	return sig, nil
}

func (s *CHSignalStore) ListSignals(ctx context.Context, symbol string, limit int) ([]models.Signal, error) {
	if limit <= 0 {
		limit = domrepo.DefaultSignalLimit
	}
	var (
		rows *sql.Rows
		err  error
	)
	if symbol == "" {
		q := `SELECT ` + signalColumns + ` FROM trading_signals ORDER BY created_at DESC LIMIT ?`
		rows, err = s.db.QueryContext(ctx, q, limit)
	} else {
		q := `SELECT ` + signalColumns + ` FROM trading_signals WHERE token_symbol = ? ORDER BY created_at DESC LIMIT ?`
		rows, err = s.db.QueryContext(ctx, q, symbol, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.Signal, 0, limit)
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSignal(r rowScanner) (models.Signal, error) {
	var (
		sig           models.Signal
		sigType, risk string
		target, stop  sql.NullFloat64
		expires       sql.NullTime
	)
	err := r.Scan(
		&sig.ID,
		&sig.TokenSymbol,
		&sigType,
		&sig.ConfidenceScore,
		&target,
		&stop,
		&risk,
		&sig.Timeframe,
		&sig.EnsembleScore,
		&sig.TechnicalScore,
		&sig.OnChainScore,
		&sig.SentimentScore,
		&sig.Reasons,
		&sig.CreatedAt,
		&expires,
	)
	if err != nil {
		return models.Signal{}, err
	}
	sig.SignalType = models.SignalType(sigType)
	sig.RiskLevel = models.RiskLevel(risk)
	sig.TargetPrice = nullFloat(target)
	sig.StopLoss = nullFloat(stop)
	sig.CreatedAt = sig.CreatedAt.UTC()
	if expires.Valid {
		t := expires.Time.UTC()
		sig.ExpiresAt = &t
	}
	if sig.Reasons == nil {
		sig.Reasons = []string{}
	}
	return sig, nil
}

var _ domrepo.SignalStore = (*CHSignalStore)(nil)
