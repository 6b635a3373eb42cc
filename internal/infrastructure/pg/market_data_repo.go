package pg

import (
	"context"
	"fmt"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/domain"
	"marketdata-collector/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// MarketDataRepo persists OHLCV rows into market_data.
type MarketDataRepo struct {
	db *DB
}

var (
	_ application.Sink[domain.CanonicalRecord] = (*MarketDataRepo)(nil)
	_ application.MarketDataReader             = (*MarketDataRepo)(nil)
)

func NewMarketDataRepo(db *DB) *MarketDataRepo {
	return &MarketDataRepo{db: db}
}

// Null incoming fields keep what is stored. A row whose merged values equal
// the stored ones is left alone and does not count as written.
const upsertMarketData = `
        INSERT INTO market_data(symbol_id, date, open, high, low, close, volume)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (symbol_id, date) DO UPDATE SET
          open       = COALESCE(EXCLUDED.open,   market_data.open),
          high       = COALESCE(EXCLUDED.high,   market_data.high),
          low        = COALESCE(EXCLUDED.low,    market_data.low),
          close      = COALESCE(EXCLUDED.close,  market_data.close),
          volume     = COALESCE(EXCLUDED.volume, market_data.volume),
          updated_at = now()
        WHERE (market_data.open, market_data.high, market_data.low, market_data.close, market_data.volume)
          IS DISTINCT FROM
              (COALESCE(EXCLUDED.open,   market_data.open),
               COALESCE(EXCLUDED.high,   market_data.high),
               COALESCE(EXCLUDED.low,    market_data.low),
               COALESCE(EXCLUDED.close,  market_data.close),
               COALESCE(EXCLUDED.volume, market_data.volume))`

// Upsert writes the whole batch in one transaction and returns the number of
// rows inserted or changed. Any failing row rolls back every row of the batch.
func (r *MarketDataRepo) Upsert(ctx context.Context, records []domain.CanonicalRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return 0, fmt.Errorf("market_data %d %s: %w", rec.SymbolID, rec.Date, err)
		}
	}
	log := logx.L().With(
		zap.String("repo", "market_data"),
		zap.String("operation", "Upsert"),
		zap.Int("batch", len(records)),
	)
	log.Info("sql.exec_start")

	var written int64
	err := r.db.InTx(ctx, func(ctx context.Context) error {
		b := &pgx.Batch{}
		for _, rec := range records {
			b.Queue(upsertMarketData, rec.SymbolID, rec.Date.Time, rec.Open, rec.High, rec.Low, rec.Close, rec.Volume)
		}
		br := r.db.q(ctx).SendBatch(ctx, b)
		for range records {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return err
			}
			written += tag.RowsAffected()
		}
		return br.Close()
	})
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return 0, fmt.Errorf("upsert market_data: %w", err)
	}
	log.Info("sql.exec_success", zap.Int64("rows_affected", written))
	return int(written), nil
}

// LatestMarketData returns up to limit rows for symbolID, newest first.
func (r *MarketDataRepo) LatestMarketData(ctx context.Context, symbolID int64, limit int) ([]domain.CanonicalRecord, error) {
	const q = `
        SELECT symbol_id, date, open, high, low, close, volume
        FROM market_data WHERE symbol_id=$1
        ORDER BY date DESC LIMIT $2`
	rows, err := r.db.q(ctx).Query(ctx, q, symbolID, limit)
	if err != nil {
		return nil, fmt.Errorf("query market_data: %w", err)
	}
	defer rows.Close()
	out := []domain.CanonicalRecord{}
	for rows.Next() {
		var rec domain.CanonicalRecord
		if err := rows.Scan(&rec.SymbolID, &rec.Date.Time, &rec.Open, &rec.High, &rec.Low, &rec.Close, &rec.Volume); err != nil {
			return nil, fmt.Errorf("scan market_data: %w", err)
		}
		rec.Date = domain.DateOf(rec.Date.Time)
		out = append(out, rec)
	}
	return out, rows.Err()
}
