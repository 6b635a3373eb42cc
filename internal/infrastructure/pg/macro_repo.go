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

// MacroRepo persists indicator readings into macro_indicators.
type MacroRepo struct {
	db *DB
}

var (
	_ application.Sink[domain.MacroObservation] = (*MacroRepo)(nil)
	_ application.MacroReader                   = (*MacroRepo)(nil)
)

func NewMacroRepo(db *DB) *MacroRepo {
	return &MacroRepo{db: db}
}

// Value and source are replaced; a null unit keeps the stored one. Unchanged
// rows are not rewritten.
const upsertMacro = `
        INSERT INTO macro_indicators(symbol_id, date, value, unit, source)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (symbol_id, date) DO UPDATE SET
          value      = EXCLUDED.value,
          unit       = COALESCE(EXCLUDED.unit, macro_indicators.unit),
          source     = EXCLUDED.source,
          updated_at = now()
        WHERE (macro_indicators.value, macro_indicators.unit, macro_indicators.source)
          IS DISTINCT FROM
              (EXCLUDED.value, COALESCE(EXCLUDED.unit, macro_indicators.unit), EXCLUDED.source)`

func (r *MacroRepo) Upsert(ctx context.Context, obs []domain.MacroObservation) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}
	for _, o := range obs {
		if err := o.Validate(); err != nil {
			return 0, fmt.Errorf("macro_indicators %d %s: %w", o.SymbolID, o.Date, err)
		}
	}
	log := logx.L().With(
		zap.String("repo", "macro_indicators"),
		zap.String("operation", "Upsert"),
		zap.Int("batch", len(obs)),
	)
	log.Info("sql.exec_start")

	var written int64
	err := r.db.InTx(ctx, func(ctx context.Context) error {
		b := &pgx.Batch{}
		for _, o := range obs {
			b.Queue(upsertMacro, o.SymbolID, o.Date.Time, o.Value, o.Unit, o.Source)
		}
		br := r.db.q(ctx).SendBatch(ctx, b)
		for range obs {
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
		return 0, fmt.Errorf("upsert macro_indicators: %w", err)
	}
	log.Info("sql.exec_success", zap.Int64("rows_affected", written))
	return int(written), nil
}

func (r *MacroRepo) LatestMacro(ctx context.Context, symbolID int64, limit int) ([]domain.MacroObservation, error) {
	const q = `
        SELECT symbol_id, date, value, unit, source
        FROM macro_indicators WHERE symbol_id=$1
        ORDER BY date DESC LIMIT $2`
	rows, err := r.db.q(ctx).Query(ctx, q, symbolID, limit)
	if err != nil {
		return nil, fmt.Errorf("query macro_indicators: %w", err)
	}
	defer rows.Close()
	out := []domain.MacroObservation{}
	for rows.Next() {
		var o domain.MacroObservation
		if err := rows.Scan(&o.SymbolID, &o.Date.Time, &o.Value, &o.Unit, &o.Source); err != nil {
			return nil, fmt.Errorf("scan macro_indicators: %w", err)
		}
		o.Date = domain.DateOf(o.Date.Time)
		out = append(out, o)
	}
	return out, rows.Err()
}
