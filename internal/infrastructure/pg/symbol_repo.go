package pg

import (
	"context"
	"fmt"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/infrastructure/logx"

	"go.uber.org/zap"
)

type SymbolRepo struct{ db *DB }

var _ application.SymbolLoader = (*SymbolRepo)(nil)

func NewSymbolRepo(db *DB) *SymbolRepo { return &SymbolRepo{db: db} }

// LoadSymbols reads the whole registry in one query.
func (r *SymbolRepo) LoadSymbols(ctx context.Context) (map[string]int64, error) {
	const q = `SELECT symbol_id, symbol FROM symbols`
	log := logx.L().With(
		zap.String("repo", "symbols"),
		zap.String("operation", "LoadSymbols"),
	)
	log.Debug("sql.query_start", zap.String("sql", q))
	rows, err := r.db.q(ctx).Query(ctx, q)
	if err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			id     int64
			symbol string
		)
		if err := rows.Scan(&id, &symbol); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out[symbol] = id
	}
	if err := rows.Err(); err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	log.Info("sql.query_success", zap.Int("rows", len(out)))
	return out, nil
}

// Ensure inserts symbol if missing and returns its id.
func (r *SymbolRepo) Ensure(ctx context.Context, symbol, name string) (int64, error) {
	const up = `
        INSERT INTO symbols(symbol, name) VALUES ($1, NULLIF($2, ''))
        ON CONFLICT (symbol) DO UPDATE SET symbol = EXCLUDED.symbol
        RETURNING symbol_id`
	var id int64
	if err := r.db.q(ctx).QueryRow(ctx, up, symbol, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("ensure symbol %s: %w", symbol, err)
	}
	return id, nil
}
