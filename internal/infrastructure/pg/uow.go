package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// InTx runs fn inside one read-committed transaction carried by ctx, so every
// repo call made with that ctx joins it. A nested InTx reuses the outer
// transaction; the outermost call commits, or rolls back when fn fails.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	return pgx.BeginTxFunc(ctx, d.Pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// q returns the transaction bound to ctx by InTx, or the pool.
func (d *DB) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return d.Pool
}
