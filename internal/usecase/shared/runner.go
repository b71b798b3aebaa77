package shared

import (
	"context"

	"beautybook/internal/infra/db"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner abstracts transaction scoping so command implementations stay
// testable without a live database.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx db.DBTX) error) error
	DB() db.DBTX
}

type PgxTxRunner struct {
	pool *pgxpool.Pool
}

func NewPgxTxRunner(pool *pgxpool.Pool) *PgxTxRunner {
	return &PgxTxRunner{pool: pool}
}

func (r *PgxTxRunner) WithinTx(ctx context.Context, fn func(tx db.DBTX) error) error {
	_, err := WithDefaultRetry(ctx, r.pool, func(tx db.DBTX) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

func (r *PgxTxRunner) DB() db.DBTX {
	return r.pool
}
