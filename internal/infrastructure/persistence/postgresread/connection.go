// Package postgresread implements C3: the read-store repositories the
// projector (C9) writes through and the query side of the wallet/history
// use cases read through. It runs against Config.Database.ReadDSN() — a
// physical replica in production, the same instance as the write store in
// development (ReadDSN falls back to the write DSN when no replica host is
// configured).
package postgresread

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier abstracts pool vs. transaction, matching the write-store package.
// The read store never opens transactions of its own — the projector
// applies one event at a time — and the repositories query the pool
// directly.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ querier = (*pgxpool.Pool)(nil)
