// Package ports - WalletCache is the read-side cache-aside port (C4).
// Cache absence never blocks correctness: a miss or a down cache simply
// means the caller falls through to the read store, then the write store.
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/application/dtos"
)

// WalletCache is a best-effort cache-aside layer in front of the wallet
// read path.
type WalletCache interface {
	// Get returns the cached wallet DTO and true on a hit. A miss (or any
	// cache-layer error) returns ok=false — callers must not treat that as
	// a fatal error.
	Get(ctx context.Context, walletID uuid.UUID) (*dtos.WalletDTO, bool)

	// Set stores wallet with the cache's configured TTL. Errors are
	// swallowed by the implementation; caching is advisory.
	Set(ctx context.Context, wallet *dtos.WalletDTO)

	// Invalidate removes any cached entry for walletID, used after a
	// mutation commits so readers never observe a stale cached balance
	// for longer than the in-flight request.
	Invalidate(ctx context.Context, walletID uuid.UUID)
}
