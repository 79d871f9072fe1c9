// Package cache implements the cache-aside wallet read path (C4) with
// go-redis/v9. A miss, a marshal error, or a down Redis instance all
// degrade to "not cached" rather than propagating — ports.WalletCache
// promises callers that caching is never load-bearing for correctness.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wallethub/walletcore/internal/application/dtos"
	"github.com/wallethub/walletcore/internal/application/ports"
)

const keyPrefix = "wallet:"

// WalletCache is the go-redis-backed implementation of ports.WalletCache.
type WalletCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.WalletCache = (*WalletCache)(nil)

// NewWalletCache wires a cache against an already-connected redis.Client.
// ttl is the entry lifetime (spec default: 30 minutes).
func NewWalletCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *WalletCache {
	return &WalletCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(walletID uuid.UUID) string {
	return keyPrefix + walletID.String()
}

// Get returns the cached DTO and true on a hit. Any Redis error or decode
// failure is logged and treated as a miss.
func (c *WalletCache) Get(ctx context.Context, walletID uuid.UUID) (*dtos.WalletDTO, bool) {
	raw, err := c.client.Get(ctx, cacheKey(walletID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("wallet cache get failed", slog.String("walletId", walletID.String()), slog.Any("error", err))
		}
		return nil, false
	}

	var dto dtos.WalletDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		c.logger.Warn("wallet cache decode failed", slog.String("walletId", walletID.String()), slog.Any("error", err))
		return nil, false
	}

	return &dto, true
}

// Set stores wallet with the configured TTL. Errors are logged, never
// returned — a failed cache write must not fail the caller's request.
func (c *WalletCache) Set(ctx context.Context, wallet *dtos.WalletDTO) {
	raw, err := json.Marshal(wallet)
	if err != nil {
		c.logger.Warn("wallet cache encode failed", slog.String("walletId", wallet.ID), slog.Any("error", err))
		return
	}

	id, err := uuid.Parse(wallet.ID)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, cacheKey(id), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("wallet cache set failed", slog.String("walletId", wallet.ID), slog.Any("error", err))
	}
}

// Invalidate removes any cached entry for walletID.
func (c *WalletCache) Invalidate(ctx context.Context, walletID uuid.UUID) {
	if err := c.client.Del(ctx, cacheKey(walletID)).Err(); err != nil {
		c.logger.Warn("wallet cache invalidate failed", slog.String("walletId", walletID.String()), slog.Any("error", err))
	}
}
