package container

import (
	"context"

	"github.com/wallethub/walletcore/internal/application/resilience"
)

// executor is the one-method shape every wallet/transaction use case
// shares: Execute(ctx, command-or-query) (result, error). A generic
// decorator over it lets C7's retry policy wrap every write use case
// without a bespoke adapter per command type.
type executor[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

// resilientUseCase wraps an executor with Retrier.Do, classifying the
// wrapped error and retrying optimistic-lock and transient failures per
// policy. walletIDOf extracts the wallet the operation contends on, for
// degradation tracking — return "" for operations that aren't
// wallet-scoped.
type resilientUseCase[C any, R any] struct {
	inner      executor[C, R]
	retrier    *resilience.Retrier
	operation  string
	walletIDOf func(C) string
}

func withRetry[C any, R any](inner executor[C, R], retrier *resilience.Retrier, operation string, walletIDOf func(C) string) *resilientUseCase[C, R] {
	return &resilientUseCase[C, R]{inner: inner, retrier: retrier, operation: operation, walletIDOf: walletIDOf}
}

func (u *resilientUseCase[C, R]) Execute(ctx context.Context, cmd C) (R, error) {
	var result R
	err := u.retrier.Do(ctx, u.operation, u.walletIDOf(cmd), func(ctx context.Context) error {
		r, err := u.inner.Execute(ctx, cmd)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}
