// Package resilience wraps application use-case invocations with the
// retry/backoff policy spec.md §4.2 assigns to each failure class.
// Idempotency is enforced by the domain layer (unique referenceId, the
// optimistic-lock guard), so a retry here is always safe to re-attempt —
// this package only decides whether and how long to wait before doing so.
package resilience

import (
	"context"
	"math/rand"
	"time"

	domainerrors "github.com/wallethub/walletcore/internal/domain/errors"
)

// FailureClass is the bucket a Retrier sorts an error into before deciding
// whether to retry it.
type FailureClass string

const (
	ClassOptimisticLock FailureClass = "optimistic_lock"
	ClassTransient       FailureClass = "transient"
	ClassPermanent        FailureClass = "permanent"
)

// Policy configures one failure class's retry behavior.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Config is the full set of retry policies a Retrier consults, sourced
// from Config.Resilience.
type Config struct {
	Optimistic Policy
	Transient  Policy
}

// DefaultConfig matches spec.md §4.2's stated defaults: optimistic-lock
// conflicts retry up to 5 times with jittered backoff from 10ms to 200ms;
// transient failures retry up to 3 times with a wider backoff.
func DefaultConfig() Config {
	return Config{
		Optimistic: Policy{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond, MaxDelay: 200 * time.Millisecond},
		Transient:  Policy{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: 1 * time.Second},
	}
}

// Retrier wraps a use case invocation with classification, backoff, and
// metrics. It does not know anything about wallets or transactions — fn is
// an opaque operation that either succeeds, fails permanently, or fails in
// a way that's worth retrying.
type Retrier struct {
	cfg         Config
	metrics     *Metrics
	degradation *DegradationTable
}

func NewRetrier(cfg Config, metrics *Metrics, degradation *DegradationTable) *Retrier {
	return &Retrier{cfg: cfg, metrics: metrics, degradation: degradation}
}

// Do runs fn, retrying per the policy matching the error's classified
// failure class. operation is a label used for metrics and degradation
// tracking (e.g. "deposit", "transfer"); walletID scopes degradation
// tracking to the specific wallet that's contending, when known.
func (r *Retrier) Do(ctx context.Context, operation, walletID string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; ; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 1 {
				r.degradation.RecordRecovery(operation, walletID)
			}
			return nil
		}

		class := Classify(lastErr)
		r.metrics.RecordAttempt(operation, string(class))

		policy, retryable := r.policyFor(class)
		if !retryable || attempt >= policy.MaxAttempts {
			if class == ClassOptimisticLock {
				r.metrics.RecordExhaustion(operation, string(class))
				r.degradation.RecordExhaustion(operation, walletID)
				return domainerrors.NewDomainError(domainerrors.KindOptimisticLockExhausted, "OPTIMISTIC_LOCK_EXHAUSTED", "too many concurrent updates to this wallet", lastErr)
			}
			if class == ClassTransient {
				r.metrics.RecordExhaustion(operation, string(class))
				return domainerrors.NewDomainError(domainerrors.KindTransientFailureExhausted, "TRANSIENT_FAILURE_EXHAUSTED", "dependency remained unavailable", lastErr)
			}
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(policy, attempt)):
		}
	}
}

// IsHot reports whether operation+walletID has recently exhausted its
// optimistic-lock retry budget enough times to be worth fast-failing
// before even attempting the use case. Consulted by the HTTP layer ahead
// of Do, so a client contending for a hot wallet gets a fast 503 instead
// of paying for a doomed retry cycle twice.
func (r *Retrier) IsHot(operation, walletID string) bool {
	return r.degradation.IsHot(operation, walletID)
}

func (r *Retrier) policyFor(class FailureClass) (Policy, bool) {
	switch class {
	case ClassOptimisticLock:
		return r.cfg.Optimistic, true
	case ClassTransient:
		return r.cfg.Transient, true
	default:
		return Policy{}, false
	}
}

// Classify sorts err into a FailureClass per spec.md §4.2: optimistic-lock
// conflicts and connection-level transients are retryable, everything else
// (validation, business-rule, not-found, duplicate-reference) is permanent.
func Classify(err error) FailureClass {
	if domainerrors.IsConcurrencyError(err) {
		return ClassOptimisticLock
	}
	if IsTransient(err) {
		return ClassTransient
	}
	return ClassPermanent
}

// backoff computes a jittered exponential delay for attempt, bounded by
// policy.MaxDelay. attempt is 1-indexed.
func backoff(policy Policy, attempt int) time.Duration {
	delay := policy.BaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay) + 1))
	return (delay / 2) + (jitter / 2)
}
