package resilience

import (
	"sync"
	"time"
)

// degradationEntry tracks how many OPTIMISTIC_LOCK_EXHAUSTED events a
// (operation, wallet) pair has recently produced.
type degradationEntry struct {
	count      int
	lastSeenAt time.Time
}

// DegradationTable is a bounded, in-memory record of wallets that have
// recently exhausted their optimistic-lock retry budget. The HTTP layer
// consults it to fast-fail a hot wallet rather than making a client wait
// through a doomed retry cycle.
//
// Grounded on the teacher's in-memory rate limiter (a mutex-guarded map
// with a periodic cleanup goroutine) rather than an external cache — this
// state is purely advisory and process-local by design.
type DegradationTable struct {
	mu      sync.Mutex
	entries map[string]*degradationEntry

	maxEntries int
	window     time.Duration
	threshold  int
}

// NewDegradationTable builds a table that considers a (operation, wallet)
// pair "hot" once it has exhausted retries threshold times within window.
// maxEntries bounds memory use; once exceeded, the table evicts entries
// that haven't been seen within window on its next write.
func NewDegradationTable(maxEntries int, window time.Duration, threshold int) *DegradationTable {
	return &DegradationTable{
		entries:    make(map[string]*degradationEntry),
		maxEntries: maxEntries,
		window:     window,
		threshold:  threshold,
	}
}

func degradationKey(operation, walletID string) string {
	return operation + ":" + walletID
}

// RecordExhaustion marks one OPTIMISTIC_LOCK_EXHAUSTED occurrence for the
// given operation and wallet.
func (t *DegradationTable) RecordExhaustion(operation, walletID string) {
	if walletID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.evictStaleLocked()

	key := degradationKey(operation, walletID)
	entry, ok := t.entries[key]
	if !ok {
		if len(t.entries) >= t.maxEntries {
			return
		}
		entry = &degradationEntry{}
		t.entries[key] = entry
	}
	entry.count++
	entry.lastSeenAt = time.Now()
}

// RecordRecovery clears a wallet's degradation state after a call that
// previously needed retries eventually succeeds.
func (t *DegradationTable) RecordRecovery(operation, walletID string) {
	if walletID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, degradationKey(operation, walletID))
}

// IsHot reports whether operation+walletID has exhausted retries at least
// threshold times within the configured window.
func (t *DegradationTable) IsHot(operation, walletID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[degradationKey(operation, walletID)]
	if !ok {
		return false
	}
	if time.Since(entry.lastSeenAt) > t.window {
		return false
	}
	return entry.count >= t.threshold
}

// evictStaleLocked drops entries untouched for longer than window. Called
// with mu held.
func (t *DegradationTable) evictStaleLocked() {
	now := time.Now()
	for key, entry := range t.entries {
		if now.Sub(entry.lastSeenAt) > t.window {
			delete(t.entries, key)
		}
	}
}
