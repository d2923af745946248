package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database
	// transaction. Prevents long-running transactions from holding row locks.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long replayable responses stay in the
	// idempotency store.
	IdempotencyKeyTTL = 24 * time.Hour
)
