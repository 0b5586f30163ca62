package bank

import "time"

// AccountLock serializes every balance-affecting operation on one
// account: a withdrawal and a deposit reconciliation on the same
// account never interleave. Operations on different accounts proceed
// in parallel.
//
// Acquire has a bounded wait: a stuck operation holding the lock makes
// later acquirers fail with a lock-timeout error rather than queueing
// forever. The in-process implementation lives in pkg/locker; a
// distributed lock can be substituted for multi-node deployments as
// long as it keeps the same contract (exclusivity per key, bounded
// wait).
type AccountLock interface {
	// Acquire blocks until the lock for accountID is held, or until
	// timeout elapses, in which case it returns a LockTimeout error.
	Acquire(accountID string, timeout time.Duration) (*Lease, error)
	// Release releases a held lease. Safe to call exactly once per
	// acquired lease; callers must release on every exit path.
	Release(lease *Lease)
}

// Lease is an exclusivity token for one account, valid from Acquire
// until Release. The core never holds leases on two accounts at once
// and never nests acquisition.
type Lease struct {
	AccountID string
	// Handle is owned by the AccountLock implementation.
	Handle any
}
