package locker

import (
	"sync"
	"time"

	bank "github.com/satbank/satbank/pkg"
)

// interface guard ensures MemLock implements bank.AccountLock
var _ bank.AccountLock = &MemLock{}

// MemLock is the in-process account lock for single-node deployments:
// one slot per account key, bounded wait. Multi-node deployments swap
// in a distributed lock behind the same bank.AccountLock contract.
type MemLock struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
}

func New() *MemLock {
	return &MemLock{keys: make(map[string]chan struct{})}
}

func (l *MemLock) keyChan(accountID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.keys[accountID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.keys[accountID] = ch
	}
	return ch
}

func (l *MemLock) Acquire(accountID string, timeout time.Duration) (*bank.Lease, error) {
	ch := l.keyChan(accountID)
	select {
	case ch <- struct{}{}:
		return &bank.Lease{AccountID: accountID, Handle: ch}, nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return &bank.Lease{AccountID: accountID, Handle: ch}, nil
	case <-timer.C:
		return nil, bank.NewErr(bank.LockTimeout,
			"timed out after %s waiting for account lock: %s", timeout, accountID)
	}
}

func (l *MemLock) Release(lease *bank.Lease) {
	if lease == nil {
		return
	}
	ch := lease.Handle.(chan struct{})
	<-ch
}
