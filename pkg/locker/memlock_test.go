package locker

import (
	"testing"
	"time"

	bank "github.com/satbank/satbank/pkg"
)

func TestMemLockExclusive(t *testing.T) {
	l := New()
	lease, err := l.Acquire("acc-1", time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// held lock times out a second caller
	_, err = l.Acquire("acc-1", 50*time.Millisecond)
	if !bank.IsError(err, bank.LockTimeout) {
		t.Fatalf("want lock-timeout, got %v", err)
	}

	l.Release(lease)
	lease, err = l.Acquire("acc-1", time.Second)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	l.Release(lease)
}

func TestMemLockIndependentKeys(t *testing.T) {
	l := New()
	a, err := l.Acquire("acc-1", time.Second)
	if err != nil {
		t.Fatalf("Acquire acc-1: %v", err)
	}
	defer l.Release(a)

	b, err := l.Acquire("acc-2", 50 * time.Millisecond)
	if err != nil {
		t.Fatalf("other key must not contend: %v", err)
	}
	l.Release(b)
}

func TestMemLockHandsOverOnRelease(t *testing.T) {
	l := New()
	lease, err := l.Acquire("acc-1", time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	got := make(chan error, 1)
	go func() {
		second, err := l.Acquire("acc-1", time.Second)
		if err == nil {
			l.Release(second)
		}
		got <- err
	}()

	time.Sleep(20 * time.Millisecond)
	l.Release(lease)

	if err := <-got; err != nil {
		t.Fatalf("waiter did not get the lock: %v", err)
	}
}

func TestMemLockReleaseNil(t *testing.T) {
	New().Release(nil) // must not panic
}
