// Package lock provides per-key locking used to serialize writes to the same game.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout means another writer held the key for the whole wait.
var ErrLockTimeout = errors.New("timed out waiting for key lock")

// keyMutex is a one-slot semaphore plus a count of goroutines holding or waiting on it.
type keyMutex struct {
	sem  chan struct{}
	refs int
}

// KeyedLock hands out an independent mutex per int64 key. Mutexes are created on demand
// and dropped once nobody holds or waits for them.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[int64]*keyMutex
}

// NewKeyedLock creates a new KeyedLock instance.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{locks: make(map[int64]*keyMutex)}
}

func (kl *KeyedLock) acquireRef(key int64) *keyMutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	m, ok := kl.locks[key]
	if !ok {
		m = &keyMutex{sem: make(chan struct{}, 1)}
		kl.locks[key] = m
	}
	m.refs++
	return m
}

func (kl *KeyedLock) releaseRef(key int64, m *keyMutex) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	m.refs--
	if m.refs == 0 {
		delete(kl.locks, key)
	}
}

// Lock blocks until the lock for key is held or ctx is done.
func (kl *KeyedLock) Lock(ctx context.Context, key int64) error {
	m := kl.acquireRef(key)

	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		kl.releaseRef(key, m)
		return ctx.Err()
	}
}

// Unlock releases the lock for key. Unlocking a key that is not held is a no-op.
func (kl *KeyedLock) Unlock(key int64) {
	kl.mu.Lock()
	m, ok := kl.locks[key]
	kl.mu.Unlock()
	if !ok {
		return
	}

	select {
	case <-m.sem:
		kl.releaseRef(key, m)
	default:
	}
}

// TryLock attempts to acquire the lock without blocking.
func (kl *KeyedLock) TryLock(key int64) bool {
	m := kl.acquireRef(key)

	select {
	case m.sem <- struct{}{}:
		return true
	default:
		kl.releaseRef(key, m)
		return false
	}
}

// LockWithTimeout attempts to acquire the lock, giving up after timeout.
// Returns ErrLockTimeout when the deadline passes first.
func (kl *KeyedLock) LockWithTimeout(ctx context.Context, key int64, timeout time.Duration) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := kl.Lock(timeoutCtx, key)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return ErrLockTimeout
	}
	return err
}

// WithLock executes fn while holding the lock for key.
func (kl *KeyedLock) WithLock(ctx context.Context, key int64, timeout time.Duration, fn func() error) error {
	if err := kl.LockWithTimeout(ctx, key, timeout); err != nil {
		return err
	}
	defer kl.Unlock(key)

	return fn()
}

// IsLocked reports whether key is currently held.
// This is a point-in-time check and may change immediately after.
func (kl *KeyedLock) IsLocked(key int64) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	m, ok := kl.locks[key]
	return ok && len(m.sem) == 1
}

// size returns the number of tracked keys.
func (kl *KeyedLock) size() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.locks)
}
