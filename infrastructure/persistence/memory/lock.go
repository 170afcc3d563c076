package memory

import (
	"context"
	"sync"
	"time"

	pkgerrors "neurovault/pkg/errors"
)

// MaintenanceLock is the in-process lease implementation. A lease expires
// after its TTL even if never released, so a crashed holder cannot block
// future cycles.
type MaintenanceLock struct {
	mu     sync.Mutex
	leases map[string]time.Time // lockID -> expiry
}

// NewMaintenanceLock creates an in-process maintenance lock
func NewMaintenanceLock() *MaintenanceLock {
	return &MaintenanceLock{
		leases: make(map[string]time.Time),
	}
}

// Acquire obtains the lease, returning a release function on success and
// ErrLockNotAcquired when another holder's lease is still live.
func (l *MaintenanceLock) Acquire(ctx context.Context, lockID string, ttl time.Duration) (func(ctx context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if expiry, held := l.leases[lockID]; held && expiry.After(now) {
		return nil, pkgerrors.ErrLockNotAcquired
	}

	expiry := now.Add(ttl)
	l.leases[lockID] = expiry

	release := func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// Only the holder's own lease is removed; a lease that expired and
		// was re-acquired belongs to someone else.
		if current, held := l.leases[lockID]; held && current.Equal(expiry) {
			delete(l.leases, lockID)
		}
		return nil
	}
	return release, nil
}
