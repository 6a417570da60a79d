package service

import "sync"

// PortfolioLocker serializes ledger writes per portfolio. The duplicate check
// followed by an append is not atomic at the application level, so every sync
// and import holds the portfolio's lock for the duration of its run; the
// storage-level UNIQUE constraint remains as the backstop.
type PortfolioLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPortfolioLocker creates an empty locker.
func NewPortfolioLocker() *PortfolioLocker {
	return &PortfolioLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for a portfolio and returns the unlock func.
func (l *PortfolioLocker) Lock(portfolioID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[portfolioID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[portfolioID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
