package ledger

import "sync"

// accountLocks hands out one mutex per account so trades on the same
// account serialize while trades on different accounts run in parallel.
// Locks are created lazily on first use and never reclaimed; the map grows
// with the number of accounts seen, not with traffic.
type accountLocks struct {
	mapMutex sync.RWMutex
	locks    map[int64]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{
		locks: make(map[int64]*sync.Mutex),
	}
}

// Lock locks the ledger for a specific account.
func (al *accountLocks) Lock(accountID int64) {
	al.mapMutex.Lock()
	m := al.locks[accountID]
	if m == nil {
		m = &sync.Mutex{}
		al.locks[accountID] = m
	}
	al.mapMutex.Unlock()

	m.Lock()
}

// Unlock unlocks the ledger for a specific account.
func (al *accountLocks) Unlock(accountID int64) {
	al.mapMutex.RLock()
	m := al.locks[accountID]
	al.mapMutex.RUnlock()

	if m != nil {
		m.Unlock()
	}
}
