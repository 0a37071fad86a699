// Package mempool maintains the pool of pending transactions that are
// waiting to be mined into the next block.
package mempool

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Mempool represents the ordered set of pending transactions. Transactions
// keep their submission order, which is the order they are mined in.
type Mempool struct {
	mu    sync.RWMutex
	pool  []database.Tx
	index map[string]int
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{
		index: make(map[string]int),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert appends the transaction to the pool. A transaction with an id that
// is already pending replaces the existing one in place.
func (mp *Mempool) Upsert(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if i, exists := mp.index[tx.TransactionID]; exists {
		mp.pool[i] = tx
		return len(mp.pool)
	}

	mp.index[tx.TransactionID] = len(mp.pool)
	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Delete removes the specified transactions from the pool, keeping the
// order of the remaining ones.
func (mp *Mempool) Delete(trans ...database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	remove := make(map[string]struct{}, len(trans))
	for _, tx := range trans {
		remove[tx.TransactionID] = struct{}{}
	}

	pool := make([]database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		if _, exists := remove[tx.TransactionID]; !exists {
			pool = append(pool, tx)
		}
	}

	mp.set(pool)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.set(nil)
}

// Replace swaps the contents of the pool for the specified transactions.
func (mp *Mempool) Replace(trans []database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	pool := make([]database.Tx, 0, len(trans))
	seen := make(map[string]int, len(trans))
	for _, tx := range trans {
		if i, exists := seen[tx.TransactionID]; exists {
			pool[i] = tx
			continue
		}
		seen[tx.TransactionID] = len(pool)
		pool = append(pool, tx)
	}

	mp.set(pool)
}

// Copy returns a snapshot of the pending transactions in submission order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	trans := make([]database.Tx, len(mp.pool))
	copy(trans, mp.pool)

	return trans
}

// =============================================================================

// set replaces the pool and rebuilds the index. The caller must hold the lock.
func (mp *Mempool) set(pool []database.Tx) {
	mp.pool = pool
	mp.index = make(map[string]int, len(pool))
	for i, tx := range pool {
		mp.index[tx.TransactionID] = i
	}
}
