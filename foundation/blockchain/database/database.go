// Package database handles all the lower level support for maintaining the
// blockchain: the block and transaction model, hashing, proof of work and
// chain validation, and ordered access to the blocks held in storage.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// Database manages the sequence of blocks that make up the chain.
type Database struct {
	mu          sync.RWMutex
	latestBlock Block
	length      int
	storage     Storage
}

// New constructs a database over the specified storage. An empty storage is
// seeded with a genesis block, otherwise the stored chain is loaded and
// must pass validation.
func New(storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	db := Database{
		storage: storage,
	}

	chain, err := db.readAll()
	if err != nil {
		return nil, err
	}

	if len(chain) == 0 {
		genesis := Genesis()
		if err := storage.Write(genesis); err != nil {
			return nil, fmt.Errorf("writing genesis: %w", err)
		}

		db.latestBlock = genesis
		db.length = 1

		return &db, nil
	}

	if err := ValidateChain(chain, evHandler); err != nil {
		return nil, fmt.Errorf("stored chain: %w", err)
	}

	db.latestBlock = chain[len(chain)-1]
	db.length = len(chain)

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.length
}

// Write appends a new block to the chain. The block must be the next block
// for the current latest block.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := ValidateNextBlock(db.latestBlock, block); err != nil {
		return err
	}

	if err := db.storage.Write(block); err != nil {
		return err
	}

	db.latestBlock = block
	db.length++

	return nil
}

// Replace swaps the whole chain for the specified one. Readers never see a
// partially replaced chain. If the new chain can't be stored, the previous
// chain is put back.
func (db *Database) Replace(chain []Block) error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	previous, err := db.readAll()
	if err != nil {
		return err
	}

	if err := db.store(chain); err != nil {
		if rerr := db.store(previous); rerr != nil {
			return errors.Join(err, fmt.Errorf("restoring chain: %w", rerr))
		}
		return err
	}

	db.latestBlock = chain[len(chain)-1]
	db.length = len(chain)

	return nil
}

// Copy returns a snapshot of the entire chain, genesis first.
func (db *Database) Copy() ([]Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.readAll()
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(index uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.storage.GetBlock(index)
}

// =============================================================================

// readAll reads every block from storage. The caller must hold the lock or
// be in construction.
func (db *Database) readAll() ([]Block, error) {
	var chain []Block

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		chain = append(chain, block)
	}

	return chain, nil
}

// store resets storage and writes the chain. The caller must hold the lock.
func (db *Database) store(chain []Block) error {
	if err := db.storage.Reset(); err != nil {
		return err
	}

	for _, block := range chain {
		if err := db.storage.Write(block); err != nil {
			return err
		}
	}

	return nil
}
