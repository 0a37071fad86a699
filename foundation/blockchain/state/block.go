package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrChainChanged is returned when a mined block can't be added because the
// chain moved on while the proof of work was being performed.
var ErrChainChanged = errors.New("chain changed while mining")

// Events raised once a block is added to the chain.
const (
	EventBlockMined    = "state: block mined"
	EventBlockAccepted = "state: block accepted"
)

// =============================================================================

// PrepareBlockPayload returns the payload for the next block: the next index
// and a snapshot of the pending pool.
func (s *State) PrepareBlockPayload() database.BlockPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, payload := s.prepare()
	return payload
}

// MineNewBlock performs the proof of work for the pending transactions and
// adds the new block to the chain. The proof of work is performed without
// holding the state lock and can be cancelled through the context.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: prepare payload")

	s.mu.Lock()
	latestBlock, payload := s.prepare()
	s.mu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]: trans[%d]", payload.Index, len(payload.Transactions))

	// Attempt to find the nonce by solving the POW puzzle. This can be cancelled.
	nonce, err := database.POW(ctx, latestBlock.Hash, payload, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	hash := database.HashBlock(latestBlock.Hash, payload, nonce)
	block := database.NewBlock(payload, nonce, latestBlock.Hash, hash)

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if err := s.commitMinedBlock(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// ProcessProposedBlock takes a block received from a peer and adds it to the
// chain if it links to our latest block and carries the next index. The
// pending pool is cleared when the block is accepted. A rejected block
// leaves the state unchanged.
func (s *State) ProcessProposedBlock(block database.Block) bool {
	s.evHandler("state: ProcessProposedBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.PreviousBlockHash, block.Hash, len(block.Transactions))
	defer s.evHandler("state: ProcessProposedBlock: completed: newBlk[%s]", block.Hash)

	if err := s.acceptBlock(block); err != nil {
		s.evHandler("state: ProcessProposedBlock: REJECTED: %s", err)
		return false
	}

	// If a mining operation is running it needs to stop since the
	// block it is working on can no longer be added.
	s.Worker.SignalCancelMining()

	return true
}

// =============================================================================

// prepare captures the latest block and the payload for the next block.
// The caller must hold the lock.
func (s *State) prepare() (database.Block, database.BlockPayload) {
	latestBlock := s.db.LatestBlock()
	payload := database.NewBlockPayload(uint64(s.db.Length())+1, s.mempool.Copy())

	return latestBlock, payload
}

// commitMinedBlock adds a locally mined block to the chain and removes the
// mined transactions from the pending pool as a single state transition.
func (s *State) commitMinedBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := database.ValidateNextBlock(s.db.LatestBlock(), block); err != nil {
		return fmt.Errorf("%w: %w", ErrChainChanged, err)
	}

	s.evHandler("state: commitMinedBlock: write block: blk[%d]", block.Index)

	if err := s.db.Write(block); err != nil {
		return err
	}

	// Transactions that arrived while mining stay in the pool for the
	// next block.
	s.mempool.Delete(block.Transactions...)

	s.evHandler(EventBlockMined+": blk[%d]", block.Index)
	s.blockEvent(block)

	return nil
}

// acceptBlock adds an external block to the chain and clears the pending
// pool as a single state transition.
func (s *State) acceptBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := database.ValidateNextBlock(s.db.LatestBlock(), block); err != nil {
		return err
	}

	s.evHandler("state: acceptBlock: write block: blk[%d]", block.Index)

	if err := s.db.Write(block); err != nil {
		return err
	}

	s.mempool.Truncate()

	s.evHandler(EventBlockAccepted+": blk[%d]", block.Index)
	s.blockEvent(block)

	return nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: %s`, string(blockJSON))
}
