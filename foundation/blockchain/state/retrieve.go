package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveNodeAddress returns the address mining rewards are paid to.
func (s *State) RetrieveNodeAddress() string {
	return s.nodeAddress
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveBlock returns the block at the specified index, genesis is 1.
func (s *State) RetrieveBlock(index uint64) (database.Block, error) {
	return s.db.GetBlock(index)
}

// RetrieveChain returns a snapshot of the entire chain, genesis first.
func (s *State) RetrieveChain() []database.Block {
	chain, err := s.db.Copy()
	if err != nil {
		s.evHandler("state: RetrieveChain: ERROR: %s", err)
		return nil
	}

	return chain
}

// RetrieveMempool returns a copy of the pending pool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// QueryChainLength returns the number of blocks in the chain.
func (s *State) QueryChainLength() int {
	return s.db.Length()
}

// QueryMempoolLength returns the current length of the pending pool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}
