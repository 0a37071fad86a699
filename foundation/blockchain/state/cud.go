package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// SubmitTransaction adds the transaction to the pending pool and returns the
// index of the block the transaction is expected to be mined in. The index
// is informational and not a reservation.
func (s *State) SubmitTransaction(tx database.Tx) uint64 {
	s.evHandler("state: SubmitTransaction: tx[%s]", tx)

	s.mempool.Upsert(tx)
	s.Worker.SignalStartMining()

	return uint64(s.db.Length()) + 1
}

// SubmitNewTransaction validates the record, constructs the transaction and
// adds it to the pending pool.
func (s *State) SubmitNewTransaction(ntx database.NewTx) (database.Tx, uint64, error) {
	tx, err := database.ToTx(ntx)
	if err != nil {
		return database.Tx{}, 0, err
	}

	return tx, s.SubmitTransaction(tx), nil
}

// BroadcastTransaction adds the transaction to the pending pool and asks the
// worker to share it with the known peers.
func (s *State) BroadcastTransaction(tx database.Tx) uint64 {
	index := s.SubmitTransaction(tx)
	s.Worker.SignalShareTx(tx)

	return index
}

// IssueMiningReward creates the mining reward transaction for this node and
// broadcasts it.
func (s *State) IssueMiningReward() database.Tx {
	tx := database.NewRewardTx(s.nodeAddress)
	s.BroadcastTransaction(tx)

	return tx
}

// AddKnownPeer provides the ability to add a new peer. The node's own host
// is never added. It reports whether the peer was new.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.host) {
		return false
	}

	if !s.knownPeers.Add(pr) {
		return false
	}

	s.evHandler("state: AddKnownPeer: adding peer-node %s", pr)
	return true
}

// AddKnownPeers adds each of the specified peers and returns the number of
// peers that were new.
func (s *State) AddKnownPeers(peers []peer.Peer) int {
	var added int
	for _, pr := range peers {
		if s.AddKnownPeer(pr) {
			added++
		}
	}

	return added
}
