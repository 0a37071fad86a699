package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// PeerReport represents the chain and pending pool a peer reported.
type PeerReport struct {
	Host                string
	Chain               []database.Block
	PendingTransactions []database.Tx
}

// Resolution represents the outcome of reconciling with the peers.
type Resolution struct {
	Replaced bool
	Chain    []database.Block
}

// EventChainReplaced is raised once the chain and pending pool are swapped.
const EventChainReplaced = "state: chain replaced"

// =============================================================================

// ReplaceChain swaps the chain and the pending pool for the specified ones as
// a single state transition. The chain must already be validated.
func (s *State) ReplaceChain(chain []database.Block, pool []database.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.replaceChain(chain, pool); err != nil {
		return err
	}

	s.Worker.SignalCancelMining()

	return nil
}

// Resolve applies the longest chain rule to the peer reports. The longest
// chain that is strictly longer than ours wins the scan, with the first one
// seen winning a tie. If that chain is valid it replaces our chain and
// pending pool, otherwise our chain is kept.
func (s *State) Resolve(reports []PeerReport) Resolution {
	s.evHandler("state: Resolve: started: reports[%d]", len(reports))
	defer s.evHandler("state: Resolve: completed")

	replaced := s.resolve(reports)
	if replaced {
		s.Worker.SignalCancelMining()
	}

	return Resolution{
		Replaced: replaced,
		Chain:    s.RetrieveChain(),
	}
}

// =============================================================================

// resolve performs the longest chain scan and replacement under the lock so
// the chain can't grow between the scan and the replacement.
func (s *State) resolve(reports []PeerReport) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxLength := s.db.Length()

	var winner *PeerReport
	for i := range reports {
		if len(reports[i].Chain) > maxLength {
			maxLength = len(reports[i].Chain)
			winner = &reports[i]
		}
	}

	if winner == nil {
		s.evHandler("state: Resolve: no longer chain found: length[%d]", maxLength)
		return false
	}

	s.evHandler("state: Resolve: longest chain: peer[%s]: length[%d]", winner.Host, len(winner.Chain))

	if err := database.ValidateChain(winner.Chain, s.evHandler); err != nil {
		s.evHandler("state: Resolve: peer[%s]: chain rejected: %s", winner.Host, err)
		return false
	}

	if err := s.replaceChain(winner.Chain, winner.PendingTransactions); err != nil {
		s.evHandler("state: Resolve: peer[%s]: replace chain: ERROR: %s", winner.Host, err)
		return false
	}

	return true
}

// replaceChain performs the swap. The caller must hold the lock.
func (s *State) replaceChain(chain []database.Block, pool []database.Tx) error {
	s.evHandler("state: replaceChain: length[%d]: pool[%d]", len(chain), len(pool))

	if err := s.db.Replace(chain); err != nil {
		return err
	}

	s.mempool.Replace(pool)

	s.evHandler(EventChainReplaced+": length[%d]", len(chain))

	return nil
}
