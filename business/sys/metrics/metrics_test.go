package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/business/sys/metrics"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type ledger struct{}

func (ledger) QueryChainLength() int { return 3 }
func (ledger) QueryMempoolLength() int { return 2 }
func (ledger) RetrieveKnownPeers() []peer.Peer { return []peer.Peer{peer.New("http://a")} }

func TestLedgerCollector(t *testing.T) {
	c := metrics.NewLedgerCollector(ledger{})

	require.Equal(t, 3, testutil.CollectAndCount(c))

	m := metrics.New()
	require.NoError(t, m.Register(c))
}

func TestObserve(t *testing.T) {
	m := metrics.New()

	newState := func() *state.State {
		st, err := state.New(state.Config{
			Host:        "http://localhost:8080",
			NodeAddress: "node-address",
			Storage:     memory.New(),
			KnownPeers:  peer.NewPeerSet(),
			PeerTimeout: time.Second,
			EvHandler:   m.Observe,
		})
		require.NoError(t, err)
		return st
	}

	miner := newState()
	miner.SubmitTransaction(database.NewTransaction(10, "alice", "bob", ""))

	block, err := miner.MineNewBlock(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(m.BlocksMined))

	st := newState()
	require.True(t, st.ProcessProposedBlock(block))
	require.False(t, st.ProcessProposedBlock(block))
	require.Equal(t, 1.0, testutil.ToFloat64(m.BlocksAccepted))

	res := newState().Resolve([]state.PeerReport{{Host: "a", Chain: miner.RetrieveChain()}})
	require.True(t, res.Replaced)
	require.Equal(t, 1.0, testutil.ToFloat64(m.ChainsReplaced))

	require.Equal(t, 1.0, testutil.ToFloat64(m.BlocksMined))
}
