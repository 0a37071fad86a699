// Package state is the core API for the blockchain and implements all the
// business rules and processing. It owns the chain, the pending pool and the
// set of known peers for a single node.
package state

import (
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/go-resty/resty/v2"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, consensus, and peer sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
	SignalShareTx(tx database.Tx)
	SignalShareBlock(block database.Block)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Host        string
	NodeAddress string
	Storage     database.Storage
	KnownPeers  *peer.PeerSet
	PeerTimeout time.Duration
	EvHandler   EventHandler
}

// State manages the blockchain database.
type State struct {
	mu sync.Mutex

	host        string
	nodeAddress string
	evHandler   EventHandler

	knownPeers *peer.PeerSet
	db         *database.Database
	mempool    *mempool.Mempool
	client     *resty.Client

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the chain held by the storage. An empty storage is
	// seeded with the genesis block.
	db, err := database.New(cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	nodeAddress := cfg.NodeAddress
	if nodeAddress == "" {
		nodeAddress = database.NewNodeAddress()
	}

	// The client used to talk to peers. A peer that never responds only
	// stalls the workflow waiting on it, so a timeout is applied here.
	client := resty.New().
		SetTimeout(cfg.PeerTimeout).
		SetHeader("Content-Type", "application/json; charset=utf-8")

	// Create the State to provide support for managing the blockchain.
	state := State{
		host:        cfg.Host,
		nodeAddress: nodeAddress,
		evHandler:   ev,

		knownPeers: knownPeers,
		db:         db,
		mempool:    mempool.New(),
		client:     client,

		Worker: nopWorker{},
	}

	// The Worker is set to a no-op value here. The call to worker.Run will
	// assign itself and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	// Make sure the storage is properly closed.
	return s.db.Close()
}

// =============================================================================

// nopWorker is used until a real worker registers itself with the state.
type nopWorker struct{}

func (nopWorker) Shutdown() {}
func (nopWorker) SignalStartMining() {}
func (nopWorker) SignalCancelMining() {}
func (nopWorker) SignalShareTx(database.Tx) {}
func (nopWorker) SignalShareBlock(database.Block) {}
