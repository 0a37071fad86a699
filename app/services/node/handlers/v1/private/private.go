// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// ReceiveNewBlock takes a block mined by a peer and appends it to the chain
// when it is the next block.
func (h Handlers) ReceiveNewBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var blockData database.BlockData
	if err := web.Decode(r, &blockData); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	block, err := database.ToBlock(blockData)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := received{
		Note:     "New block rejected.",
		NewBlock: block,
	}

	if h.State.ProcessProposedBlock(block) {
		resp.Note = "New block received and accepted."
	}

	h.Log.Infow("receive block", "traceid", web.GetTraceID(ctx), "blk", block.Index, "note", resp.Note)

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a transaction shared by a peer to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ntx database.NewTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, index, err := h.State.SubmitNewTransaction(ntx)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tx", "traceid", web.GetTraceID(ctx), "tx", tx)

	resp := note{
		Note: fmt.Sprintf("Transaction will be added to the block number %d.", index),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterNode adds a single node to the known peers.
func (h Handlers) RegisterNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nn state.NewNode
	if err := web.Decode(r, &nn); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.State.AddKnownPeer(peer.New(nn.NewNodeURL))

	resp := note{
		Note: "New node registered successfully.",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterNodesBulk adds every node in the list to the known peers.
func (h Handlers) RegisterNodesBulk(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var bn state.BulkNodes
	if err := web.Decode(r, &bn); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	peers := make([]peer.Peer, len(bn.AllNetworkNodes))
	for i, host := range bn.AllNetworkNodes {
		peers[i] = peer.New(host)
	}

	added := h.State.AddKnownPeers(peers)
	h.Log.Infow("register nodes", "traceid", web.GetTraceID(ctx), "received", len(peers), "added", added)

	resp := note{
		Note: "Bulk registration successful.",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
