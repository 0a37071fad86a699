// Package public maintains the group of handlers for client access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of client endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
	WS    websocket.Upgrader
}

// Events handles a web socket to provide block events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	id, ch := h.Evts.Subscribe()
	defer h.Evts.Unsubscribe(id)

	h.Log.Infow("events", "traceid", web.GetTraceID(ctx), "status", "subscribed", "id", id)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Blockchain returns the chain, the pending pool and the known peers.
func (h Handlers) Blockchain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain := h.State.RetrieveChain()
	pool := h.State.RetrieveMempool()
	peers := h.State.RetrieveKnownPeers()

	cd := state.ChainData{
		Chain:               make([]database.BlockData, len(chain)),
		PendingTransactions: make([]database.NewTx, len(pool)),
		CurrentNodeURL:      h.State.RetrieveHost(),
		NetworkNodes:        make([]string, len(peers)),
	}

	for i, block := range chain {
		cd.Chain[i] = database.NewBlockData(block)
	}
	for i, tx := range pool {
		cd.PendingTransactions[i] = database.NewTxData(tx)
	}
	for i, pr := range peers {
		cd.NetworkNodes[i] = pr.Host
	}

	return web.Respond(ctx, w, cd, http.StatusOK)
}

// Block returns the block at the specified index.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block index: %w", err), http.StatusBadRequest)
	}

	block, err := h.State.RetrieveBlock(index)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("block %d: %w", index, err), http.StatusNotFound)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// Mine mines the pending transactions into a new block, proposes the block
// to the known peers and then issues the mining reward.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		if errors.Is(err, state.ErrChainChanged) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	if err := h.State.NetSendBlockToPeers(ctx, block); err != nil {
		h.Log.Infow("mine", "traceid", web.GetTraceID(ctx), "status", "share block", "WARNING", err)
	}

	reward := h.State.IssueMiningReward()
	h.Log.Infow("mine", "traceid", web.GetTraceID(ctx), "status", "reward issued", "tx", reward)

	resp := mined{
		Note:  "New block mined & broadcast successfully",
		Block: block,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BroadcastTransaction creates a new transaction, adds it to the pending
// pool and shares it with the known peers.
func (h Handlers) BroadcastTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ntx database.NewTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, err := database.ToTx(ntx)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.State.BroadcastTransaction(tx)

	h.Log.Infow("broadcast tx", "traceid", web.GetTraceID(ctx), "tx", tx)

	resp := note{
		Note: "Transaction created and broadcast successfully.",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Consensus reconciles the chain with the known peers using the longest
// chain rule.
func (h Handlers) Consensus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	res := h.State.Reconcile(ctx)

	resp := consensus{
		Note:  "Current chain has not been replaced.",
		Chain: res.Chain,
	}

	if res.Replaced {
		resp.Note = "This chain has been replaced."
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterAndBroadcastNode registers a new node with this node, announces
// it to the rest of the network and sends it the list of network nodes.
func (h Handlers) RegisterAndBroadcastNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nn state.NewNode
	if err := web.Decode(r, &nn); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.NetRegisterAndBroadcastPeer(ctx, peer.New(nn.NewNodeURL)); err != nil {
		h.Log.Infow("register node", "traceid", web.GetTraceID(ctx), "node", nn.NewNodeURL, "WARNING", err)
	}

	resp := note{
		Note: "New node registered with network successfully.",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
