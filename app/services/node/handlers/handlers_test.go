package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/business/sys/metrics"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// node is a running node for testing.
type node struct {
	state *state.State
	srv   *httptest.Server
}

func newNode(t *testing.T) *node {
	t.Helper()

	log := logger.NewTest("TEST")

	var n node

	// The host is only known once the server is listening, so the handler
	// is set after the state is constructed.
	mux := http.NewServeMux()
	n.srv = httptest.NewServer(mux)
	t.Cleanup(n.srv.Close)

	st, err := state.New(state.Config{
		Host:        n.srv.URL,
		NodeAddress: "node-" + n.srv.URL,
		Storage:     memory.New(),
		PeerTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	n.state = st

	mux.Handle("/", handlers.APIMux(handlers.MuxConfig{
		Shutdown:    make(chan os.Signal, 1),
		Log:         log,
		State:       st,
		Evts:        events.New(),
		Metrics:     metrics.New(),
		CORSOrigins: []string{"*"},
	}))

	return &n
}

func (n *node) do(t *testing.T, method string, path string, body any, resp any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, n.srv.URL+"/v1"+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if resp != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(resp))
	}

	return res.StatusCode
}

// =============================================================================

func TestTransactionAndMine(t *testing.T) {
	n := newNode(t)

	var note struct {
		Note string `json:"note"`
	}
	status := n.do(t, http.MethodPost, "/transaction", map[string]any{
		"amount":    100,
		"sender":    "alice",
		"recipient": "bob",
	}, &note)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Transaction will be added to the block number 2.", note.Note)

	var mined struct {
		Note  string         `json:"note"`
		Block database.Block `json:"block"`
	}
	status = n.do(t, http.MethodGet, "/mine", nil, &mined)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(2), mined.Block.Index)
	require.Len(t, mined.Block.Transactions, 1)
	assert.Equal(t, "alice", mined.Block.Transactions[0].Sender)

	var cd state.ChainData
	status = n.do(t, http.MethodGet, "/blockchain", nil, &cd)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, cd.Chain, 2)
	assert.Equal(t, n.srv.URL, cd.CurrentNodeURL)

	// The reward for the mined block waits in the pool for the next block.
	require.Len(t, cd.PendingTransactions, 1)
	assert.Equal(t, database.RewardSender, cd.PendingTransactions[0].Sender)
	assert.Equal(t, database.RewardAmount, *cd.PendingTransactions[0].Amount)
}

func TestValidation(t *testing.T) {
	n := newNode(t)

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	status := n.do(t, http.MethodPost, "/transaction/broadcast", map[string]any{
		"sender": "alice",
	}, &resp)

	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, resp.Fields, "amount")
	assert.Contains(t, resp.Fields, "recipient")
	assert.Equal(t, 0, n.state.QueryMempoolLength())

	status = n.do(t, http.MethodPost, "/register-node", map[string]any{
		"newNodeURL": "not a url",
	}, &resp)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, resp.Fields, "newNodeURL")
}

func TestReceiveNewBlock(t *testing.T) {
	miner := newNode(t)
	other := newNode(t)

	miner.state.AddKnownPeer(peer.New(other.srv.URL))
	miner.state.SubmitTransaction(database.NewTransaction(5, "alice", "bob", ""))

	// Mining on the miner proposes the block to the other node.
	status := miner.do(t, http.MethodGet, "/mine", nil, nil)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 2, other.state.QueryChainLength())
	assert.Equal(t, miner.state.RetrieveLatestBlock().Hash, other.state.RetrieveLatestBlock().Hash)

	// Sending the same block again is rejected.
	var resp struct {
		Note string `json:"note"`
	}
	bd := database.NewBlockData(miner.state.RetrieveLatestBlock())
	status = other.do(t, http.MethodPost, "/receive-new-block", bd, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "New block rejected.", resp.Note)
}

func TestRegisterAndConsensus(t *testing.T) {
	a := newNode(t)
	b := newNode(t)
	c := newNode(t)

	b.state.SubmitTransaction(database.NewTransaction(1, "alice", "bob", ""))
	_, err := b.state.MineNewBlock(t.Context())
	require.NoError(t, err)

	// a learns about b, then c joins the network through a.
	status := a.do(t, http.MethodPost, "/register-and-broadcast-node", state.NewNode{NewNodeURL: b.srv.URL}, nil)
	require.Equal(t, http.StatusOK, status)

	status = a.do(t, http.MethodPost, "/register-and-broadcast-node", state.NewNode{NewNodeURL: c.srv.URL}, nil)
	require.Equal(t, http.StatusOK, status)

	for _, n := range []*node{a, b, c} {
		assert.Len(t, n.state.RetrieveKnownPeers(), 2, n.srv.URL)
	}

	var resp struct {
		Note  string           `json:"note"`
		Chain []database.Block `json:"chain"`
	}
	status = c.do(t, http.MethodGet, "/consensus", nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "This chain has been replaced.", resp.Note)
	assert.Len(t, resp.Chain, 2)
	assert.Equal(t, b.state.RetrieveLatestBlock().Hash, c.state.RetrieveLatestBlock().Hash)

	status = c.do(t, http.MethodGet, "/consensus", nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Current chain has not been replaced.", resp.Note)
}

func TestBlockAndViewer(t *testing.T) {
	n := newNode(t)

	var block database.Block
	status := n.do(t, http.MethodGet, "/block/1", nil, &block)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, database.IsGenesisValid(block))

	var resp struct {
		Error string `json:"error"`
	}
	status = n.do(t, http.MethodGet, "/block/9", nil, &resp)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, resp.Error, "block 9")

	status = n.do(t, http.MethodGet, "/block/abc", nil, &resp)
	assert.Equal(t, http.StatusBadRequest, status)

	res, err := http.Get(n.srv.URL + "/viewer")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
}
