package state

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/validate"
	"golang.org/x/sync/errgroup"
)

const baseURL = "%s/v1"

// =============================================================================

// ChainData is the document a node serves describing its chain, pending pool
// and known peers.
type ChainData struct {
	Chain               []database.BlockData `json:"chain"`
	PendingTransactions []database.NewTx     `json:"pendingTransactions"`
	CurrentNodeURL      string               `json:"currentNodeURL"`
	NetworkNodes        []string             `json:"networkNodes"`
}

// NewNode is the document used to register a single node.
type NewNode struct {
	NewNodeURL string `json:"newNodeURL" validate:"required,url"`
}

// Validate checks the document is well formed.
func (nn NewNode) Validate() error {
	return validate.Check(nn)
}

// BulkNodes is the document used to register a set of nodes at once.
type BulkNodes struct {
	AllNetworkNodes []string `json:"allNetworkNodes" validate:"required,dive,url"`
}

// Validate checks the document is well formed.
func (bn BulkNodes) Validate() error {
	return validate.Check(bn)
}

// ToPeerReport validates the chain document and converts it into a report
// for the consensus rules.
func ToPeerReport(host string, cd ChainData) (PeerReport, error) {
	chain, err := database.ToBlocks(cd.Chain)
	if err != nil {
		return PeerReport{}, err
	}

	pool := make([]database.Tx, len(cd.PendingTransactions))
	for i, ntx := range cd.PendingTransactions {
		tx, err := database.ToTx(ntx)
		if err != nil {
			return PeerReport{}, fmt.Errorf("pendingTransactions[%d]: %w", i, err)
		}
		pool[i] = tx
	}

	report := PeerReport{
		Host:                host,
		Chain:               chain,
		PendingTransactions: pool,
	}

	return report, nil
}

// =============================================================================

// Reconcile requests the chain from every known peer and applies the
// longest chain rule to the reports that came back.
func (s *State) Reconcile(ctx context.Context) Resolution {
	reports := s.NetRequestPeerChains(ctx)
	return s.Resolve(reports)
}

// NetRequestPeerChains asks every known peer for its chain concurrently. A
// peer that fails to respond is left out of the result. Reports are returned
// in known peer order.
func (s *State) NetRequestPeerChains(ctx context.Context) []PeerReport {
	s.evHandler("state: NetRequestPeerChains: started")
	defer s.evHandler("state: NetRequestPeerChains: completed")

	peers := s.RetrieveKnownPeers()
	results := make([]*PeerReport, len(peers))

	var g errgroup.Group
	for i, pr := range peers {
		g.Go(func() error {
			report, err := s.NetRequestPeerChain(ctx, pr)
			if err != nil {
				s.evHandler("state: NetRequestPeerChains: peer[%s]: WARNING: %s", pr, err)
				return nil
			}
			results[i] = &report
			return nil
		})
	}
	g.Wait()

	reports := make([]PeerReport, 0, len(peers))
	for _, report := range results {
		if report != nil {
			reports = append(reports, *report)
		}
	}

	return reports
}

// NetRequestPeerChain asks the specified peer for its chain.
func (s *State) NetRequestPeerChain(ctx context.Context, pr peer.Peer) (PeerReport, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr)

	url := fmt.Sprintf("%s/blockchain", fmt.Sprintf(baseURL, pr.Host))

	var cd ChainData
	if err := s.send(ctx, http.MethodGet, url, nil, &cd); err != nil {
		return PeerReport{}, err
	}

	s.evHandler("state: NetRequestPeerChain: peer[%s]: length[%d]: pool[%d]", pr, len(cd.Chain), len(cd.PendingTransactions))

	return ToPeerReport(pr.Host, cd)
}

// NetSendBlockToPeers takes the new mined block and sends it to all known
// peers. Every peer is attempted, the failures are returned together.
func (s *State) NetSendBlockToPeers(ctx context.Context, block database.Block) error {
	s.evHandler("state: NetSendBlockToPeers: started")
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	return s.broadcast(ctx, "/receive-new-block", database.NewBlockData(block))
}

// NetSendTxToPeers shares a new transaction with the known peers.
func (s *State) NetSendTxToPeers(ctx context.Context, tx database.Tx) error {
	s.evHandler("state: NetSendTxToPeers: started")
	defer s.evHandler("state: NetSendTxToPeers: completed")

	return s.broadcast(ctx, "/transaction", tx)
}

// NetRegisterAndBroadcastPeer registers the new peer, announces it to every
// known peer and then sends the new peer the full list of nodes in the
// network, this node included.
func (s *State) NetRegisterAndBroadcastPeer(ctx context.Context, newPeer peer.Peer) error {
	s.evHandler("state: NetRegisterAndBroadcastPeer: started: %s", newPeer)
	defer s.evHandler("state: NetRegisterAndBroadcastPeer: completed: %s", newPeer)

	s.AddKnownPeer(newPeer)

	var errs []error

	var announce []peer.Peer
	for _, pr := range s.RetrieveKnownPeers() {
		if !pr.Match(newPeer.Host) {
			announce = append(announce, pr)
		}
	}

	if err := s.broadcastTo(ctx, announce, "/register-node", NewNode{NewNodeURL: newPeer.Host}); err != nil {
		errs = append(errs, err)
	}

	bulk := BulkNodes{
		AllNetworkNodes: []string{s.host},
	}
	for _, pr := range s.RetrieveKnownPeers() {
		bulk.AllNetworkNodes = append(bulk.AllNetworkNodes, pr.Host)
	}

	url := fmt.Sprintf("%s/register-nodes-bulk", fmt.Sprintf(baseURL, newPeer.Host))
	if err := s.send(ctx, http.MethodPost, url, bulk, nil); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", newPeer.Host, err))
	}

	return errors.Join(errs...)
}

// =============================================================================

// broadcast posts the value to the specified path on every known peer.
func (s *State) broadcast(ctx context.Context, path string, dataSend any) error {
	return s.broadcastTo(ctx, s.RetrieveKnownPeers(), path, dataSend)
}

// broadcastTo posts the value to the specified path on each peer
// concurrently. One failing peer doesn't stop the others.
func (s *State) broadcastTo(ctx context.Context, peers []peer.Peer, path string, dataSend any) error {
	errs := make([]error, len(peers))

	var g errgroup.Group
	for i, pr := range peers {
		g.Go(func() error {
			url := fmt.Sprintf("%s%s", fmt.Sprintf(baseURL, pr.Host), path)
			if err := s.send(ctx, http.MethodPost, url, dataSend, nil); err != nil {
				s.evHandler("state: broadcast: peer[%s]: path[%s]: WARNING: %s", pr, path, err)
				errs[i] = fmt.Errorf("%s: %w", pr.Host, err)
				return nil
			}
			s.evHandler("state: broadcast: sent to peer[%s]: path[%s]", pr, path)
			return nil
		})
	}
	g.Wait()

	return errors.Join(errs...)
}

// send is a helper function to send an HTTP request to a node.
func (s *State) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	req := s.client.R().SetContext(ctx)

	if dataSend != nil {
		req.SetBody(dataSend)
	}

	if dataRecv != nil {
		req.SetResult(dataRecv)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return err
	}

	if resp.StatusCode() == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("status[%d]: %s", resp.StatusCode(), resp.String())
	}

	return nil
}
