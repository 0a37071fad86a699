package worker

import (
	"context"
)

// Sync reconciles the chain and pending pool with the known peers using the
// longest chain rule.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	if len(w.state.RetrieveKnownPeers()) == 0 {
		w.evHandler("worker: sync: no known peers")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.PeerTimeout)
	defer cancel()

	res := w.state.Reconcile(ctx)
	w.evHandler("worker: sync: replaced[%t]: length[%d]", res.Replaced, len(res.Chain))
}
