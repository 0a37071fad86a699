// Package viewer serves a page that shows blocks as they are added to the
// node's chain.
package viewer

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/web"
)

//go:embed assets/index.html
var index []byte

// Index serves the viewer page. The page connects back to the node's events
// websocket.
func Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	web.SetStatusCode(ctx, http.StatusOK)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(index)
	return err
}
