// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 routes used by clients.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
		WS:    websocket.Upgrader{},
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/blockchain", pbl.Blockchain)
	app.Handle(http.MethodGet, version, "/block/:index", pbl.Block)
	app.Handle(http.MethodGet, version, "/mine", pbl.Mine)
	app.Handle(http.MethodPost, version, "/transaction/broadcast", pbl.BroadcastTransaction)
	app.Handle(http.MethodGet, version, "/consensus", pbl.Consensus)
	app.Handle(http.MethodPost, version, "/register-and-broadcast-node", pbl.RegisterAndBroadcastNode)
}

// PrivateRoutes binds all the version 1 routes used by peers.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodPost, version, "/receive-new-block", prv.ReceiveNewBlock)
	app.Handle(http.MethodPost, version, "/transaction", prv.SubmitTransaction)
	app.Handle(http.MethodPost, version, "/register-node", prv.RegisterNode)
	app.Handle(http.MethodPost, version, "/register-nodes-bulk", prv.RegisterNodesBulk)
}
