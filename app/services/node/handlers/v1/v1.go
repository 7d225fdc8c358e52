// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/gridledger/gridledger/app/services/node/handlers/v1/private"
	"github.com/gridledger/gridledger/app/services/node/handlers/v1/public"
	"github.com/gridledger/gridledger/foundation/events"
	"github.com/gridledger/gridledger/foundation/ledger/state"
	"github.com/gridledger/gridledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/chain/list", pbl.Chain)
	app.Handle(http.MethodGet, version, "/telemetry/summary", pbl.TelemetrySummary)
	app.Handle(http.MethodGet, version, "/telemetry/pending/list", pbl.Pending)
	app.Handle(http.MethodGet, version, "/mining/run", pbl.MineBlock)
	app.Handle(http.MethodGet, version, "/mining/signal", pbl.SignalMining)
	app.Handle(http.MethodGet, version, "/audit/chain", pbl.AuditChain)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodPost, version, "/telemetry/submit", pbl.SubmitTelemetry)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/chain/list", prv.Chain)
	app.Handle(http.MethodGet, version, "/node/reconcile", prv.Reconcile)
	app.Handle(http.MethodPost, version, "/node/peers/add", prv.AddPeer)
}
