// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gridledger/gridledger/business/sys/validate"
	"github.com/gridledger/gridledger/business/web/errs"
	"github.com/gridledger/gridledger/foundation/events"
	"github.com/gridledger/gridledger/foundation/ledger/database"
	"github.com/gridledger/gridledger/foundation/ledger/state"
	"github.com/gridledger/gridledger/foundation/web"
)

// Handlers manages the set of grid ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTelemetry adds a new telemetry reading to the pending queue.
func (h Handlers) SubmitTelemetry(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nt newTelemetry
	if err := web.Decode(r, &nt); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(nt); err != nil {
		return err
	}

	record := database.Record{
		NodeID:   nt.NodeID,
		Voltage:  nt.Voltage,
		Current:  nt.Current,
		Power:    nt.Power,
		Metadata: nt.Metadata,
	}

	h.Log.Infow("submit telemetry", "traceid", v.TraceID, "node", record.NodeID, "samples", len(record.Voltage))
	if err := h.State.SubmitTelemetry(record); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status  string `json:"status"`
		Pending int    `json:"pending"`
	}{
		Status:  "telemetry accepted",
		Pending: h.State.QueryPendingLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// MineBlock mines the next block from the pending queue and appends it to
// the chain.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	block, err := h.State.MineNext(ctx)
	if err != nil {
		if errors.Is(err, state.ErrEmptyQueue) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	h.Log.Infow("block mined", "traceid", v.TraceID, "number", block.Header.Number, "hash", block.Hash)

	return web.Respond(ctx, w, block, http.StatusOK)
}

// SignalMining signals the background mining operation to run.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Chain returns the full chain along with its length.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	details, err := h.State.RetrieveChainDetails()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, details, http.StatusOK)
}

// Pending returns the telemetry readings waiting to be mined.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	records := h.State.QueryPending()

	resp := struct {
		Count   int               `json:"count"`
		Records []database.Record `json:"records"`
	}{
		Count:   len(records),
		Records: records,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// TelemetrySummary returns per-node aggregate statistics over the chain.
func (h Handlers) TelemetrySummary(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	summaries, err := h.State.QueryTelemetrySummary()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, summaries, http.StatusOK)
}

// AuditChain recomputes every block digest and reports per block findings.
func (h Handlers) AuditChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	report, err := h.State.Audit()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, report, http.StatusOK)
}
