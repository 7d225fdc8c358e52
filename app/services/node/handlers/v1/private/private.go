// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/gridledger/gridledger/business/web/errs"
	"github.com/gridledger/gridledger/foundation/ledger/peer"
	"github.com/gridledger/gridledger/foundation/ledger/state"
	"github.com/gridledger/gridledger/foundation/web"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latestBlock := h.State.RetrieveLatestBlock()

	status := peer.Status{
		LatestBlockHash:   latestBlock.Hash,
		LatestBlockNumber: latestBlock.Header.Number,
		KnownPeers:        h.State.RetrieveKnownPeers(),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Chain returns the full chain along with its length so a peer can compare
// and adopt it.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	details, err := h.State.RetrieveChainDetails()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, details, http.StatusOK)
}

// AddPeer registers other nodes with this node's peer set. The whole request
// is rejected before any peer is added if the list is empty or any address
// fails to parse.
func (h Handlers) AddPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var np struct {
		Hosts []string `json:"hosts"`
	}
	if err := web.Decode(r, &np); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if len(np.Hosts) == 0 {
		return errs.NewTrusted(errors.New("no peer addresses provided"), http.StatusBadRequest)
	}

	peers := make([]peer.Peer, len(np.Hosts))
	for i, host := range np.Hosts {
		pr, err := peer.ParseHost(host)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("address %q: %w", host, err), http.StatusBadRequest)
		}
		peers[i] = pr
	}

	for _, pr := range peers {
		added := h.State.AddKnownPeer(pr)
		h.Log.Infow("add peer", "traceid", v.TraceID, "host", pr.Host, "added", added)
	}

	resp := struct {
		Status     string      `json:"status"`
		KnownPeers []peer.Peer `json:"known_peers"`
	}{
		Status:     "peer registered",
		KnownPeers: h.State.RetrieveKnownPeers(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Reconcile runs the longest chain consensus algorithm against the known
// peers and reports whether the local chain was replaced.
func (h Handlers) Reconcile(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	replaced, err := h.State.Reconcile()
	if err != nil {
		return err
	}

	latestBlock := h.State.RetrieveLatestBlock()
	h.Log.Infow("reconcile", "traceid", v.TraceID, "replaced", replaced, "height", latestBlock.Header.Number)

	resp := struct {
		Replaced    bool   `json:"replaced"`
		Length      uint64 `json:"length"`
		LatestBlock string `json:"latest_block"`
	}{
		Replaced:    replaced,
		Length:      latestBlock.Header.Number,
		LatestBlock: latestBlock.Hash,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
