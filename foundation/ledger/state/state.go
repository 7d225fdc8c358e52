// Package state is the core API for the telemetry ledger and implements all
// the business rules and processing.
package state

import (
	"sync"

	"github.com/gridledger/gridledger/foundation/ledger/database"
	"github.com/gridledger/gridledger/foundation/ledger/genesis"
	"github.com/gridledger/gridledger/foundation/ledger/peer"
	"github.com/gridledger/gridledger/foundation/ledger/pending"
)

// EventHandler defines a function that is called when events occur in the
// processing of mining and reconciling blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and reconciliation.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalReconcile()
}

// =============================================================================

// Config represents the configuration required to start the ledger node.
type Config struct {
	Host       string
	Genesis    genesis.Genesis
	Storage    database.Storage
	KnownPeers *peer.Set
	EvHandler  EventHandler
}

// State manages the telemetry ledger.
type State struct {
	mu sync.Mutex

	host      string
	evHandler EventHandler

	genesis    genesis.Genesis
	db         *database.Database
	pending    *pending.Queue
	knownPeers *peer.Set

	// mineMu serializes mining so only one operation is ever in flight
	// against a given chain tail.
	mineMu sync.Mutex

	Worker Worker
}

// New constructs a new ledger state for node management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the storage for the chain of blocks. This mines the genesis
	// block when the storage is empty.
	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	state := State{
		host:       cfg.Host,
		evHandler:  ev,
		genesis:    cfg.Genesis,
		db:         db,
		pending:    pending.New(),
		knownPeers: cfg.KnownPeers,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	defer s.db.Close()

	// Stop all mining and reconciliation activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
