// Package worker implements mining, peer updates, and chain reconciliation
// for the telemetry ledger.
package worker

import (
	"sync"
	"time"

	"github.com/gridledger/gridledger/foundation/ledger/state"
)

// peerUpdateInterval represents the interval of finding new peer nodes.
const peerUpdateInterval = time.Minute

// reconcileInterval represents the interval of reconciling the local chain
// against the network.
const reconcileInterval = time.Minute

// =============================================================================

// Worker manages the background workflows for the ledger.
type Worker struct {
	state           *state.State
	wg              sync.WaitGroup
	ticker          time.Ticker
	reconcileTicker time.Ticker
	shut            chan struct{}
	startMining     chan bool
	cancelMining    chan chan struct{}
	reconcile       chan bool
	evHandler       state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) {
	w := Worker{
		state:           st,
		ticker:          *time.NewTicker(peerUpdateInterval),
		reconcileTicker: *time.NewTicker(reconcileInterval),
		shut:            make(chan struct{}),
		startMining:     make(chan bool, 1),
		cancelMining:    make(chan chan struct{}, 1),
		reconcile:       make(chan bool, 1),
		evHandler:       evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.peerOperations,
		w.miningOperations,
		w.reconcileOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop tickers")
	w.ticker.Stop()
	w.reconcileTicker.Stop()

	w.evHandler("worker: shutdown: signal cancel mining")
	done := w.SignalCancelMining()
	done()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately. That G will not return from the function until done
// is called. This allows the caller to complete any state changes before a
// new mining operation takes place.
func (w *Worker) SignalCancelMining() (done func()) {
	wait := make(chan struct{})

	select {
	case w.cancelMining <- wait:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")

	return func() { close(wait) }
}

// SignalReconcile queues up a reconciliation sweep against the known peers.
func (w *Worker) SignalReconcile() {
	select {
	case w.reconcile <- true:
	default:
	}
	w.evHandler("worker: SignalReconcile: reconcile signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
