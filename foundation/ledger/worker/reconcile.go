package worker

// reconcileOperations handles reconciling the local chain against the
// network, both on the periodic ticker and on demand.
func (w *Worker) reconcileOperations() {
	w.evHandler("worker: reconcileOperations: G started")
	defer w.evHandler("worker: reconcileOperations: G completed")

	for {
		select {
		case <-w.reconcile:
			if !w.isShutdown() {
				w.runReconcileOperation()
			}
		case <-w.reconcileTicker.C:
			if !w.isShutdown() {
				w.runReconcileOperation()
			}
		case <-w.shut:
			w.evHandler("worker: reconcileOperations: received shut signal")
			return
		}
	}
}

// runReconcileOperation runs the longest-valid-chain consensus procedure.
func (w *Worker) runReconcileOperation() {
	w.evHandler("worker: runReconcileOperation: started")
	defer w.evHandler("worker: runReconcileOperation: completed")

	replaced, err := w.state.Reconcile()
	if err != nil {
		w.evHandler("worker: runReconcileOperation: ERROR: %s", err)
		return
	}

	if replaced {
		w.evHandler("worker: runReconcileOperation: local chain replaced by a longer valid chain")
	}
}
