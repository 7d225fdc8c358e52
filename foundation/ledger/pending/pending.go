// Package pending maintains the queue of telemetry records waiting to be
// mined into blocks.
package pending

import (
	"sync"

	"github.com/gridledger/gridledger/foundation/ledger/database"
)

// Queue represents the buffered telemetry submissions for a node. Removal
// order is last-in-first-out, so callers must not assume submission order is
// mining order.
type Queue struct {
	mu      sync.Mutex
	records []database.Record
}

// New constructs a queue for buffering telemetry records.
func New() *Queue {
	return &Queue{}
}

// Push appends a record to the queue.
func (q *Queue) Push(record database.Record) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.records = append(q.records, record)

	return len(q.records)
}

// PopNewest removes and returns the most recently pushed record. The second
// return value reports whether a record was available.
func (q *Queue) PopNewest() (database.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.records) == 0 {
		return database.Record{}, false
	}

	record := q.records[len(q.records)-1]
	q.records = q.records[:len(q.records)-1]

	return record, true
}

// Records returns a copy of the buffered records in submission order.
func (q *Queue) Records() []database.Record {
	q.mu.Lock()
	defer q.mu.Unlock()

	records := make([]database.Record, len(q.records))
	copy(records, q.records)

	return records
}

// Count returns the current number of buffered records.
func (q *Queue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.records)
}

// Truncate clears all buffered records.
func (q *Queue) Truncate() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.records = nil
}
