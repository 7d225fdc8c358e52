package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridledger/gridledger/foundation/ledger/database"
)

// ErrEmptyQueue is returned when a mining operation is requested and there is
// no pending telemetry to mine.
var ErrEmptyQueue = errors.New("no pending telemetry to mine")

// =============================================================================

// MineNext removes one record from the pending queue, builds the next block
// against a snapshot of the chain tail, performs the proof of work and then
// appends the block through the validation gate. Only one mining operation is
// ever in flight; the search can be cancelled through ctx between nonce
// attempts.
func (s *State) MineNext(ctx context.Context) (database.Block, error) {
	s.mineMu.Lock()
	defer s.mineMu.Unlock()

	record, ok := s.pending.PopNewest()
	if !ok {
		return database.Block{}, ErrEmptyQueue
	}

	s.evHandler("state: MineNext: MINING: node[%s]: perform POW", record.NodeID)

	// The record goes back on the queue if the block doesn't make it onto
	// the chain, so a cancelled or rejected attempt can be retried against
	// a fresh tail snapshot.
	requeue := func() {
		s.pending.Push(record)
		s.evHandler("state: MineNext: MINING: node[%s]: record returned to pending queue", record.NodeID)
	}

	// The tail snapshot taken here is what the new block links to. If the
	// chain moves underneath us the append below rejects the block.
	block, err := database.POW(ctx, s.genesis.Difficulty, s.RetrieveLatestBlock(), record, s.evHandler)
	if err != nil {
		requeue()
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		requeue()
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNext: MINING: validate and append block")

	if err := s.validateAppendBlock(block); err != nil {
		requeue()
		return database.Block{}, err
	}

	return block, nil
}

// validateAppendBlock is the single atomic check-and-append. The block is
// validated against the current tail under the state lock; a rejected block
// is discarded without mutating the chain.
func (s *State) validateAppendBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := block.ValidateBlock(s.db.LatestBlock(), s.genesis.Difficulty, s.evHandler); err != nil {
		return fmt.Errorf("block rejected: %w", err)
	}

	if err := s.db.Write(block); err != nil {
		return err
	}
	s.db.UpdateLatestBlock(block)

	s.blockEvent(block)

	return nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	s.evHandler(`viewer: block: {"hash":%q,"number":%d,"node_id":%q}`, block.Hash, block.Header.Number, block.Telemetry.NodeID)
}
