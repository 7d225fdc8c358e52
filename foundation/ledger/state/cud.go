package state

import (
	"time"

	"github.com/gridledger/gridledger/foundation/ledger/database"
	"github.com/gridledger/gridledger/foundation/ledger/peer"
)

// AddKnownPeer provides the ability to add a new peer. It reports whether
// the peer was new.
func (s *State) AddKnownPeer(peer peer.Peer) bool {
	return s.knownPeers.Add(peer)
}

// SubmitTelemetry validates the record and buffers it in the pending queue.
// The record is stamped with the acceptance time; no chain state changes
// until a mining operation picks it up.
func (s *State) SubmitTelemetry(record database.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	record.TimeStamp = uint64(time.Now().UTC().Unix())

	n := s.pending.Push(record)
	s.evHandler("state: SubmitTelemetry: node[%s]: pending[%d]", record.NodeID, n)

	return nil
}
