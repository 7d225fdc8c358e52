package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gridledger/gridledger/foundation/ledger/database"
	"github.com/gridledger/gridledger/foundation/ledger/peer"
)

const baseURL = "http://%s/v1/node"

// ChainDetails is the payload exchanged between nodes during reconciliation:
// the full chain plus its reported length. The encoding must round-trip
// losslessly so a decoded chain re-validates identically to the source.
type ChainDetails struct {
	Length int              `json:"length"`
	Chain  []database.Block `json:"chain"`
}

// RetrieveChainDetails returns the local chain in the reconciliation wire
// format.
func (s *State) RetrieveChainDetails() (ChainDetails, error) {
	blocks, err := s.db.AllBlocks()
	if err != nil {
		return ChainDetails{}, err
	}

	return ChainDetails{
		Length: len(blocks),
		Chain:  blocks,
	}, nil
}

// NetRequestPeerStatus asks a peer for its latest block and peer list.
func (s *State) NetRequestPeerStatus(pr peer.Peer) (peer.Status, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.Status
	if err := send(http.MethodGet, url, nil, &ps); err != nil {
		return peer.Status{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: latest-blknum[%d]", pr.Host, ps.LatestBlockNumber)

	return ps, nil
}

// NetRequestPeerChain asks a peer for its full chain and reported length.
func (s *State) NetRequestPeerChain(pr peer.Peer) (ChainDetails, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/chain/list", fmt.Sprintf(baseURL, pr.Host))

	var details ChainDetails
	if err := send(http.MethodGet, url, nil, &details); err != nil {
		return ChainDetails{}, err
	}

	s.evHandler("state: NetRequestPeerChain: peer-node[%s]: length[%d]", pr.Host, details.Length)

	return details, nil
}

// Reconcile queries every known peer for its chain and adopts the longest one
// that independently validates end to end. Each peer query is best-effort; a
// fetch failure skips that peer's chain and length together. It reports
// whether the local chain was replaced. The local chain is never shortened.
func (s *State) Reconcile() (bool, error) {
	s.evHandler("state: Reconcile: started")
	defer s.evHandler("state: Reconcile: completed")

	bestLength := int(s.db.Height())
	var bestChain []database.Block

	for _, pr := range s.RetrieveKnownPeers() {
		details, err := s.NetRequestPeerChain(pr)
		if err != nil {
			s.evHandler("state: Reconcile: peer[%s]: unreachable, skipped: %s", pr.Host, err)
			continue
		}

		if details.Length != len(details.Chain) {
			s.evHandler("state: Reconcile: peer[%s]: reported length %d but sent %d blocks, skipped", pr.Host, details.Length, len(details.Chain))
			continue
		}

		// A candidate must be strictly longer than the best chain seen so
		// far AND fully valid.
		if details.Length <= bestLength {
			continue
		}
		if err := database.ValidateChain(details.Chain, s.genesis.Difficulty, s.evHandler); err != nil {
			s.evHandler("state: Reconcile: peer[%s]: invalid chain, discarded: %s", pr.Host, err)
			continue
		}

		bestLength = details.Length
		bestChain = details.Chain
	}

	if bestChain == nil {
		s.evHandler("state: Reconcile: no replacement, local chain is the longest valid")
		return false, nil
	}

	// Stop any in-flight mining before the chain swap. The mining goroutine
	// won't start a new operation until done is called.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer done()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The tail may have moved while we were validating candidates; never
	// adopt a chain that is no longer strictly longer than ours.
	if uint64(len(bestChain)) <= s.db.Height() {
		s.evHandler("state: Reconcile: candidate no longer ahead of local chain, kept ours")
		return false, nil
	}

	if err := s.db.ReplaceChain(bestChain); err != nil {
		return false, err
	}

	s.evHandler("state: Reconcile: chain replaced: length[%d]", len(bestChain))

	return true, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(method string, url string, dataSend any, dataRecv any) error {
	var req *http.Request

	switch {
	case dataSend != nil:
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		req, err = http.NewRequest(method, url, bytes.NewReader(data))
		if err != nil {
			return err
		}

	default:
		var err error
		req, err = http.NewRequest(method, url, nil)
		if err != nil {
			return err
		}
	}

	var client http.Client
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
