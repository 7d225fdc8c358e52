package state

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gridledger/gridledger/foundation/ledger/database"
)

// NodeSummary aggregates the telemetry mined into the chain for one grid
// node.
type NodeSummary struct {
	NodeID      string  `json:"node_id"`
	Blocks      int     `json:"blocks"`
	MeanVoltage float64 `json:"mean_voltage"`
	MinVoltage  float64 `json:"min_voltage"`
	MaxVoltage  float64 `json:"max_voltage"`
	MeanCurrent float64 `json:"mean_current"`
	MeanPower   float64 `json:"mean_power"`
	MaxPower    float64 `json:"max_power"`
}

// QueryPendingLength returns the current length of the pending queue.
func (s *State) QueryPendingLength() int {
	return s.pending.Count()
}

// QueryPending returns a copy of the queued telemetry in submission order.
func (s *State) QueryPending() []database.Record {
	return s.pending.Records()
}

// QueryChain returns a copy of the full chain in order.
func (s *State) QueryChain() ([]database.Block, error) {
	return s.db.AllBlocks()
}

// QueryTelemetrySummary computes per-node aggregate statistics over every
// reading mined into the chain. The genesis block carries no real telemetry
// and is skipped.
func (s *State) QueryTelemetrySummary() ([]NodeSummary, error) {
	blocks, err := s.db.AllBlocks()
	if err != nil {
		return nil, err
	}

	type samples struct {
		blocks  int
		voltage []float64
		current []float64
		power   []float64
	}
	byNode := make(map[string]*samples)

	for i := 1; i < len(blocks); i++ {
		rec := blocks[i].Telemetry

		sm, exists := byNode[rec.NodeID]
		if !exists {
			sm = &samples{}
			byNode[rec.NodeID] = sm
		}

		sm.blocks++
		sm.voltage = append(sm.voltage, rec.Voltage...)
		sm.current = append(sm.current, rec.Current...)
		sm.power = append(sm.power, rec.Power...)
	}

	summaries := make([]NodeSummary, 0, len(byNode))
	for nodeID, sm := range byNode {
		ns := NodeSummary{
			NodeID: nodeID,
			Blocks: sm.blocks,
		}

		if len(sm.voltage) > 0 {
			ns.MeanVoltage = stat.Mean(sm.voltage, nil)
			ns.MinVoltage = floats.Min(sm.voltage)
			ns.MaxVoltage = floats.Max(sm.voltage)
		}
		if len(sm.current) > 0 {
			ns.MeanCurrent = stat.Mean(sm.current, nil)
		}
		if len(sm.power) > 0 {
			ns.MeanPower = stat.Mean(sm.power, nil)
			ns.MaxPower = floats.Max(sm.power)
		}

		summaries = append(summaries, ns)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].NodeID < summaries[j].NodeID
	})

	return summaries, nil
}
