package database_test

import (
	"context"
	"strings"
	"testing"

	"github.com/gridledger/gridledger/foundation/ledger/database"
	"github.com/gridledger/gridledger/foundation/ledger/database/storage/memory"
	"github.com/gridledger/gridledger/foundation/ledger/digest"
	"github.com/gridledger/gridledger/foundation/ledger/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Low difficulty so mining inside the tests completes quickly.
const testDifficulty = 8

func nop(v string, args ...any) {}

// =============================================================================

func Test_Mining(t *testing.T) {
	type table struct {
		name    string
		records []database.Record
	}

	tt := []table{
		{
			name: "basic",
			records: []database.Record{
				{
					NodeID:    "node_1",
					Voltage:   []float64{230.1, 229.8, 230.4},
					Current:   []float64{10.2, 10.1, 10.3},
					Power:     []float64{2347, 2320.9, 2373.1},
					TimeStamp: 1735700000,
					Metadata:  map[string]any{"location": "substation_a", "sampling_rate": 50.0},
				},
				{
					NodeID:    "node_2",
					Voltage:   []float64{231.5, 230.9, 231.2},
					Current:   []float64{8.7, 8.9, 8.8},
					Power:     []float64{2014.1, 2055, 2034.6},
					TimeStamp: 1735700060,
				},
			},
		},
	}

	t.Log("Given the need to mine telemetry records into the chain.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of records.", testID)
			{
				f := func(t *testing.T) {
					strg, err := memory.New()
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to create storage: %v", failed, testID, err)
					}

					db, err := database.New(genesis.Genesis{ChainID: 1, Difficulty: testDifficulty}, strg, nop)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to open database.", success, testID)

					gen := db.LatestBlock()
					if gen.Header.Number != 1 {
						t.Fatalf("\t%s\tTest %d:\tShould mine a genesis block at number 1, got %d.", failed, testID, gen.Header.Number)
					}
					t.Logf("\t%s\tTest %d:\tShould mine a genesis block at number 1.", success, testID)

					if gen.Header.PrevBlockHash != digest.EmptyHash() {
						t.Fatalf("\t%s\tTest %d:\tShould link genesis to the empty hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould link genesis to the empty hash.", success, testID)

					for _, record := range tst.records {
						prev := db.LatestBlock()

						block, err := database.POW(context.Background(), testDifficulty, prev, record, nop)
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to mine a block: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould be able to mine a block.", success, testID)

						if block.Header.Number != prev.Header.Number+1 {
							t.Fatalf("\t%s\tTest %d:\tShould number the block after its parent, got %d.", failed, testID, block.Header.Number)
						}

						if !digest.IsSolved(testDifficulty, block.Hash) {
							t.Fatalf("\t%s\tTest %d:\tShould produce a hash under the difficulty target.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould produce a hash under the difficulty target.", success, testID)

						if err := block.ValidateBlock(prev, testDifficulty, nop); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to validate the block: %v", failed, testID, err)
						}

						if err := db.Write(block); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to write the block: %v", failed, testID, err)
						}
						db.UpdateLatestBlock(block)
						t.Logf("\t%s\tTest %d:\tShould be able to write the block.", success, testID)
					}

					blocks, err := db.AllBlocks()
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to read all blocks: %v", failed, testID, err)
					}

					if len(blocks) != len(tst.records)+1 {
						t.Fatalf("\t%s\tTest %d:\tShould have %d blocks, got %d.", failed, testID, len(tst.records)+1, len(blocks))
					}
					t.Logf("\t%s\tTest %d:\tShould have %d blocks.", success, testID, len(tst.records)+1)

					if err := database.ValidateChain(blocks, testDifficulty, nop); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould have a valid chain: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould have a valid chain.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_TamperDetection(t *testing.T) {
	t.Log("Given the need to detect a modified telemetry record.")
	{
		t.Logf("\tTest 0:\tWhen a mined block's telemetry is changed after the fact.")
		{
			record := database.Record{
				NodeID:    "node_1",
				Voltage:   []float64{230.1, 229.8, 230.4},
				Current:   []float64{10.2, 10.1, 10.3},
				Power:     []float64{2347, 2320.9, 2373.1},
				TimeStamp: 1735700000,
			}

			block, err := database.POW(context.Background(), testDifficulty, database.Block{}, record, nop)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine a block.", success)

			if block.ComputeHash() != block.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould recompute the stored hash for an untouched block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould recompute the stored hash for an untouched block.", success)

			block.Telemetry.Voltage[0] = 999.9

			if block.ComputeHash() == block.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould compute a different hash for tampered telemetry.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould compute a different hash for tampered telemetry.", success)
		}
	}
}

func Test_CanonicalSerialization(t *testing.T) {
	t.Log("Given the need for a stable record serialization.")
	{
		t.Logf("\tTest 0:\tWhen serializing the same record twice.")
		{
			record := database.Record{
				NodeID:    "node_7",
				Voltage:   []float64{230.5},
				Current:   []float64{10},
				Power:     []float64{2305},
				TimeStamp: 1735700000,
				Metadata:  map[string]any{"b_key": 2.0, "a_key": "1", "c_key": true},
			}

			exp := "{timestamp:1735700000,voltage:[230.5],current:[10],power:[2305],node_id:node_7,metadata:{a_key:1,b_key:2,c_key:true}}"

			if got := record.Canonical(); got != exp {
				t.Logf("\t%s\tTest 0:\tgot: %s", failed, got)
				t.Logf("\t%s\tTest 0:\texp: %s", failed, exp)
				t.Fatalf("\t%s\tTest 0:\tShould produce the canonical form.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce the canonical form.", success)

			if record.Canonical() != record.Canonical() {
				t.Fatalf("\t%s\tTest 0:\tShould be deterministic across calls.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be deterministic across calls.", success)
		}
	}
}

func Test_MetadataScalars(t *testing.T) {
	t.Log("Given the need to accept scalar metadata only.")
	{
		t.Logf("\tTest 0:\tWhen validating records with different metadata values.")
		{
			record := database.Record{
				NodeID:   "node_1",
				Voltage:  []float64{230},
				Current:  []float64{10},
				Power:    []float64{2300},
				Metadata: map[string]any{"sampling_rate": 50.0, "location": "substation_a", "calibrated": true},
			}

			if err := record.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept string, number and boolean values: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept string, number and boolean values.", success)

			record.Metadata = map[string]any{"tags": []any{"a", "b"}}

			err := record.Validate()
			if err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject non-scalar metadata values.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject non-scalar metadata values.", success)

			if !strings.Contains(err.Error(), "tags") {
				t.Fatalf("\t%s\tTest 0:\tShould name the offending key in the error.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould name the offending key in the error.", success)
		}
	}
}

func Test_ReplaceChainAllOrNothing(t *testing.T) {
	t.Log("Given the need to keep the chain intact when a replacement fails.")
	{
		t.Logf("\tTest 0:\tWhen the candidate chain does not start at genesis.")
		{
			strg, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create storage: %v", failed, err)
			}

			db, err := database.New(genesis.Genesis{ChainID: 1, Difficulty: testDifficulty}, strg, nop)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to open database: %v", failed, err)
			}
			before := db.LatestBlock()

			// Build a valid 3-block chain and offer only its tail, the way
			// a malicious or buggy peer could.
			var chain []database.Block
			prev := database.Block{}
			for i := 0; i < 3; i++ {
				block, err := database.POW(context.Background(), testDifficulty, prev, database.GenesisRecord(), nop)
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to mine a block: %v", failed, err)
				}
				chain = append(chain, block)
				prev = block
			}
			suffix := chain[1:]

			if err := database.ValidateChain(suffix, testDifficulty, nop); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould not validate a chain missing its genesis block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not validate a chain missing its genesis block.", success)

			if err := db.ReplaceChain(suffix); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould refuse to adopt a chain missing its genesis block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould refuse to adopt a chain missing its genesis block.", success)

			blocks, err := db.AllBlocks()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read all blocks: %v", failed, err)
			}
			if len(blocks) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould still hold the original chain, got %d blocks.", failed, len(blocks))
			}
			t.Logf("\t%s\tTest 0:\tShould still hold the original chain.", success)

			if db.LatestBlock().Hash != before.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould keep the original tail.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the original tail.", success)

			if err := db.ReplaceChain(chain); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould adopt the full valid chain: %v", failed, err)
			}
			if db.Height() != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould report height 3 after adoption, got %d.", failed, db.Height())
			}
			t.Logf("\t%s\tTest 0:\tShould adopt the full valid chain.", success)
		}
	}
}

func Test_RecordValidate(t *testing.T) {
	type table struct {
		name    string
		record  database.Record
		missing []string
	}

	tt := []table{
		{
			name: "complete",
			record: database.Record{
				NodeID:  "node_1",
				Voltage: []float64{230},
				Current: []float64{10},
				Power:   []float64{2300},
			},
		},
		{
			name:    "empty",
			record:  database.Record{},
			missing: []string{"voltage_vector", "current_vector", "power_vector", "node_id"},
		},
		{
			name: "no vectors",
			record: database.Record{
				NodeID: "node_1",
			},
			missing: []string{"voltage_vector", "current_vector", "power_vector"},
		},
	}

	t.Log("Given the need to validate telemetry records.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen checking record %q.", testID, tst.name)
			{
				f := func(t *testing.T) {
					err := tst.record.Validate()

					if len(tst.missing) == 0 {
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould accept a complete record: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould accept a complete record.", success, testID)
						return
					}

					if err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould reject an incomplete record.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reject an incomplete record.", success, testID)

					for _, name := range tst.missing {
						if !strings.Contains(err.Error(), name) {
							t.Fatalf("\t%s\tTest %d:\tShould name missing field %q in the error.", failed, testID, name)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould name every missing field in the error.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
