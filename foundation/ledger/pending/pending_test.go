package pending_test

import (
	"testing"

	"github.com/gridledger/gridledger/foundation/ledger/database"
	"github.com/gridledger/gridledger/foundation/ledger/pending"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_LIFO(t *testing.T) {
	type table struct {
		name    string
		nodeIDs []string
		popped  []string
	}

	tt := []table{
		{
			name:    "basic",
			nodeIDs: []string{"node_1", "node_2", "node_3"},
			popped:  []string{"node_3", "node_2", "node_1"},
		},
	}

	t.Log("Given the need to buffer telemetry in last in first out order.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen pushing %d records.", testID, len(tst.nodeIDs))
			{
				f := func(t *testing.T) {
					q := pending.New()

					for i, nodeID := range tst.nodeIDs {
						count := q.Push(database.Record{NodeID: nodeID})
						if count != i+1 {
							t.Fatalf("\t%s\tTest %d:\tShould report %d buffered records, got %d.", failed, testID, i+1, count)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould report the buffered count on push.", success, testID)

					for _, exp := range tst.popped {
						record, exists := q.PopNewest()
						if !exists {
							t.Fatalf("\t%s\tTest %d:\tShould pop a record while the queue is not empty.", failed, testID)
						}
						if record.NodeID != exp {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, record.NodeID)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp)
							t.Fatalf("\t%s\tTest %d:\tShould pop the newest record first.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould pop records newest first.", success, testID)

					if _, exists := q.PopNewest(); exists {
						t.Fatalf("\t%s\tTest %d:\tShould report empty after the last pop.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould report empty after the last pop.", success, testID)

					if q.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould have a zero count once drained.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould have a zero count once drained.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_Truncate(t *testing.T) {
	t.Log("Given the need to drop all buffered records at once.")
	{
		t.Logf("\tTest 0:\tWhen truncating a populated queue.")
		{
			q := pending.New()
			q.Push(database.Record{NodeID: "node_1"})
			q.Push(database.Record{NodeID: "node_2"})

			q.Truncate()

			if q.Count() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould have a zero count after truncate.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have a zero count after truncate.", success)
		}
	}
}
