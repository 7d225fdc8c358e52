package peer_test

import (
	"testing"

	"github.com/gridledger/gridledger/foundation/ledger/peer"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []peer.Peer
	}

	tt := []table{
		{
			name:  "basic",
			peers: []peer.Peer{{Host: "host1"}, {Host: "host2"}, {Host: "host3"}},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewSet()

			for _, peer := range tst.peers {
				ps.Add(peer)
			}

			peers := ps.Copy("")
			if len(peers) != len(tst.peers) {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers))
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			peers = ps.Copy("host2")
			if len(peers) != len(tst.peers)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers)-1)
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			if added := ps.Add(tst.peers[0]); added {
				t.Fatalf("Test %s:\tShould not report an existing peer as new.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_ParseHost(t *testing.T) {
	type table struct {
		name    string
		address string
		host    string
		fails   bool
	}

	tt := []table{
		{name: "bare", address: "0.0.0.0:9080", host: "0.0.0.0:9080"},
		{name: "scheme", address: "http://0.0.0.0:9080", host: "0.0.0.0:9080"},
		{name: "trailing path", address: "http://node1:9080/v1/node", host: "node1:9080"},
		{name: "whitespace", address: "  node1:9080 ", host: "node1:9080"},
		{name: "empty", address: "", fails: true},
		{name: "blank", address: "   ", fails: true},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			pr, err := peer.ParseHost(tst.address)

			if tst.fails {
				if err == nil {
					t.Fatalf("Test %s:\tShould reject the address.", tst.name)
				}
				return
			}

			if err != nil {
				t.Fatalf("Test %s:\tShould parse the address: %v", tst.name, err)
			}

			if pr.Host != tst.host {
				t.Logf("Test %s:\tgot: %s", tst.name, pr.Host)
				t.Logf("Test %s:\texp: %s", tst.name, tst.host)
				t.Fatalf("Test %s:\tShould normalize to host:port.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}
