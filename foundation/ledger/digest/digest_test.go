package digest_test

import (
	"strings"
	"testing"

	"github.com/gridledger/gridledger/foundation/ledger/digest"
)

func Test_Hash(t *testing.T) {
	// SHA-256 of the empty input is a fixed, well known value.
	const emptySHA256 = "0xe3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	if got := digest.EmptyHash(); got != emptySHA256 {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", emptySHA256)
		t.Fatal("Should hash the empty input to the known digest.")
	}

	if digest.Hash([]byte("a")) == digest.Hash([]byte("b")) {
		t.Fatal("Should hash different inputs to different digests.")
	}

	if !strings.HasPrefix(digest.Hash([]byte("a")), "0x") {
		t.Fatal("Should prefix every digest with 0x.")
	}
}

func Test_IsSolved(t *testing.T) {
	type table struct {
		name       string
		difficulty uint
		hash       string
		solved     bool
	}

	low := "0x" + strings.Repeat("0", 63) + "1"
	high := "0x" + strings.Repeat("f", 64)

	tt := []table{
		{name: "low value easy target", difficulty: 8, hash: low, solved: true},
		{name: "high value easy target", difficulty: 8, hash: high, solved: false},
		{name: "low value hardest target", difficulty: 256, hash: low, solved: false},
		{name: "zero difficulty", difficulty: 0, hash: high, solved: true},
		{name: "not hex", difficulty: 8, hash: "not-a-hash", solved: false},
		{name: "wrong length", difficulty: 8, hash: "0x01", solved: false},
		{name: "empty", difficulty: 8, hash: "", solved: false},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			if got := digest.IsSolved(tst.difficulty, tst.hash); got != tst.solved {
				t.Fatalf("Test %s:\tgot %t, exp %t.", tst.name, got, tst.solved)
			}
		}

		t.Run(tst.name, f)
	}
}
