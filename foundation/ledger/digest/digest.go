// Package digest implements the hashing contract every node on the grid
// ledger must reproduce bit for bit. Hashes are the 0x-prefixed hex encoding
// of a SHA-256 digest.
package digest

import (
	"crypto/sha256"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hash returns the 0x-prefixed hex digest for the data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// EmptyHash returns the digest of the empty input. The genesis block carries
// this value as its previous hash since it has no real predecessor.
func EmptyHash() string {
	return Hash(nil)
}

// Target returns 2^(256-difficulty), the exclusive upper bound a block hash
// must stay under to satisfy the proof of work.
func Target(difficulty uint) *big.Int {
	if difficulty > 256 {
		difficulty = 256
	}
	return new(big.Int).Lsh(big.NewInt(1), 256-difficulty)
}

// IsSolved reports whether the hash, read as a 256 bit integer, is strictly
// under the difficulty target.
func IsSolved(difficulty uint, hash string) bool {
	data, err := hexutil.Decode(hash)
	if err != nil || len(data) != sha256.Size {
		return false
	}

	return new(big.Int).SetBytes(data).Cmp(Target(difficulty)) < 0
}
