package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gridledger/gridledger/foundation/ledger/digest"
)

// BlockHeader represents the common information required for each block.
type BlockHeader struct {
	Number        uint64 `json:"number"`          // Position in the chain, 1 for genesis.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	TimeStamp     uint64 `json:"timestamp"`       // Unix time the block was constructed.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
}

// Block binds one telemetry record to a position in the chain. The Hash field
// is only set once mining completes; after a block has been appended to the
// ledger it is treated as immutable.
type Block struct {
	Hash      string      `json:"hash"`
	Header    BlockHeader `json:"header"`
	Telemetry Record      `json:"telemetry"`
}

// POW constructs the next Block after prevBlock and performs the work to find
// a nonce that puts the block hash under the difficulty target. The search is
// unbounded but checks ctx between nonce attempts so a caller can abort it.
func POW(ctx context.Context, difficulty uint, prevBlock Block, telemetry Record, evHandler func(v string, args ...any)) (Block, error) {

	// When mining the genesis block there is no real predecessor, so the
	// previous hash is the digest of the empty input.
	prevBlockHash := digest.EmptyHash()
	if prevBlock.Header.Number > 0 {
		prevBlockHash = prevBlock.Hash
	}

	nb := Block{
		Header: BlockHeader{
			Number:        prevBlock.Header.Number + 1,
			PrevBlockHash: prevBlockHash,
			TimeStamp:     uint64(time.Now().UTC().Unix()),
			Nonce:         0,
		},
		Telemetry: telemetry,
	}

	if err := nb.performPOW(ctx, difficulty, evHandler); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for the block.
// Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, difficulty uint, ev func(v string, args ...any)) error {
	ev("database: performPOW: MINING: blk[%d]: started", b.Header.Number)
	defer ev("database: performPOW: MINING: blk[%d]: completed", b.Header.Number)

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: performPOW: MINING: attempts[%d]", attempts)
		}

		// Did the caller cancel the search.
		if ctx.Err() != nil {
			ev("database: performPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		hash := b.ComputeHash()
		if !digest.IsSolved(difficulty, hash) {
			b.Header.Nonce++
			continue
		}

		ev("database: performPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.Header.PrevBlockHash, hash)
		ev("database: performPOW: MINING: attempts[%d]", attempts)

		b.Hash = hash
		return nil
	}
}

// ComputeHash derives the block hash from the block's current field values.
// The digest input is the concatenation, in this fixed order, of the nonce,
// the canonical telemetry serialization, the previous hash, the block
// timestamp and the block number, all as text. Validation and mining must
// produce identical bytes here or every cross-node hash comparison fails.
func (b Block) ComputeHash() string {
	data := strconv.FormatUint(b.Header.Nonce, 10) +
		b.Telemetry.Canonical() +
		b.Header.PrevBlockHash +
		strconv.FormatUint(b.Header.TimeStamp, 10) +
		strconv.FormatUint(b.Header.Number, 10)

	return digest.Hash([]byte(data))
}

// ValidateBlock checks the block can be appended after prevBlock: the stored
// hash must satisfy the difficulty target, the block number must be the next
// in sequence and the previous hash must link to prevBlock exactly.
func (b Block) ValidateBlock(prevBlock Block, difficulty uint, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Header.Number)

	if !digest.IsSolved(difficulty, b.Hash) {
		return fmt.Errorf("%s invalid block hash for difficulty %d", b.Hash, difficulty)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Header.Number)

	nextNumber := prevBlock.Header.Number + 1
	if b.Header.Number != nextNumber {
		return fmt.Errorf("this block is not the next number, got %d, exp %d", b.Header.Number, nextNumber)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Header.Number)

	if b.Header.PrevBlockHash != prevBlock.Hash {
		return fmt.Errorf("parent block hash doesn't match our known parent, got %s, exp %s", b.Header.PrevBlockHash, prevBlock.Hash)
	}

	return nil
}

// ValidateChain walks the chain from index 1, checking each block against its
// predecessor. The genesis block is skipped since every node mines its own.
// The first failing block aborts the walk.
func ValidateChain(blocks []Block, difficulty uint, evHandler func(v string, args ...any)) error {
	if len(blocks) == 0 {
		return fmt.Errorf("chain is empty")
	}

	// A suffix of a chain passes the adjacency checks below, so anchor the
	// walk: a whole chain always starts at block 1.
	if blocks[0].Header.Number != 1 {
		return fmt.Errorf("chain does not start at the genesis block, got %d", blocks[0].Header.Number)
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], difficulty, evHandler); err != nil {
			return fmt.Errorf("block %d: %w", blocks[i].Header.Number, err)
		}
	}

	return nil
}

// GenesisRecord returns the empty telemetry payload carried by a freshly
// mined genesis block.
func GenesisRecord() Record {
	return Record{
		NodeID:    "genesis",
		Voltage:   []float64{0},
		Current:   []float64{0},
		Power:     []float64{0},
		TimeStamp: uint64(time.Now().UTC().Unix()),
		Metadata:  map[string]any{"type": "genesis_block"},
	}
}
