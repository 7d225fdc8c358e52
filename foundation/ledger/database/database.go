// Package database handles the lower level support for maintaining the
// telemetry ledger in memory behind a storage seam.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gridledger/gridledger/foundation/ledger/genesis"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the chain of blocks.
type Storage interface {
	Write(block Block) error
	GetBlock(num uint64) (Block, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// =============================================================================

// Database manages the chain of telemetry blocks. The chain is append-only;
// wholesale replacement is reserved for the consensus procedure.
type Database struct {
	mu sync.RWMutex

	genesis     genesis.Genesis
	latestBlock Block
	storage     Storage
}

// New constructs a new database over the provided storage. Any blocks already
// in storage are validated and loaded; an empty storage gets a freshly mined
// genesis block so the chain is never empty.
func New(gen genesis.Genesis, storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	db := Database{
		genesis: gen,
		storage: storage,
	}

	var latestBlock Block

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		if latestBlock.Header.Number > 0 {
			if err := block.ValidateBlock(latestBlock, gen.Difficulty, evHandler); err != nil {
				return nil, fmt.Errorf("loading block %d: %w", block.Header.Number, err)
			}
		}

		latestBlock = block
	}

	// A brand new ledger starts by mining its own genesis block.
	if latestBlock.Header.Number == 0 {
		genesisBlock, err := POW(context.Background(), gen.Difficulty, Block{}, GenesisRecord(), evHandler)
		if err != nil {
			return nil, fmt.Errorf("mining genesis block: %w", err)
		}

		if err := db.storage.Write(genesisBlock); err != nil {
			return nil, err
		}

		latestBlock = genesisBlock
		evHandler("database: New: genesis block mined: hash[%s]", genesisBlock.Hash)
	}

	db.latestBlock = latestBlock

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() {
	db.storage.Close()
}

// Write adds a new block to the chain.
func (db *Database) Write(block Block) error {
	return db.storage.Write(block)
}

// UpdateLatestBlock provides safe access to update the latest block.
func (db *Database) UpdateLatestBlock(block Block) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.latestBlock = block
}

// LatestBlock returns the current tail of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// Height returns the number of blocks in the chain.
func (db *Database) Height() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock.Header.Number
}

// GetBlock returns the contents of the specified block by number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	return db.storage.GetBlock(num)
}

// AllBlocks returns a copy of the full chain in order.
func (db *Database) AllBlocks() ([]Block, error) {
	var blocks []Block

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// ReplaceChain swaps the stored chain for the provided one. This is the only
// path that may shrink or rewrite storage and it exists solely for the
// consensus procedure, which validates the candidate first. The swap is
// all-or-nothing: a failure leaves the previous chain in place.
func (db *Database) ReplaceChain(blocks []Block) error {
	if len(blocks) == 0 {
		return errors.New("refusing to replace chain with an empty one")
	}

	// Storage only accepts blocks in chain order from number 1, so a chain
	// that isn't contiguous from genesis must be rejected before any of the
	// current blocks are touched.
	for i, block := range blocks {
		if block.Header.Number != uint64(i)+1 {
			return fmt.Errorf("replacement chain is not contiguous from genesis: block %d at position %d", block.Header.Number, i)
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	// Keep the current blocks so a failed write can be rolled back.
	prevBlocks, err := db.AllBlocks()
	if err != nil {
		return err
	}

	if err := db.storage.Reset(); err != nil {
		return err
	}

	for _, block := range blocks {
		if err := db.storage.Write(block); err != nil {

			// Put the previous chain back before reporting the failure.
			db.storage.Reset()
			for _, prev := range prevBlocks {
				db.storage.Write(prev)
			}

			return err
		}
	}

	db.latestBlock = blocks[len(blocks)-1]

	return nil
}
