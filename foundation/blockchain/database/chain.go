package database

import (
	"errors"
	"fmt"
)

// Set of error variables for chain validation.
var (
	ErrEmptyChain     = errors.New("chain has no blocks")
	ErrInvalidGenesis = errors.New("genesis block is not valid")
)

// =============================================================================

// IsGenesisValid checks the block carries the genesis sentinel values.
func IsGenesisValid(block Block) bool {
	return block.Nonce == GenesisNonce &&
		block.PreviousBlockHash == GenesisHash &&
		block.Hash == GenesisHash &&
		len(block.Transactions) == 0
}

// IsChainValid reports whether the entire chain passes validation.
func IsChainValid(chain []Block) bool {
	return ValidateChain(chain, nil) == nil
}

// ValidateChain walks every consecutive pair of blocks checking the linkage
// and the proof of work, then checks the genesis block.
func ValidateChain(chain []Block, ev func(v string, args ...any)) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	if len(chain) == 0 {
		return ErrEmptyChain
	}

	for i := 1; i < len(chain); i++ {
		previous := chain[i-1]
		current := chain[i]

		ev("database: ValidateChain: validate: blk[%d]: check: previous hash does match previous block", current.Index)

		if current.PreviousBlockHash != previous.Hash {
			return fmt.Errorf("block %d previous hash doesn't match previous block, got %s, exp %s", current.Index, current.PreviousBlockHash, previous.Hash)
		}

		ev("database: ValidateChain: validate: blk[%d]: check: block hash has been solved", current.Index)

		hash := HashBlock(current.PreviousBlockHash, current.Payload(), current.Nonce)
		if !IsHashSolved(hash) {
			return fmt.Errorf("block %d hash %s does not solve the puzzle", current.Index, hash)
		}
	}

	ev("database: ValidateChain: validate: check: genesis block")

	if !IsGenesisValid(chain[0]) {
		return ErrInvalidGenesis
	}

	return nil
}

// ValidateNextBlock checks the block can be appended directly after the
// latest block: it must point at the latest block's hash and carry the
// next index.
func ValidateNextBlock(latestBlock Block, block Block) error {
	if block.PreviousBlockHash != latestBlock.Hash {
		return fmt.Errorf("previous block hash doesn't match our latest block, got %s, exp %s", block.PreviousBlockHash, latestBlock.Hash)
	}

	nextIndex := latestBlock.Index + 1
	if block.Index != nextIndex {
		return fmt.Errorf("this block is not the next index, got %d, exp %d", block.Index, nextIndex)
	}

	return nil
}
