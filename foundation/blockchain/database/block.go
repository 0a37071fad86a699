package database

import (
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/validate"
)

// Genesis block sentinel values. The genesis block is not mined.
const (
	GenesisIndex = 1
	GenesisNonce = 100
	GenesisHash  = "0"
)

// =============================================================================

// Block represents a group of transactions batched together and linked to
// the previous block in the chain by hash.
type Block struct {
	Index             uint64 `json:"index"`             // Position in the chain, genesis is 1.
	TimeStamp         int64  `json:"timestamp"`         // Unix time in milliseconds when the block was created.
	Transactions      []Tx   `json:"transactions"`      // Transactions captured from the pending pool.
	Nonce             uint64 `json:"nonce"`             // Value identified to solve the hash solution.
	PreviousBlockHash string `json:"previousBlockHash"` // Hash of the previous block in the chain.
	Hash              string `json:"hash"`              // Hash of this block.
}

// Genesis constructs the first block of every chain.
func Genesis() Block {
	return Block{
		Index:             GenesisIndex,
		TimeStamp:         time.Now().UnixMilli(),
		Transactions:      []Tx{},
		Nonce:             GenesisNonce,
		PreviousBlockHash: GenesisHash,
		Hash:              GenesisHash,
	}
}

// NewBlock constructs a block from a solved proof of work. The transactions
// are copied so the block never shares memory with the pending pool.
func NewBlock(payload BlockPayload, nonce uint64, previousBlockHash string, hash string) Block {
	trans := make([]Tx, len(payload.Transactions))
	copy(trans, payload.Transactions)

	return Block{
		Index:             payload.Index,
		TimeStamp:         time.Now().UnixMilli(),
		Transactions:      trans,
		Nonce:             nonce,
		PreviousBlockHash: previousBlockHash,
		Hash:              hash,
	}
}

// Payload returns the portion of the block that is covered by the hash.
func (b Block) Payload() BlockPayload {
	return NewBlockPayload(b.Index, b.Transactions)
}

// =============================================================================

// BlockData is the block record received from a peer. Every field is required
// so a partially filled block is never constructed.
type BlockData struct {
	Index             uint64  `json:"index" validate:"required"`
	TimeStamp         int64   `json:"timestamp" validate:"required"`
	Transactions      []NewTx `json:"transactions" validate:"required,dive"`
	Nonce             *uint64 `json:"nonce" validate:"required"`
	PreviousBlockHash string  `json:"previousBlockHash" validate:"required"`
	Hash              string  `json:"hash" validate:"required"`
}

// NewBlockData converts a block into the record form exchanged with peers.
func NewBlockData(block Block) BlockData {
	trans := make([]NewTx, len(block.Transactions))
	for i, tx := range block.Transactions {
		trans[i] = NewTxData(tx)
	}

	nonce := block.Nonce

	return BlockData{
		Index:             block.Index,
		TimeStamp:         block.TimeStamp,
		Transactions:      trans,
		Nonce:             &nonce,
		PreviousBlockHash: block.PreviousBlockHash,
		Hash:              block.Hash,
	}
}

// ToBlock validates the record and converts it into a block.
func ToBlock(blockData BlockData) (Block, error) {
	if err := validate.Check(blockData); err != nil {
		return Block{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	trans := make([]Tx, len(blockData.Transactions))
	for i, ntx := range blockData.Transactions {

		// A mined transaction is part of the block hash, so its id can't
		// be generated on arrival.
		if ntx.TransactionID == "" {
			return Block{}, fmt.Errorf("%w: transactions[%d]: transactionID is a required field", ErrInvalidInput, i)
		}

		tx, err := ToTx(ntx)
		if err != nil {
			return Block{}, err
		}
		trans[i] = tx
	}

	block := Block{
		Index:             blockData.Index,
		TimeStamp:         blockData.TimeStamp,
		Transactions:      trans,
		Nonce:             *blockData.Nonce,
		PreviousBlockHash: blockData.PreviousBlockHash,
		Hash:              blockData.Hash,
	}

	return block, nil
}

// ToBlocks converts a chain of records into blocks, failing on the first
// record that is not well formed.
func ToBlocks(blockData []BlockData) ([]Block, error) {
	blocks := make([]Block, len(blockData))
	for i, bd := range blockData {
		block, err := ToBlock(bd)
		if err != nil {
			return nil, fmt.Errorf("block[%d]: %w", i, err)
		}
		blocks[i] = block
	}

	return blocks, nil
}
