package database

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// difficulty is the number of leading zero hex characters a block hash must
// have. It is fixed for the life of the chain.
const difficulty = 4

// =============================================================================

// BlockPayload represents the block data covered by the hash. The field
// order is part of the hash, don't change it.
type BlockPayload struct {
	Index        uint64 `json:"index"`
	Transactions []Tx   `json:"transactions"`
}

// NewBlockPayload constructs the payload for the specified block index. An
// empty set of transactions is always represented as an empty list.
func NewBlockPayload(index uint64, trans []Tx) BlockPayload {
	if trans == nil {
		trans = []Tx{}
	}

	return BlockPayload{
		Index:        index,
		Transactions: trans,
	}
}

// Marshal produces the canonical form of the payload used for hashing.
func (bp BlockPayload) Marshal() ([]byte, error) {
	if bp.Transactions == nil {
		bp.Transactions = []Tx{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(bp); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// =============================================================================

// HashBlock returns the lowercase hex SHA-256 of the previous hash, the
// canonical payload and the nonce concatenated together.
func HashBlock(previousBlockHash string, payload BlockPayload, nonce uint64) string {
	data, err := payload.Marshal()
	if err != nil {
		return ""
	}

	return hashBlock(previousBlockHash, data, nonce)
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of 0's.
func IsHashSolved(hash string) bool {
	const match = "0000"

	if len(hash) < difficulty {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}

// POW performs the work of mining to find the smallest nonce that solves the
// hash puzzle for the payload. The search starts at zero and moves by one,
// so the same inputs always produce the same nonce. The search can be
// cancelled through the context.
func POW(ctx context.Context, previousBlockHash string, payload BlockPayload, ev func(v string, args ...any)) (uint64, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("database: POW: MINING: started: blk[%d]: trans[%d]", payload.Index, len(payload.Transactions))
	defer ev("database: POW: MINING: completed: blk[%d]", payload.Index)

	// The payload doesn't change during the search so it's only
	// serialized once.
	data, err := payload.Marshal()
	if err != nil {
		return 0, err
	}

	var nonce uint64
	for {
		if nonce%100_000 == 0 {
			if nonce > 0 {
				ev("database: POW: MINING: attempts[%d]", nonce)
			}

			// Did we get cancelled trying to solve the problem.
			if err := ctx.Err(); err != nil {
				ev("database: POW: MINING: CANCELLED")
				return 0, err
			}
		}

		hash := hashBlock(previousBlockHash, data, nonce)
		if IsHashSolved(hash) {
			ev("database: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", previousBlockHash, hash, nonce)
			return nonce, nil
		}

		nonce++
	}
}

// =============================================================================

// hashBlock hashes the already serialized payload.
func hashBlock(previousBlockHash string, payload []byte, nonce uint64) string {
	h := sha256.New()
	h.Write([]byte(previousBlockHash))
	h.Write(payload)
	h.Write([]byte(strconv.FormatUint(nonce, 10)))

	return hex.EncodeToString(h.Sum(nil))
}
