package database

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Mining reward information. The reward is issued as a regular transaction
// from the reward sender to the node that mined the block.
const (
	RewardSender = "00"
	RewardAmount = 12.5
)

// =============================================================================

// PublicKeyToAddress converts the public key of a miner into the address
// used as the recipient of mining rewards.
func PublicKeyToAddress(pk ecdsa.PublicKey) string {
	return strings.ToLower(strings.TrimPrefix(crypto.PubkeyToAddress(pk).Hex(), "0x"))
}

// NewNodeAddress produces a random address for a node that isn't
// configured with a miner key.
func NewNodeAddress() string {
	return NewTransactionID()
}

// NewRewardTx constructs the mining reward transaction for the node address.
func NewRewardTx(nodeAddress string) Tx {
	return NewTransaction(RewardAmount, RewardSender, nodeAddress, "")
}
