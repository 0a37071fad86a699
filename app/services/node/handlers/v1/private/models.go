package private

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

type received struct {
	Note     string         `json:"note"`
	NewBlock database.Block `json:"newBlock"`
}

type note struct {
	Note string `json:"note"`
}
