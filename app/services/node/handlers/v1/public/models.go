package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

type mined struct {
	Note  string         `json:"note"`
	Block database.Block `json:"block"`
}

type consensus struct {
	Note  string           `json:"note"`
	Chain []database.Block `json:"chain"`
}

type note struct {
	Note string `json:"note"`
}
