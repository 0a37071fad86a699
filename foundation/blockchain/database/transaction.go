package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/google/uuid"
)

// ErrInvalidInput is returned when a transaction or block record is missing
// required fields. The underlying validate.FieldErrors is wrapped as well.
var ErrInvalidInput = errors.New("invalid input")

// =============================================================================

// NewTx is what we require from a client or peer to construct a transaction.
// The pointer on amount is to tell a missing amount apart from a zero amount.
type NewTx struct {
	Amount        *float64 `json:"amount" validate:"required"`
	Sender        string   `json:"sender" validate:"required"`
	Recipient     string   `json:"recipient" validate:"required"`
	TransactionID string   `json:"transactionID"`
}

// Validate checks the record carries every required field.
func (ntx NewTx) Validate() error {
	if err := validate.Check(ntx); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return nil
}

// =============================================================================

// Tx represents a value transfer between two parties. The field order is part
// of the block hash, don't change it.
type Tx struct {
	Amount        float64 `json:"amount"`
	Sender        string  `json:"sender"`
	Recipient     string  `json:"recipient"`
	TransactionID string  `json:"transactionID"`
}

// NewTransaction constructs a transaction. A transaction id is generated when
// one isn't provided.
func NewTransaction(amount float64, sender string, recipient string, transactionID string) Tx {
	if transactionID == "" {
		transactionID = NewTransactionID()
	}

	return Tx{
		Amount:        amount,
		Sender:        sender,
		Recipient:     recipient,
		TransactionID: transactionID,
	}
}

// ToTx validates the wire record and converts it into a transaction.
func ToTx(ntx NewTx) (Tx, error) {
	if err := ntx.Validate(); err != nil {
		return Tx{}, err
	}

	return NewTransaction(*ntx.Amount, ntx.Sender, ntx.Recipient, ntx.TransactionID), nil
}

// NewTxData converts a transaction into the record form exchanged with
// clients and peers.
func NewTxData(tx Tx) NewTx {
	amount := tx.Amount

	return NewTx{
		Amount:        &amount,
		Sender:        tx.Sender,
		Recipient:     tx.Recipient,
		TransactionID: tx.TransactionID,
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s->%s:%v", tx.TransactionID, tx.Sender, tx.Recipient, tx.Amount)
}

// NewTransactionID produces a time based unique id with the dashes removed.
func NewTransactionID() string {
	id, err := uuid.NewUUID()
	if err != nil {
		id = uuid.New()
	}

	return strings.ReplaceAll(id.String(), "-", "")
}
