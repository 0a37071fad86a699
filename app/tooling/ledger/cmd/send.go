package cmd

import (
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

// txFlags holds the transaction flags of a single command.
type txFlags struct {
	amount    float64
	sender    string
	recipient string
}

func (f *txFlags) bind(c *cobra.Command) {
	c.Flags().Float64VarP(&f.amount, "amount", "v", 0, "amount to transfer")
	c.Flags().StringVarP(&f.sender, "from", "f", "", "sender address")
	c.Flags().StringVarP(&f.recipient, "to", "t", "", "recipient address")
	c.MarkFlagRequired("amount")
	c.MarkFlagRequired("from")
	c.MarkFlagRequired("to")
}

func (f *txFlags) newTx() database.NewTx {
	amount := f.amount
	return database.NewTx{
		Amount:    &amount,
		Sender:    f.sender,
		Recipient: f.recipient,
	}
}

// newTxCmd constructs a command that posts a transaction to the path.
func newTxCmd(use string, short string, path string) *cobra.Command {
	var f txFlags

	c := cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd, http.MethodPost, path, f.newTx())
		},
	}
	f.bind(&c)

	return &c
}

var sendCmd = newTxCmd("send", "Add a transaction to the node's pending pool", "/transaction")

var broadcastCmd = newTxCmd("broadcast", "Add a transaction to the node and share it with the network", "/transaction/broadcast")

func init() {
	RootCmd.AddCommand(sendCmd, broadcastCmd)
}
