package cmd

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var keyFile string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a miner key for a node",
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := crypto.GenerateKey()
		if err != nil {
			return err
		}

		if err := crypto.SaveECDSA(keyFile, privateKey); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "key: %s\naddress: %s\n", keyFile, database.PublicKeyToAddress(privateKey.PublicKey))
		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVarP(&keyFile, "out", "o", "miner.ecdsa", "file to write the key to")
	RootCmd.AddCommand(keygenCmd)
}
