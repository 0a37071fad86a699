package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine the pending transactions into a new block",
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd, http.MethodGet, "/mine", nil)
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Show the node's chain, pending pool and peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd, http.MethodGet, "/blockchain", nil)
	},
}

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Show the node's pending transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, status, err := fetch(cmd, http.MethodGet, "/blockchain", nil)
		if err != nil {
			return err
		}

		if status != http.StatusOK {
			printDoc(cmd.OutOrStdout(), data)
			return fmt.Errorf("node responded with status %d", status)
		}

		var cd state.ChainData
		if err := json.Unmarshal(data, &cd); err != nil {
			return err
		}

		out, err := json.Marshal(cd.PendingTransactions)
		if err != nil {
			return err
		}

		return printDoc(cmd.OutOrStdout(), out)
	},
}

var consensusCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Reconcile the node's chain with its peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd, http.MethodGet, "/consensus", nil)
	},
}

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Manage the node's peers",
}

var peersRegisterCmd = &cobra.Command{
	Use:   "register <node-url>",
	Short: "Join a node to the network through the target node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd, http.MethodPost, "/register-and-broadcast-node", state.NewNode{NewNodeURL: args[0]})
	},
}

func init() {
	peersCmd.AddCommand(peersRegisterCmd)

	RootCmd.AddCommand(mineCmd)
	RootCmd.AddCommand(chainCmd)
	RootCmd.AddCommand(poolCmd)
	RootCmd.AddCommand(consensusCmd)
	RootCmd.AddCommand(peersCmd)
}
