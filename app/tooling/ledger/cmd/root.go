// Package cmd contains the ledger client commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd is the base command of the client.
var RootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Talk to a ledger node",
	Long:  `ledger submits transactions to a node, asks it to mine and reconcile, and inspects its chain.`,
}

func init() {
	RootCmd.PersistentFlags().StringP("node", "n", "http://localhost:3001", "URL of the node to talk to")
	RootCmd.PersistentFlags().Duration("timeout", 0, "request timeout, mining can take a while (0 means none)")
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		fmt.Fprintln(os.Stderr, "binding root flags:", err)
	}

	RootCmd.SilenceUsage = true

	viper.SetConfigName("ledger")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.ledger")

	viper.SetEnvPrefix("ledger")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() {
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}

	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
