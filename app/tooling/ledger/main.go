// This program is a client for interacting with a ledger node.
package main

import (
	"github.com/ardanlabs/ledger/app/tooling/ledger/cmd"
)

func main() {
	cmd.Execute()
}
