package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag of the command tree back to its default so
// one run of the shared root command doesn't carry into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)

	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(RootCmd) })

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)

	err := RootCmd.Execute()
	return out.String(), err
}

func TestSend(t *testing.T) {
	var got struct {
		path string
		body map[string]any
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&got.body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"note":"Transaction will be added to the block number 2."}`))
	}))
	defer srv.Close()

	out, err := run(t, "send", "--node", srv.URL, "--amount", "12.5", "--from", "alice", "--to", "bob")
	require.NoError(t, err)

	assert.Equal(t, "/v1/transaction", got.path)
	assert.Equal(t, 12.5, got.body["amount"])
	assert.Equal(t, "alice", got.body["sender"])
	assert.Equal(t, "bob", got.body["recipient"])
	assert.Contains(t, out, "block number 2")
}

func TestTxFlags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"note":"Transaction created and broadcast successfully."}`))
	}))
	defer srv.Close()

	_, err := run(t, "broadcast", "--node", srv.URL, "--amount", "3", "--from", "carol", "--to", "dave")
	require.NoError(t, err)

	assert.Equal(t, "0", sendCmd.Flags().Lookup("amount").Value.String())
	assert.Equal(t, "", sendCmd.Flags().Lookup("from").Value.String())

	_, err = run(t, "send", "--node", srv.URL, "--from", "alice", "--to", "bob")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestPool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chain":[],"pendingTransactions":[{"amount":1,"sender":"a","recipient":"b","transactionID":"x1"}],"currentNodeURL":"n","networkNodes":[]}`))
	}))
	defer srv.Close()

	out, err := run(t, "pool", "--node", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `"transactionID": "x1"`)
	assert.NotContains(t, out, "currentNodeURL")
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"chain changed while mining"}`))
	}))
	defer srv.Close()

	out, err := run(t, "mine", "--node", srv.URL)
	require.Error(t, err)
	assert.Contains(t, out, "chain changed while mining")
}

func TestKeygen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "miner.ecdsa")

	out, err := run(t, "keygen", "--out", file)
	require.NoError(t, err)

	_, err = os.Stat(file)
	require.NoError(t, err)

	_, err = crypto.LoadECDSA(file)
	require.NoError(t, err)
	assert.Contains(t, out, "address: ")
}
