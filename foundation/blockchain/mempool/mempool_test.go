package mempool_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.Tx
	}

	tt := []table{
		{
			name: "basic",
			txs: []database.Tx{
				database.NewTransaction(10, "bill", "ale", "tx1"),
				database.NewTransaction(20, "ale", "bill", "tx2"),
				database.NewTransaction(30, "pavel", "ceasar", "tx3"),
				database.NewTransaction(40, "ceasar", "pavel", "tx4"),
			},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for _, tx := range tst.txs {
						mp.Upsert(tx)
						t.Logf("\t%s\tTest %d:\tShould be able to add new transaction: %s", success, testID, tx)
					}

					for i, tx := range mp.Copy() {
						if tx.TransactionID != tst.txs[i].TransactionID {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx.TransactionID)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.txs[i].TransactionID)
							t.Fatalf("\t%s\tTest %d:\tShould get back transactions in submission order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back transactions in submission order.", success, testID)

					mp.Upsert(database.NewTransaction(99, "bill", "ale", "tx1"))
					if l := mp.Count(); l != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould replace a transaction with the same id, got %d.", failed, testID, l)
					}
					if amount := mp.Copy()[0].Amount; amount != 99 {
						t.Fatalf("\t%s\tTest %d:\tShould replace a transaction in place, got %v.", failed, testID, amount)
					}
					t.Logf("\t%s\tTest %d:\tShould replace a transaction with the same id in place.", success, testID)

					mp.Delete(tst.txs[1])
					trans := mp.Copy()
					if len(trans) != 3 || trans[1].TransactionID != "tx3" {
						t.Fatalf("\t%s\tTest %d:\tShould be able to remove a transaction and keep order.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to remove a transaction and keep order.", success, testID)

					mp.Upsert(tst.txs[1])
					if trans := mp.Copy(); trans[3].TransactionID != "tx2" {
						t.Fatalf("\t%s\tTest %d:\tShould append a removed transaction at the end.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould append a removed transaction at the end.", success, testID)

					mp.Truncate()
					if l := mp.Count(); l != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate mempool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate mempool.", success, testID)

					mp.Replace(tst.txs[:2])
					if l := mp.Count(); l != 2 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to replace the mempool, got %d.", failed, testID, l)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to replace the mempool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
