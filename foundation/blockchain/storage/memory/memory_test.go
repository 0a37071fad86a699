package memory_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_ReadWrite(t *testing.T) {
	t.Log("Given the need to store blocks in memory.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a small chain.", testID)
		{
			m := memory.New()

			if err := m.Write(database.Block{Index: 2}); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not be able to write a block out of order.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not be able to write a block out of order.", success, testID)

			for i := uint64(1); i <= 3; i++ {
				if err := m.Write(database.Block{Index: i}); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to write block %d: %v", failed, testID, i, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be able to write blocks in order.", success, testID)

			block, err := m.GetBlock(2)
			if err != nil || block.Index != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould be able to get block 2: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to get block 2.", success, testID)

			if _, err := m.GetBlock(4); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not be able to get a block past the end.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not be able to get a block past the end.", success, testID)

			var count uint64
			iter := m.ForEach()
			for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to iterate: %v", failed, testID, err)
				}
				count++
				if block.Index != count {
					t.Fatalf("\t%s\tTest %d:\tShould iterate in index order, got %d, exp %d.", failed, testID, block.Index, count)
				}
			}
			if count != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould iterate over 3 blocks, got %d.", failed, testID, count)
			}
			t.Logf("\t%s\tTest %d:\tShould iterate over every block in order.", success, testID)

			m.Reset()
			if _, err := m.GetBlock(1); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould have no blocks after reset.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have no blocks after reset.", success, testID)
		}
	}
}
