package events_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Publish(t *testing.T) {
	t.Log("Given the need to fan out block events.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two viewers are subscribed.", testID)
		{
			evts := events.New()

			id1, ch1 := evts.Subscribe()
			_, ch2 := evts.Subscribe()

			if evts.Count() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould have 2 subscribers, got %d.", failed, testID, evts.Count())
			}
			t.Logf("\t%s\tTest %d:\tShould have 2 subscribers.", success, testID)

			if evts.Publish("state: MineNewBlock: started") {
				t.Fatalf("\t%s\tTest %d:\tShould not forward internal messages.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not forward internal messages.", success, testID)

			const msg = `viewer: block: {"index":2}`
			if !evts.Publish(msg) {
				t.Fatalf("\t%s\tTest %d:\tShould forward viewer messages.", failed, testID)
			}

			for i, ch := range []<-chan string{ch1, ch2} {
				select {
				case got := <-ch:
					if got != msg {
						t.Fatalf("\t%s\tTest %d:\tShould deliver the message to viewer %d, got %q.", failed, testID, i, got)
					}
				default:
					t.Fatalf("\t%s\tTest %d:\tShould deliver the message to viewer %d.", failed, testID, i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould deliver the message to every viewer.", success, testID)

			if err := evts.Unsubscribe(id1); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to unsubscribe: %v", failed, testID, err)
			}
			if _, open := <-ch1; open {
				t.Fatalf("\t%s\tTest %d:\tShould close the channel on unsubscribe.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close the channel on unsubscribe.", success, testID)

			if err := evts.Unsubscribe(id1); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not unsubscribe twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not unsubscribe twice.", success, testID)

			for i := 0; i < 200; i++ {
				evts.Publish(msg)
			}
			t.Logf("\t%s\tTest %d:\tShould not block on a full viewer.", success, testID)

			evts.Shutdown()
			if evts.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould remove every viewer on shutdown.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould remove every viewer on shutdown.", success, testID)
		}
	}
}
