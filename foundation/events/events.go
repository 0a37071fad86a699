// Package events fans out block notifications from the ledger to any number
// of subscribers, such as websocket viewers.
package events

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ViewerPrefix marks the event messages that are meant for subscribers.
const ViewerPrefix = "viewer:"

// messageBuffer is the number of messages a slow subscriber can fall behind
// before messages to it are dropped.
const messageBuffer = 100

// =============================================================================

// Events maintains the set of subscribers by id.
type Events struct {
	mu   sync.RWMutex
	subs map[string]chan string
}

// New constructs an empty set of subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]chan string),
	}
}

// Subscribe registers a new subscriber and returns its id and the channel
// it will receive messages on.
func (evt *Events) Subscribe() (string, <-chan string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan string, messageBuffer)
	evt.subs[id] = ch

	return id, ch
}

// Unsubscribe closes and removes the subscriber's channel.
func (evt *Events) Unsubscribe(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.subs, id)
	close(ch)

	return nil
}

// Count returns the number of current subscribers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subs)
}

// Publish forwards the message to every subscriber when it carries the
// viewer prefix. It never blocks on a slow subscriber. It reports whether
// the message was meant for subscribers.
func (evt *Events) Publish(msg string) bool {
	if !strings.HasPrefix(msg, ViewerPrefix) {
		return false
	}

	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subs {
		select {
		case ch <- msg:
		default:
		}
	}

	return true
}

// Shutdown closes and removes every subscriber.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subs {
		delete(evt.subs, id)
		close(ch)
	}
}
