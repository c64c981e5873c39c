// Package event builds the UPnP eventing (subscribe/renew/unsubscribe)
// grammar: bootstrap the set of event subscription URLs from a device
// description, then synthesize requests while tracking subscription
// identifiers issued by the target.
package event

import "errors"

// Endpoints is the frozen set of event subscription URL paths found
// during grammar bootstrap.
type Endpoints []string

// ErrEmptyEndpoints is returned when no <eventSubURL> nodes are found
// at all — a fatal bootstrap condition.
var ErrEmptyEndpoints = errors.New("event: grammar bootstrap found no event subscription endpoints")

// SubscriptionTable maps a subscription identifier (as issued by the
// target in a SID response header) to the event URL that produced it.
// Owned exclusively by the Generator; never accessed concurrently
// per the single-threaded fuzz loop contract.
type SubscriptionTable struct {
	bySID map[string]string
	order []string
}

// NewSubscriptionTable returns an empty table.
func NewSubscriptionTable() *SubscriptionTable {
	return &SubscriptionTable{bySID: map[string]string{}}
}

// Insert records that sid was issued for eventURL.
func (t *SubscriptionTable) Insert(sid, eventURL string) {
	if _, exists := t.bySID[sid]; !exists {
		t.order = append(t.order, sid)
	}
	t.bySID[sid] = eventURL
}

// Remove deletes sid from the table, if present.
func (t *SubscriptionTable) Remove(sid string) {
	if _, exists := t.bySID[sid]; !exists {
		return
	}
	delete(t.bySID, sid)
	for i, s := range t.order {
		if s == sid {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Len reports how many SIDs are currently tracked.
func (t *SubscriptionTable) Len() int { return len(t.order) }

// Random returns a uniformly chosen (sid, eventURL) pair. ok is false
// if the table is empty.
func (t *SubscriptionTable) Random(choice func(n int) int) (sid, eventURL string, ok bool) {
	if len(t.order) == 0 {
		return "", "", false
	}
	sid = t.order[choice(len(t.order))]
	return sid, t.bySID[sid], true
}

// Contains reports whether sid is currently tracked.
func (t *SubscriptionTable) Contains(sid string) bool {
	_, ok := t.bySID[sid]
	return ok
}
