// Package store holds the contract's aggregate state: a permanent keyed
// ledger of stored messages plus the running event counter, and the manager
// that round-trips the aggregate through the host storage capability.
package store

import (
	"github.com/chrlschwb/l1x-xcdp-test/pkg/xcdp"
)

// EventStore is a thin keyed mapping from composite event keys to stored
// messages. It is a permanent ledger: no eviction, no TTL. Uniqueness is
// enforced by the ingestion handler, not here.
type EventStore struct {
	// KeyPrefix is the store's namespace key within the contract's storage
	// layout. It is part of the persisted form.
	KeyPrefix []byte
	Entries   map[string]xcdp.SendMessage
}

func NewEventStore(keyPrefix []byte) EventStore {
	return EventStore{
		KeyPrefix: keyPrefix,
		Entries:   make(map[string]xcdp.SendMessage),
	}
}

func (s *EventStore) Contains(key string) bool {
	_, ok := s.Entries[key]
	return ok
}

// Insert writes unconditionally. Callers are responsible for checking
// Contains first if overwrites must be rejected.
func (s *EventStore) Insert(key string, msg xcdp.SendMessage) {
	if s.Entries == nil {
		s.Entries = make(map[string]xcdp.SendMessage)
	}
	s.Entries[key] = msg
}

func (s *EventStore) Get(key string) (xcdp.SendMessage, bool) {
	msg, ok := s.Entries[key]
	return msg, ok
}

func (s *EventStore) Len() int {
	return len(s.Entries)
}

// State is the single persisted aggregate root. It is loaded fully into
// memory on every mutating call and saved back in full; there is no partial
// update path.
type State struct {
	Events      EventStore
	TotalEvents uint64
}

// EventKey combines a global transaction id and an event id into the unique
// composite key an event is stored under.
func EventKey(globalTxID, eventID string) string {
	return globalTxID + "-" + eventID
}
