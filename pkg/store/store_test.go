package store

import (
	"testing"

	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrlschwb/l1x-xcdp-test/pkg/xcdp"
)

func TestEventKey(t *testing.T) {
	assert.Equal(t, "tx-1-0xabc", EventKey("tx-1", "0xabc"))
	assert.Equal(t, "-", EventKey("", ""))
}

func TestEventStoreInsertAndContains(t *testing.T) {
	s := NewEventStore([]byte("events"))

	assert.False(t, s.Contains("k"))
	s.Insert("k", xcdp.SendMessage{Message: "hello"})
	assert.True(t, s.Contains("k"))

	msg, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "hello", msg.Message)
	assert.Equal(t, 1, s.Len())
}

func TestEventStoreInsertOverwrites(t *testing.T) {
	// The store itself is uniqueness-agnostic; rejecting duplicates is the
	// ingestion handler's job.
	s := NewEventStore([]byte("events"))

	s.Insert("k", xcdp.SendMessage{Message: "first"})
	s.Insert("k", xcdp.SendMessage{Message: "second"})

	msg, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", msg.Message)
	assert.Equal(t, 1, s.Len())
}

func TestEventStoreInsertOnZeroValue(t *testing.T) {
	var s EventStore
	s.Insert("k", xcdp.SendMessage{Message: "hello"})
	assert.True(t, s.Contains("k"))
}

func TestStateRoundTrip(t *testing.T) {
	state := State{Events: NewEventStore([]byte("events"))}
	state.Events.Insert("tx-1-0xabc", xcdp.SendMessage{Message: "hello"})
	state.Events.Insert("tx-2-0xdef", xcdp.SendMessage{Message: "world"})
	state.TotalEvents = 2

	raw, err := borsh.Serialize(state)
	require.NoError(t, err)

	got := new(State)
	require.NoError(t, borsh.Deserialize(got, raw))
	assert.Equal(t, state, *got)
}
