package ingest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chrlschwb/l1x-xcdp-test/pkg/codec"
	"github.com/chrlschwb/l1x-xcdp-test/pkg/db"
	"github.com/chrlschwb/l1x-xcdp-test/pkg/store"
)

func newTestHandler(t *testing.T) (*Handler, *store.Manager) {
	t.Helper()
	mgr := store.NewManager(db.NewMemStorage(), zap.NewNop())
	routing := Routing{DestinationNetwork: "l1x"}
	return NewHandler(mgr, routing, zap.NewNop()), mgr
}

func eventData(t *testing.T, topics []string, message string) []byte {
	t.Helper()

	data, err := codec.EncodeSendMessage(message)
	require.NoError(t, err)

	raw, err := json.Marshal(map[string]interface{}{
		"topics": topics,
		"data":   hexutil.Encode(data),
	})
	require.NoError(t, err)

	return []byte(base64.StdEncoding.EncodeToString(raw))
}

func TestSaveEventData(t *testing.T) {
	h, mgr := newTestHandler(t)
	require.NoError(t, h.Initialize())

	require.NoError(t, h.SaveEventData(eventData(t, []string{"0xabc"}, "hello"), "tx-1"))

	eventID := ethCommon.HexToHash("0xabc").Hex()
	state, err := mgr.Load()
	require.NoError(t, err)

	msg, ok := state.Events.Get(store.EventKey("tx-1", eventID))
	require.True(t, ok)
	assert.Equal(t, "hello", msg.Message)
	assert.Equal(t, uint64(1), state.TotalEvents)

	got, err := h.GetEvent("tx-1", eventID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Message)

	total, err := h.TotalEvents()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
}

func TestSaveEventDataDuplicate(t *testing.T) {
	h, mgr := newTestHandler(t)
	require.NoError(t, h.Initialize())

	ev := eventData(t, []string{"0xabc"}, "hello")
	require.NoError(t, h.SaveEventData(ev, "tx-1"))

	err := h.SaveEventData(ev, "tx-1")
	assert.ErrorIs(t, err, ErrDuplicateEvent)

	// The first write is untouched.
	state, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.TotalEvents)

	eventID := ethCommon.HexToHash("0xabc").Hex()
	msg, ok := state.Events.Get(store.EventKey("tx-1", eventID))
	require.True(t, ok)
	assert.Equal(t, "hello", msg.Message)
}

func TestSaveEventDataCounter(t *testing.T) {
	h, mgr := newTestHandler(t)
	require.NoError(t, h.Initialize())

	const n = 5
	for i := 0; i < n; i++ {
		txID := fmt.Sprintf("tx-%d", i)
		require.NoError(t, h.SaveEventData(eventData(t, []string{"0xabc"}, "hello"), txID))
	}

	state, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(n), state.TotalEvents)
	assert.Equal(t, n, state.Events.Len())
}

func TestSaveEventDataSameTxDistinctEvents(t *testing.T) {
	h, _ := newTestHandler(t)
	require.NoError(t, h.Initialize())

	require.NoError(t, h.SaveEventData(eventData(t, []string{"0x01"}, "a"), "tx-1"))
	require.NoError(t, h.SaveEventData(eventData(t, []string{"0x02"}, "b"), "tx-1"))

	total, err := h.TotalEvents()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
}

func TestSaveEventDataValidation(t *testing.T) {
	h, mgr := newTestHandler(t)
	require.NoError(t, h.Initialize())

	err := h.SaveEventData(eventData(t, []string{"0xabc"}, "hello"), "")
	assert.ErrorIs(t, err, ErrEmptyGlobalTxID)

	err = h.SaveEventData(nil, "tx-1")
	assert.ErrorIs(t, err, ErrEmptyEventData)

	state, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), state.TotalEvents)
	assert.Equal(t, 0, state.Events.Len())
}

func TestSaveEventDataDecodeRejection(t *testing.T) {
	h, mgr := newTestHandler(t)
	require.NoError(t, h.Initialize())

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"invalid base64", []byte("not valid base64!!!"), codec.ErrInvalidEncoding},
		{"missing topics", encodeJSON(t, map[string]interface{}{"data": "0x"}), codec.ErrMalformedEnvelope},
		{"empty topics", encodeJSON(t, map[string]interface{}{"topics": []string{}, "data": "0x"}), codec.ErrMissingTopic},
		{"short abi data", encodeJSON(t, map[string]interface{}{"topics": []string{"0x01"}, "data": "0x0102"}), codec.ErrSchemaMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := h.SaveEventData(tc.data, "tx-1")
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// No side effects from any failed call.
	state, err := mgr.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), state.TotalEvents)
	assert.Equal(t, 0, state.Events.Len())
}

func encodeJSON(t *testing.T, envelope map[string]interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	return []byte(base64.StdEncoding.EncodeToString(raw))
}

func TestSaveEventDataUninitialized(t *testing.T) {
	h, _ := newTestHandler(t)

	err := h.SaveEventData(eventData(t, []string{"0xabc"}, "hello"), "tx-1")
	assert.ErrorIs(t, err, store.ErrNotInitialized)
}

func TestInitializeTwice(t *testing.T) {
	h, _ := newTestHandler(t)
	require.NoError(t, h.Initialize())
	assert.ErrorIs(t, h.Initialize(), store.ErrAlreadyInitialized)
}

func TestGetEventNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	require.NoError(t, h.Initialize())

	_, err := h.GetEvent("tx-1", "0xabc")
	assert.ErrorIs(t, err, ErrEventNotFound)
}
