package store

import (
	"errors"
	"fmt"

	"github.com/near/borsh-go"
	"go.uber.org/zap"

	"github.com/chrlschwb/l1x-xcdp-test/pkg/xcdp"
)

// Fixed keys in the contract's storage namespace: one slot for the serialized
// aggregate, one as the namespace root for the event map.
var (
	contractKey = []byte("message")
	eventsKey   = []byte("events")
)

var (
	ErrNotInitialized       = errors.New("contract state is not initialized")
	ErrAlreadyInitialized   = errors.New("contract state is already initialized")
	ErrCorruptState         = errors.New("persisted contract state is corrupt")
	ErrSerializationFailure = errors.New("failed to serialize contract state")
)

// Storage is the host-provided key-value capability the aggregate persists
// through. Read reports an absent key with ok == false rather than an error.
type Storage interface {
	Read(key []byte) (value []byte, ok bool, err error)
	Write(key, value []byte) error
}

// Manager owns the load/save round-trip of the aggregate state. State
// mutations are atomic per call: either the whole load-mutate-save cycle
// succeeds or nothing is written.
type Manager struct {
	storage Storage
	logger  *zap.Logger
}

func NewManager(storage Storage, logger *zap.Logger) *Manager {
	return &Manager{storage: storage, logger: logger}
}

// Initialize creates and persists a fresh empty aggregate. It refuses to
// overwrite an existing aggregate.
func (m *Manager) Initialize() error {
	if _, ok, err := m.storage.Read(contractKey); err != nil {
		return fmt.Errorf("failed to probe contract slot: %w", err)
	} else if ok {
		return ErrAlreadyInitialized
	}

	state := &State{Events: NewEventStore(eventsKey)}
	if err := m.Save(state); err != nil {
		return err
	}

	m.logger.Info("initialized contract state")
	return nil
}

// Load reads and deserializes the aggregate from its slot.
func (m *Manager) Load() (*State, error) {
	raw, ok, err := m.storage.Read(contractKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract slot: %w", err)
	}
	if !ok {
		return nil, ErrNotInitialized
	}

	state := new(State)
	if err := borsh.Deserialize(state, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	// An empty event map deserializes to nil; normalize so the in-memory
	// aggregate always round-trips byte-for-byte.
	if state.Events.Entries == nil {
		state.Events.Entries = make(map[string]xcdp.SendMessage)
	}

	return state, nil
}

// Save serializes the full aggregate and overwrites its slot.
func (m *Manager) Save(state *State) error {
	raw, err := borsh.Serialize(*state)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailure, err)
	}
	if err := m.storage.Write(contractKey, raw); err != nil {
		return fmt.Errorf("failed to write contract slot: %w", err)
	}

	m.logger.Debug("saved contract state", zap.Uint64("total_events", state.TotalEvents))
	return nil
}
