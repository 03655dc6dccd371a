// Package ingest orchestrates the ingestion path: it validates inputs,
// decodes the raw event, enforces the uniqueness invariant, and persists the
// updated aggregate. All invariant enforcement lives here so the store stays
// a plain keyed mapping.
package ingest

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/chrlschwb/l1x-xcdp-test/pkg/codec"
	"github.com/chrlschwb/l1x-xcdp-test/pkg/store"
	"github.com/chrlschwb/l1x-xcdp-test/pkg/xcdp"
)

var eventsIngestedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "xcdp_events_ingested_total",
		Help: "Total number of events stored in the contract state",
	})

var ingestFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "xcdp_ingest_failures_total",
		Help: "Total number of ingestion calls that failed before persisting",
	})

var (
	ErrEmptyGlobalTxID = errors.New("global_tx_id cannot be empty")
	ErrEmptyEventData  = errors.New("event_data cannot be empty")
	ErrDuplicateEvent  = errors.New("event is saved already")
	ErrEventNotFound   = errors.New("requested event not found in store")
)

// Routing is the destination routing data used to build the onward payload
// for every stored event.
type Routing struct {
	DestinationNetwork  string
	DestinationContract [32]byte
}

// Handler exposes the contract entry points to the host environment.
type Handler struct {
	mgr     *store.Manager
	routing Routing
	logger  *zap.Logger
}

func NewHandler(mgr *store.Manager, routing Routing, logger *zap.Logger) *Handler {
	return &Handler{mgr: mgr, routing: routing, logger: logger}
}

// Initialize creates the aggregate. It fails if the aggregate already exists;
// re-initialization never resets recorded events.
func (h *Handler) Initialize() error {
	return h.mgr.Initialize()
}

// SaveEventData records one decoded event under its composite key, exactly
// once. A failed call leaves the aggregate exactly as it was: the single
// durable write happens only after every preceding step has succeeded.
func (h *Handler) SaveEventData(eventData []byte, globalTxID string) error {
	if err := h.saveEventData(eventData, globalTxID); err != nil {
		ingestFailuresTotal.Inc()
		return err
	}
	eventsIngestedTotal.Inc()
	return nil
}

func (h *Handler) saveEventData(eventData []byte, globalTxID string) error {
	if globalTxID == "" {
		return ErrEmptyGlobalTxID
	}
	if len(eventData) == 0 {
		return ErrEmptyEventData
	}

	state, err := h.mgr.Load()
	if err != nil {
		return err
	}

	env, err := codec.DecodeEventData(eventData)
	if err != nil {
		return err
	}
	h.logger.Debug("decoded log envelope",
		zap.String("global_tx_id", globalTxID),
		zap.String("event_id", env.EventID()),
		zap.Int("num_topics", len(env.Topics)),
		zap.Int("data_len", len(env.Data)))

	event, err := codec.DecodeSendMessage(env.Data)
	if err != nil {
		return err
	}

	key := store.EventKey(globalTxID, env.EventID())
	if state.Events.Contains(key) {
		return fmt.Errorf("%w: %s", ErrDuplicateEvent, key)
	}

	msg := event.ToStored()
	state.Events.Insert(key, msg)
	state.TotalEvents++

	if err := h.mgr.Save(state); err != nil {
		return err
	}

	payload := xcdp.NewPayload([]byte(msg.Message), h.routing.DestinationNetwork, h.routing.DestinationContract)
	h.logger.Info("event saved",
		zap.String("global_tx_id", globalTxID),
		zap.String("event_id", env.EventID()),
		zap.String("message", msg.Message),
		zap.String("destination_network", payload.DestinationNetwork),
		zap.Uint64("total_events", state.TotalEvents))

	return nil
}

// GetEvent returns the stored message for one global tx id and event id pair.
func (h *Handler) GetEvent(globalTxID, eventID string) (xcdp.SendMessage, error) {
	state, err := h.mgr.Load()
	if err != nil {
		return xcdp.SendMessage{}, err
	}

	key := store.EventKey(globalTxID, eventID)
	msg, ok := state.Events.Get(key)
	if !ok {
		return xcdp.SendMessage{}, fmt.Errorf("%w: %s", ErrEventNotFound, key)
	}
	return msg, nil
}

// TotalEvents returns the running event counter.
func (h *Handler) TotalEvents() (uint64, error) {
	state, err := h.mgr.Load()
	if err != nil {
		return 0, err
	}
	return state.TotalEvents, nil
}
