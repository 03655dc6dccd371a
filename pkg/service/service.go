// Package service exposes the contract entry points over HTTP for the host
// environment, plus a small read surface over the stored aggregate.
package service

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrlschwb/l1x-xcdp-test/pkg/codec"
	"github.com/chrlschwb/l1x-xcdp-test/pkg/ingest"
	"github.com/chrlschwb/l1x-xcdp-test/pkg/store"
)

type Server struct {
	handler *ingest.Handler
	logger  *zap.Logger
}

func NewServer(handler *ingest.Handler, logger *zap.Logger) *Server {
	return &Server{handler: handler, logger: logger}
}

// Router builds the API routing. Use a custom router instead of
// http.DefaultServeMux to avoid accidentally exposing packages that register
// themselves with it by default.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/v1/contract", s.handleInitialize).Methods(http.MethodPost)
	router.HandleFunc("/v1/events", s.handleSaveEvent).Methods(http.MethodPost)
	router.HandleFunc("/v1/events/{globalTxID}/{eventID}", s.handleGetEvent).Methods(http.MethodGet)
	router.HandleFunc("/v1/stats", s.handleStats).Methods(http.MethodGet)
	return router
}

type saveEventRequest struct {
	GlobalTxID string `json:"global_tx_id"`
	// EventData is the raw event bytes as they arrive on the wire: base64
	// text wrapping the JSON log envelope.
	EventData string `json:"event_data"`
}

type eventResponse struct {
	GlobalTxID string `json:"global_tx_id"`
	EventID    string `json:"event_id"`
	Message    string `json:"message"`
}

type statsResponse struct {
	TotalEvents uint64 `json:"total_events"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	if err := s.handler.Initialize(); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleSaveEvent(w http.ResponseWriter, r *http.Request) {
	var req saveEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.handler.SaveEventData([]byte(req.EventData), req.GlobalTxID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	globalTxID := vars["globalTxID"]
	eventID := vars["eventID"]

	msg, err := s.handler.GetEvent(globalTxID, eventID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, eventResponse{
		GlobalTxID: globalTxID,
		EventID:    eventID,
		Message:    msg.Message,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	total, err := s.handler.TotalEvents()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statsResponse{TotalEvents: total})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to write response", zap.Error(err))
	}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, store.ErrAlreadyInitialized),
		errors.Is(err, ingest.ErrDuplicateEvent):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotInitialized):
		return http.StatusPreconditionFailed
	case errors.Is(err, ingest.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrEmptyGlobalTxID),
		errors.Is(err, ingest.ErrEmptyEventData),
		errors.Is(err, codec.ErrInvalidEncoding),
		errors.Is(err, codec.ErrMalformedEnvelope),
		errors.Is(err, codec.ErrMissingTopic),
		errors.Is(err, codec.ErrSchemaMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
