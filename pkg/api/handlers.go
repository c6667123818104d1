package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/munindb/munin/pkg/store"
)

// Server holds the API server state. The store advertises
// IsThreadSafe() == false, so the server owns the external
// synchronization the store contract demands: mu serializes every
// store call.
type Server struct {
	store   Store
	mu      sync.Mutex
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(store Store, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		store:   store,
		config:  config,
		metrics: metrics,
	}
}

// statusFor maps store error kinds onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrPreallocAccess):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotPreallocated):
		return http.StatusConflict
	case errors.Is(err, store.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrCapacityExhausted):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

func recidParam(r *http.Request) (store.Recid, error) {
	raw := chi.URLParam(r, "recid")
	recid, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || recid == 0 {
		return 0, errors.New("recid must be a positive integer")
	}
	return store.Recid(recid), nil
}

func (s *Server) recordOp(op string, success bool, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordStoreOperation(op, success, time.Since(start))
	s.metrics.UpdateStoreGauges(s.store.Stats())
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handlePutRecord stores the request body as a new record
func (s *Server) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.recordOp("put", false, start)
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	recid, err := s.store.PutRaw(payload)
	s.mu.Unlock()
	if err != nil {
		s.recordOp("put", false, start)
		sendError(w, err.Error(), statusFor(err))
		return
	}

	s.recordOp("put", true, start)
	sendSuccess(w, RecidResponse{Recid: recid})
}

// handleGetRecord returns the raw payload stored under a recid
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	recid, err := recidParam(r)
	if err != nil {
		s.recordOp("get", false, start)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	payload, err := s.store.GetRaw(recid)
	s.mu.Unlock()
	if err != nil {
		s.recordOp("get", false, start)
		sendError(w, err.Error(), statusFor(err))
		return
	}

	s.recordOp("get", true, start)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// handleUpdateRecord overwrites the payload under a recid in place
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	recid, err := recidParam(r)
	if err != nil {
		s.recordOp("update", false, start)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.recordOp("update", false, start)
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err = s.store.UpdateRaw(recid, payload)
	s.mu.Unlock()
	if err != nil {
		s.recordOp("update", false, start)
		sendError(w, err.Error(), statusFor(err))
		return
	}

	s.recordOp("update", true, start)
	sendSuccess(w, RecidResponse{Recid: recid})
}

// handleDeleteRecord frees a recid and its page
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	recid, err := recidParam(r)
	if err != nil {
		s.recordOp("delete", false, start)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err = s.store.Delete(recid)
	s.mu.Unlock()
	if err != nil {
		s.recordOp("delete", false, start)
		sendError(w, err.Error(), statusFor(err))
		return
	}

	s.recordOp("delete", true, start)
	sendSuccess(w, RecidResponse{Recid: recid})
}

// handlePrealloc reserves a recid without payload
func (s *Server) handlePrealloc(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	s.mu.Lock()
	recid, err := s.store.Preallocate()
	s.mu.Unlock()
	if err != nil {
		s.recordOp("preallocate", false, start)
		sendError(w, err.Error(), statusFor(err))
		return
	}

	s.recordOp("preallocate", true, start)
	sendSuccess(w, RecidResponse{Recid: recid})
}

// handlePreallocPut materializes a preallocated recid
func (s *Server) handlePreallocPut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	recid, err := recidParam(r)
	if err != nil {
		s.recordOp("preallocate_put", false, start)
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.recordOp("preallocate_put", false, start)
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err = s.store.PreallocatePutRaw(recid, payload)
	s.mu.Unlock()
	if err != nil {
		s.recordOp("preallocate_put", false, start)
		sendError(w, err.Error(), statusFor(err))
		return
	}

	s.recordOp("preallocate_put", true, start)
	sendSuccess(w, RecidResponse{Recid: recid})
}

// handleListRecords lists every live record's recid and size
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	records := []RecordInfo{}
	s.mu.Lock()
	err := s.store.GetAll(func(recid store.Recid, payload []byte) error {
		records = append(records, RecordInfo{Recid: recid, Size: len(payload)})
		return nil
	})
	s.mu.Unlock()
	if err != nil {
		s.recordOp("list", false, start)
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.recordOp("list", true, start)
	sendSuccess(w, records)
}

// handleStats reports store occupancy
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.store.Stats()
	empty := s.store.IsEmpty()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.UpdateStoreGauges(stats)
	}

	sendSuccess(w, map[string]interface{}{
		"stats":    stats,
		"is_empty": empty,
	})
}
