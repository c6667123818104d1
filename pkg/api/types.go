package api

import "github.com/munindb/munin/pkg/store"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RecidResponse carries a recid back to the caller
type RecidResponse struct {
	Recid store.Recid `json:"recid"`
}

// RecordInfo is one row of the record listing
type RecordInfo struct {
	Recid store.Recid `json:"recid"`
	Size  int         `json:"size"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string
}

// Store defines the record store operations the API serves. The
// concrete store performs no internal locking, so the server wraps
// every call in its own mutex.
type Store interface {
	Preallocate() (store.Recid, error)
	PreallocatePutRaw(recid store.Recid, payload []byte) error
	PutRaw(payload []byte) (store.Recid, error)
	GetRaw(recid store.Recid) ([]byte, error)
	UpdateRaw(recid store.Recid, payload []byte) error
	Delete(recid store.Recid) error
	GetAll(fn func(recid store.Recid, payload []byte) error) error
	IsEmpty() bool
	Stats() store.Stats
}
