package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munindb/munin/pkg/store"
)

const testAPIKey = "test-key"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	s, err := store.New(store.Config{PageSize: 64, MaxRecids: 16, ArenaSize: 2048})
	require.NoError(t, err)

	server := NewServer(s, ServerConfig{APIKey: testAPIKey}, nil)
	return Router(server, nil)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeRecid(t *testing.T, rec *httptest.ResponseRecorder) store.Recid {
	t.Helper()
	var resp struct {
		Success bool          `json:"success"`
		Data    RecidResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data.Recid
}

func TestAPI_RecordLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// Put
	rec := doRequest(t, router, "POST", "/api/v1/records", []byte("A"))
	require.Equal(t, http.StatusOK, rec.Code)
	recid := decodeRecid(t, rec)
	require.NotZero(t, recid)

	// Get
	rec = doRequest(t, router, "GET", fmt.Sprintf("/api/v1/records/%d", recid), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A", rec.Body.String())
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))

	// Update
	rec = doRequest(t, router, "PUT", fmt.Sprintf("/api/v1/records/%d", recid), []byte("BB"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, "GET", fmt.Sprintf("/api/v1/records/%d", recid), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BB", rec.Body.String())

	// Delete
	rec = doRequest(t, router, "DELETE", fmt.Sprintf("/api/v1/records/%d", recid), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, "GET", fmt.Sprintf("/api/v1/records/%d", recid), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_PreallocFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "POST", "/api/v1/records/prealloc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recid := decodeRecid(t, rec)

	// Unmaterialized: reads are rejected.
	rec = doRequest(t, router, "GET", fmt.Sprintf("/api/v1/records/%d", recid), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Materialize.
	rec = doRequest(t, router, "PUT", fmt.Sprintf("/api/v1/records/%d/prealloc", recid), []byte("X"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, "GET", fmt.Sprintf("/api/v1/records/%d", recid), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "X", rec.Body.String())

	// One-shot.
	rec = doRequest(t, router, "PUT", fmt.Sprintf("/api/v1/records/%d/prealloc", recid), []byte("Y"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_ListRecords(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, "POST", "/api/v1/records", []byte("one"))
	doRequest(t, router, "POST", "/api/v1/records", []byte("three"))
	doRequest(t, router, "POST", "/api/v1/records/prealloc", nil)

	rec := doRequest(t, router, "GET", "/api/v1/records", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool         `json:"success"`
		Data    []RecordInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2, "preallocated recid must not be listed")
	assert.Equal(t, store.Recid(1), resp.Data[0].Recid)
	assert.Equal(t, 3, resp.Data[0].Size)
	assert.Equal(t, store.Recid(2), resp.Data[1].Recid)
	assert.Equal(t, 5, resp.Data[1].Size)
}

func TestAPI_ErrorStatusCodes(t *testing.T) {
	router := newTestRouter(t)

	// Unknown recid.
	rec := doRequest(t, router, "GET", "/api/v1/records/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Oversized payload (page size is 64 in the test geometry).
	rec = doRequest(t, router, "POST", "/api/v1/records", bytes.Repeat([]byte("x"), 65))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// Malformed recid.
	rec = doRequest(t, router, "GET", "/api/v1/records/zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Materializing an unallocated recid.
	rec = doRequest(t, router, "PUT", "/api/v1/records/9/prealloc", []byte("x"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_CapacityExhausted(t *testing.T) {
	router := newTestRouter(t)

	// Test geometry: 16 recids, 2048/64 = 32 pages (31 usable).
	for i := 0; i < 16; i++ {
		rec := doRequest(t, router, "POST", "/api/v1/records", []byte("r"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, router, "POST", "/api/v1/records", []byte("overflow"))
	assert.Equal(t, http.StatusInsufficientStorage, rec.Code)
}

func TestAPI_Stats(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, "POST", "/api/v1/records", []byte("abc"))

	rec := doRequest(t, router, "GET", "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Stats   store.Stats `json:"stats"`
			IsEmpty bool        `json:"is_empty"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Stats.LiveRecords)
	assert.False(t, resp.Data.IsEmpty)
}

func TestAPI_Health(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "GET", "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
