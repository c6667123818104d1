package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/munindb/munin/pkg/store"
)

// StartServer's contract is that it returns only after shutdown has
// drained every in-flight handler, so a caller can safely touch the
// lock-free store (e.g. export a snapshot) as soon as it comes back.
func TestStartServer_ReturnsAfterContextCancel(t *testing.T) {
	s, err := store.New(store.Config{PageSize: 64, MaxRecids: 16, ArenaSize: 2048})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, s, ServerConfig{
			Bind:   "127.0.0.1",
			Port:   0, // any free port, nothing connects
			APIKey: "test-key",
		})
	}()

	// Give ListenAndServe a moment to bind before cancelling.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("StartServer did not return after context cancellation")
	}

	// The server is gone; the store is ours alone now.
	_, err = s.PutRaw([]byte("after shutdown"))
	require.NoError(t, err)
}
