// Package api exposes one record store over HTTP.
//
// The store performs no internal locking by contract; the server
// provides the external synchronization, so any number of HTTP
// clients can share one store safely.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartServer runs the HTTP server with all routes configured until
// ctx is cancelled, then shuts down gracefully. It returns only after
// every in-flight handler has finished, so once it comes back no
// goroutine is touching the store anymore and the caller may use it
// directly (e.g. to export a shutdown snapshot).
func StartServer(ctx context.Context, store Store, config ServerConfig) error {
	metrics := NewMetrics()
	server := NewServer(store, config, metrics)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Bind, config.Port),
		Handler: Router(server, metrics),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("MuninDB API listening on %s", httpServer.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Router builds the chi router for a server. Split out of StartServer
// so tests can drive it through httptest.
func Router(server *Server, metrics *Metrics) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(server.config.APIKey, metrics))

		h := func(method, endpoint string, fn http.HandlerFunc) http.HandlerFunc {
			if metrics == nil {
				return fn
			}
			return metrics.InstrumentHandler(method, endpoint, fn)
		}

		// Health check
		r.Get("/health", h("GET", "/api/v1/health", server.handleHealth))

		// Record operations
		r.Post("/records", h("POST", "/api/v1/records", server.handlePutRecord))
		r.Get("/records", h("GET", "/api/v1/records", server.handleListRecords))
		r.Post("/records/prealloc", h("POST", "/api/v1/records/prealloc", server.handlePrealloc))
		r.Get("/records/{recid}", h("GET", "/api/v1/records/{recid}", server.handleGetRecord))
		r.Put("/records/{recid}", h("PUT", "/api/v1/records/{recid}", server.handleUpdateRecord))
		r.Delete("/records/{recid}", h("DELETE", "/api/v1/records/{recid}", server.handleDeleteRecord))
		r.Put("/records/{recid}/prealloc", h("PUT", "/api/v1/records/{recid}/prealloc", server.handlePreallocPut))

		// Diagnostics
		r.Get("/stats", h("GET", "/api/v1/stats", server.handleStats))
	})

	return r
}
