package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

// breaker is satisfied by both the download and the database circuit breakers.
type breaker interface {
	State() gobreaker.State
	IsOpen() bool
}

type breakerStatus struct {
	name    string
	breaker breaker
}

// BreakerHealthResponse reports the circuit breakers of the worker.
type BreakerHealthResponse struct {
	Healthy  bool           `json:"healthy"`
	Breakers []BreakerState `json:"breakers"`
}

type BreakerState struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Open  bool   `json:"open"`
}

// startMetricsServer serves Prometheus metrics until ctx is canceled.
//
//   - GET /metrics          Prometheus scrape endpoint
//   - GET /health/breakers  200 when every circuit breaker is closed or half-open, 503 otherwise
func startMetricsServer(ctx context.Context, logger *slog.Logger, port int, breakers []breakerStatus) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health/breakers", breakerHealthHandler(breakers))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

func breakerHealthHandler(breakers []breakerStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := BreakerHealthResponse{Healthy: true, Breakers: make([]BreakerState, 0, len(breakers))}
		for _, b := range breakers {
			open := b.breaker.IsOpen()
			resp.Breakers = append(resp.Breakers, BreakerState{
				Name:  b.name,
				State: b.breaker.State().String(),
				Open:  open,
			})
			if open {
				resp.Healthy = false
			}
		}

		code := http.StatusOK
		if !resp.Healthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
