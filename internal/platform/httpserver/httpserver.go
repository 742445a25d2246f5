// Package httpserver carries the operational HTTP surface. The only
// endpoint exposed by this project is /metrics; there is no request
// routing for domain operations.
package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// NewMetrics builds the metrics server with sane defaults.
func NewMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully. Listen
// failures are logged, not fatal.
func Run(ctx context.Context, srv *http.Server, log *log.Logger) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics listener: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
