package middleware

import (
	"net/http"
	"time"

	"github.com/vidstats/vidstats/internal/observability"
)

// Metrics records per-request counters and latency histograms.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		observability.ObserveHTTPRequest(r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}
