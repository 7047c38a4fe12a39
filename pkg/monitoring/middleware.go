package monitoring

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"alias-heaven-calculator/pkg/logging"
	"alias-heaven-calculator/pkg/metrics"
)

// statusWriter captures the status code written by the handler
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (sw *statusWriter) WriteHeader(statusCode int) {
	sw.statusCode = statusCode
	sw.ResponseWriter.WriteHeader(statusCode)
}

// Middleware tags each request with an X-Request-ID, records its duration in
// reg and writes one access log line. Labels are limited to status class to
// keep the metric set small.
func Middleware(reg *metrics.Registry, logger *logging.Logger) func(http.Handler) http.Handler {
	dur := reg.Histogram("http_request_duration_seconds", "HTTP request duration in seconds", metrics.DurationBuckets)
	total := reg.Counter("http_requests_total", "Total HTTP requests")
	errors5xx := reg.Counter("http_requests_5xx_total", "HTTP requests answered with a 5xx status")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)
			ctx := logging.WithRequestID(r.Context(), id)

			timer := dur.Start()
			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))
			elapsed := timer.Observe()

			total.Inc(1)
			if sw.statusCode >= 500 {
				errors5xx.Inc(1)
			}
			logger.InfoContext(ctx, "request",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.String("status", strconv.Itoa(sw.statusCode)),
				logging.Duration("duration", elapsed),
			)
		})
	}
}
