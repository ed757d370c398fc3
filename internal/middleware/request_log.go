package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"zote/internal/httputil"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLog tags each request with an id (reusing a valid incoming
// X-Request-ID) and logs its start and completion
func RequestLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)
			r = httputil.WithRequestID(r, requestID)

			logger.Debug("request start",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
			)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info("request finish",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"took_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
