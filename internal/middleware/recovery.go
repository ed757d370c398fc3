package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"zote/internal/httputil"
)

// Recovery turns a handler panic into a logged 500 problem response carrying
// the request id. http.ErrAbortHandler is re-raised so net/http can abort the
// connection quietly.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				requestID := httputil.GetRequestID(r)
				logger.Error("panic in handler",
					"panic", fmt.Sprint(rec),
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				var extras map[string]any
				if requestID != "" {
					extras = map[string]any{"request_id": requestID}
				}
				httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, "internal server error", extras)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
