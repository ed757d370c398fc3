package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zote/internal/domain"
	models "zote/internal/domain/models/auth"
	"zote/internal/httputil"
)

type stubVerifier struct {
	valid map[string]string // token -> subject
}

func (s *stubVerifier) VerifyToken(token string) (*models.Claims, error) {
	subject, ok := s.valid[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	claims := &models.Claims{}
	claims.Subject = subject
	return claims, nil
}

func (s *stubVerifier) Close() error { return nil }

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(httputil.GetUserID(r)))
	})
}

func TestAuthMiddleware(t *testing.T) {
	handler := AuthMiddleware(&stubVerifier{valid: map[string]string{"good": "user-1"}})(echoUser())

	tests := []struct {
		name   string
		method string
		path   string
		header string
		status int
		body   string
	}{
		{name: "valid token", method: http.MethodGet, path: "/api/v1/tree", header: "Bearer good", status: http.StatusOK, body: "user-1"},
		{name: "missing header", method: http.MethodGet, path: "/api/v1/tree", status: http.StatusUnauthorized},
		{name: "wrong scheme", method: http.MethodGet, path: "/api/v1/tree", header: "Basic good", status: http.StatusUnauthorized},
		{name: "invalid token", method: http.MethodGet, path: "/api/v1/tree", header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "preflight", method: http.MethodOptions, path: "/api/v1/tree", status: http.StatusOK},
		{name: "health is public", method: http.MethodGet, path: "/health", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	rec := httptest.NewRecorder()
	DevAuthMiddleware("dev-user")(echoUser()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "dev-user", rec.Body.String())
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	Recovery(logger)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "panic in handler")
	assert.Contains(t, logs.String(), `"panic":"boom"`)
	assert.NotContains(t, rec.Body.String(), "request_id")
}

func TestRecovery_ReportsRequestID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(errors.New("boom")) })
	handler := RequestLog(logger)(Recovery(logger)(panicking))

	requestID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, requestID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, requestID, problem["request_id"])
	assert.Equal(t, "internal server error", problem["detail"])
}

func TestRecovery_ReraisesAbort(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	aborting := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) })

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		Recovery(logger)(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestLog(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetRequestID(r)
		w.WriteHeader(http.StatusTeapot)
	})
	handler := RequestLog(logger)(inner)

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tree", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
		assert.Contains(t, logs.String(), `"status":418`)
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, incoming)

		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, incoming, seen)
	})

	t.Run("replaces malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "not a uuid")

		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, "not a uuid", seen)
	})
}
