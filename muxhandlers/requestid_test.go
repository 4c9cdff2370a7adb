package muxhandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/apispec/mux"
	"github.com/vitalvas/apispec/view"
)

var (
	uuidV4Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	uuidV7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		config         RequestIDConfig
		incomingHeader string
		wantHeader     string
		wantGenerated  bool
	}{
		{
			name:          "generates UUID v7 by default",
			config:        RequestIDConfig{},
			wantGenerated: true,
		},
		{
			name:           "does not trust incoming by default",
			config:         RequestIDConfig{},
			incomingHeader: "existing-id",
			wantGenerated:  true,
		},
		{
			name:           "trusts incoming when configured",
			config:         RequestIDConfig{TrustIncoming: true},
			incomingHeader: "existing-id",
			wantHeader:     "existing-id",
		},
		{
			name:       "custom header name",
			config:     RequestIDConfig{HeaderName: "X-Trace-ID", GenerateFunc: func(_ *http.Request) string { return "trace-123" }},
			wantHeader: "trace-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured, fromContext string

			headerName := tt.config.HeaderName
			if headerName == "" {
				headerName = "X-Request-ID"
			}

			r := mux.NewRouter()
			r.HandleFunc("/test", func(_ http.ResponseWriter, req *http.Request) {
				captured = req.Header.Get(headerName)
				fromContext = RequestIDFromContext(req.Context())
			}).Methods(http.MethodGet)
			r.Use(RequestIDMiddleware(tt.config))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incomingHeader != "" {
				req.Header.Set(headerName, tt.incomingHeader)
			}
			r.ServeHTTP(w, req)

			response := w.Header().Get(headerName)
			if tt.wantGenerated {
				assert.Regexp(t, uuidV7Regex, response)
			} else {
				assert.Equal(t, tt.wantHeader, response)
			}
			assert.Equal(t, response, captured)
			assert.Equal(t, response, fromContext)
		})
	}

	t.Run("empty id does not set headers", func(t *testing.T) {
		r := mux.NewRouter()
		r.HandleFunc("/test", func(_ http.ResponseWriter, req *http.Request) {
			assert.Empty(t, RequestIDFromContext(req.Context()))
		})
		r.Use(RequestIDMiddleware(RequestIDConfig{
			GenerateFunc: func(_ *http.Request) string { return "" },
		}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Empty(t, w.Header().Get("X-Request-ID"))
	})
}

func TestGenerateUUID(t *testing.T) {
	assert.Regexp(t, uuidV4Regex, GenerateUUIDv4(nil))
	assert.Regexp(t, uuidV7Regex, GenerateUUIDv7(nil))
}

func TestRequestIDHandler(t *testing.T) {
	t.Run("adds the request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(RequestIDHandler(slog.NewJSONHandler(&buf, nil))).With("component", "test")

		ctx := context.WithValue(context.Background(), requestIDKey{}, "req-1")
		logger.InfoContext(ctx, "hello")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "req-1", rec["request_id"])
		assert.Equal(t, "test", rec["component"])
	})

	t.Run("without request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(RequestIDHandler(slog.NewJSONHandler(&buf, nil)))
		logger.Info("hello")

		assert.NotContains(t, buf.String(), "request_id")
	})

	t.Run("view failures are logged with the request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(RequestIDHandler(slog.NewJSONHandler(&buf, nil)))

		r := mux.NewRouter()
		r.Handle("/bands", view.Func("bands", func(*view.Call) (any, error) {
			return nil, assert.AnError
		}))
		r.Use(
			RequestIDMiddleware(RequestIDConfig{GenerateFunc: func(*http.Request) string { return "req-2" }}),
			view.Middleware(view.Settings{Logger: logger}),
		)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bands", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, buf.String(), `"request_id":"req-2"`)
	})
}
