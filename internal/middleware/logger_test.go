package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		write     bool
		wantLevel zapcore.Level
		wantCode  int
	}{
		{name: "Created", status: http.StatusCreated, write: true, wantLevel: zapcore.InfoLevel, wantCode: http.StatusCreated},
		{name: "Implicit OK", wantLevel: zapcore.InfoLevel, wantCode: http.StatusOK},
		{name: "Client error", status: http.StatusNotFound, wantLevel: zapcore.WarnLevel, wantCode: http.StatusNotFound},
		{name: "Server error", status: http.StatusBadGateway, wantLevel: zapcore.ErrorLevel, wantCode: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				if tt.write {
					_, _ = w.Write([]byte("ok"))
				}
			})
			handler := middleware.RequestID(LoggerMiddleware(zap.New(core))(next))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1.0/$batch", nil))
			assert.Equal(t, tt.wantCode, w.Code)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.wantLevel, entry.Level)

			fields := entry.ContextMap()
			assert.Equal(t, "/v1.0/$batch", fields["path"])
			assert.Equal(t, int64(tt.wantCode), fields["status"])
			assert.NotEmpty(t, fields["request_id"])
		})
	}
}
