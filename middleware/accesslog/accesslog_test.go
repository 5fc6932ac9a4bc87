package accesslog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_LogsStatusAndPath(t *testing.T) {
	require := require.New(t)
	core, logs := observer.New(zapcore.InfoLevel)

	h := Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/books", nil))

	require.Equal(1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal("/api/books", fields["path"])
	require.Equal(int64(http.StatusTeapot), fields["status"])
	require.Equal(int64(len("short and stout")), fields["bytes"])
}

func TestMiddleware_ServerErrorsAreWarnings(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/subscribe", nil))

	require.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Middleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
}
