package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serve(srv *http.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNewServer_Healthz(t *testing.T) {
	srv := NewServer(":0", func(context.Context) error { return errors.New("db down") })

	rec := serve(srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestNewServer_Readyz(t *testing.T) {
	var checked bool
	srv := NewServer(":0", func(ctx context.Context) error {
		checked = true
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})

	rec := serve(srv, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, checked)
}

func TestNewServer_ReadyzFailing(t *testing.T) {
	srv := NewServer(":0", func(context.Context) error { return errors.New("trigger store unreachable") })

	rec := serve(srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "trigger store unreachable")
}

func TestNewServer_NilReady(t *testing.T) {
	rec := serve(NewServer(":0", nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewServer_Metrics(t *testing.T) {
	rec := serve(NewServer(":0", nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
