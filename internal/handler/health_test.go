package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePool struct {
	pingErr error
}

func (f *fakePool) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakePool) Close()                         {}

func TestHandleHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealthz()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleReadyz(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleReadyz(&fakePool{})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReadyz_DatabaseDown(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleReadyz(&fakePool{pingErr: assert.AnError})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")
}

func TestHandleVersion(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleVersion()(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_version")
}
