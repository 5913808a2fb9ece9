package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_SearchDisabledIsDegraded(t *testing.T) {
	ts := setupTestServer(t)
	ts.services.Search = nil

	out, err := ts.handleHealthCheck(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, statusDegraded, out.Body.Status)
	assert.Equal(t, statusDegraded, out.Body.Components["search"].Status)
	assert.Equal(t, statusHealthy, out.Body.Components["storage"].Status)
}

func TestHealthCheck_ClosedStoreIsUnhealthy(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, statusUnhealthy, env.Data.Status)
	assert.Equal(t, "storage read failed", env.Data.Components["storage"].Message)
}

func TestHealthCheck_SearchReportsDocumentCount(t *testing.T) {
	ts := setupTestServer(t)
	ts.addBook(t, "미드나이트 라이브러리", 300)

	health := ts.checkSearchIndex()
	assert.Equal(t, statusHealthy, health.Status)
	assert.Equal(t, "1 documents", health.Message)
}

func TestFormatSSEStatus(t *testing.T) {
	assert.Equal(t, "no connected clients", formatSSEStatus(0))
	assert.Equal(t, "1 connected client", formatSSEStatus(1))
	assert.Equal(t, "3 connected clients", formatSSEStatus(3))
}
