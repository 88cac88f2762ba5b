package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentimeter/sentimeter/internal/metrics"
)

func TestMetricsServer(t *testing.T) {
	t.Run("Success_ServesMetricsEndpoint", func(t *testing.T) {
		provider, err := metrics.NewProvider("sentimeter")
		require.NoError(t, err)

		server := NewMetricsServer("localhost", 8081, createTestLogger(), provider)

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Success_NilProviderServesNothing", func(t *testing.T) {
		server := NewMetricsServer("localhost", 8081, createTestLogger(), nil)

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
