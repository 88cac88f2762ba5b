package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestProvider(t *testing.T) {
	provider, err := NewProvider("sentimeter")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	assert.NotNil(t, provider.MeterProvider())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("sentimeter")
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	business, err := NewBusinessMetrics(provider.MeterProvider(), "sentimeter")
	require.NoError(t, err)

	ctx := context.Background()
	business.RecordOperation(ctx, "predictions", "prediction_create", "success")
	business.RecordDuration(ctx, "predictions", "prediction_create", 25*time.Millisecond, "success")
	business.RecordPrediction(ctx, "v1", "POSITIVE")
	business.RecordPrediction(ctx, "v2", "NEGATIVE")

	// The recorded instruments must show up in the Prometheus exposition.
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "sentimeter_operations_total")
	assert.Contains(t, body, "sentimeter_predictions_total")
	assert.Contains(t, body, `model_version="v1"`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	business := NewNoOpBusinessMetrics()

	ctx := context.Background()
	business.RecordOperation(ctx, "auth", "login", "success")
	business.RecordDuration(ctx, "auth", "login", time.Millisecond, "error")
	business.RecordPrediction(ctx, "v1", "NEGATIVE")
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	provider, err := NewProvider("sentimeter")
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "sentimeter"))
	router.GET("/api/predictions/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/predictions/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Unmatched routes are collapsed into a single label value.
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, "sentimeter_http_requests_total")
	assert.Contains(t, body, `path="/api/predictions/:id"`)
	assert.Contains(t, body, `path="unknown"`)
}
