// Package integration provides end-to-end integration tests for the
// Sentimeter API. Tests run every endpoint against a real SQLite database
// through the full HTTP stack.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentimeter/sentimeter/internal/app"
	authDTO "github.com/sentimeter/sentimeter/internal/auth/http/dto"
	"github.com/sentimeter/sentimeter/internal/config"
	predictionDTO "github.com/sentimeter/sentimeter/internal/prediction/http/dto"
	"github.com/sentimeter/sentimeter/internal/testutil"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	token     string
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	useAuth bool,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if useAuth {
		req.Header.Set("Authorization", "Bearer "+ctx.token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// registerUser creates an account through the API and returns its access token.
func (ctx *integrationTestContext) registerUser(t *testing.T, email, password string) string {
	t.Helper()

	requestBody := authDTO.RegisterRequest{Email: email, Password: password}
	resp, body := ctx.makeRequest(t, http.MethodPost, "/api/register", requestBody, false)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "unexpected register response: %s", body)

	var response authDTO.TokenResponse
	require.NoError(t, json.Unmarshal(body, &response))
	require.NotEmpty(t, response.AccessToken)

	return response.AccessToken
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	// Setup a migrated database file; the container opens its own connection.
	dbPath := testutil.SetupSQLiteDBFile(t)

	cfg := &config.Config{
		ServerHost:            "localhost",
		ServerPort:            8080,
		DBDriver:              "sqlite",
		DBConnectionString:    dbPath,
		DBMaxOpenConnections:  1,
		DBConnMaxLifetime:     time.Hour,
		LogLevel:              "error",
		AuthSecret:            "integration-test-secret",
		AuthTokenLifetime:     time.Hour,
		RateLimitLoginEnabled: false,
		MetricsEnabled:        false,
	}

	container := app.NewContainer(cfg)

	db, err := container.DB()
	require.NoError(t, err, "failed to get database connection")

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	handler := httpSrv.GetHandler()
	require.NotNil(t, handler, "handler should not be nil")

	testServer := httptest.NewServer(handler)

	return &integrationTestContext{
		container: container,
		db:        db,
		server:    testServer,
	}
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}

	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}
}

// TestIntegration_Health_BasicChecks tests the health and readiness endpoints.
func TestIntegration_Health_BasicChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	t.Run("01_HealthCheck", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response map[string]string
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		assert.Equal(t, "healthy", response["status"])
	})

	t.Run("02_ReadinessCheck", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/ready", nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response map[string]string
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		assert.Equal(t, "ready", response["status"])
	})
}

// TestIntegration_Auth_CompleteFlow tests registration, login and token-based
// access through the full middleware chain.
func TestIntegration_Auth_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	// [1/7] Test POST /api/register - Create an account
	t.Run("01_Register", func(t *testing.T) {
		requestBody := authDTO.RegisterRequest{
			Email:    "alice@example.com",
			Password: "s3cr3t-password",
		}

		resp, body := ctx.makeRequest(t, http.MethodPost, "/api/register", requestBody, false)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var response authDTO.TokenResponse
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		assert.NotEmpty(t, response.AccessToken)
		assert.Equal(t, "bearer", response.TokenType)
	})

	// [2/7] Test POST /api/register - Duplicate email is rejected
	t.Run("02_RegisterDuplicateEmail", func(t *testing.T) {
		requestBody := authDTO.RegisterRequest{
			Email:    "alice@example.com",
			Password: "another-password",
		}

		resp, body := ctx.makeRequest(t, http.MethodPost, "/api/register", requestBody, false)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		var response map[string]string
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		assert.Equal(t, "conflict", response["error"])
	})

	// [3/7] Test POST /api/login - Valid credentials
	t.Run("03_Login", func(t *testing.T) {
		requestBody := authDTO.LoginRequest{
			Email:    "alice@example.com",
			Password: "s3cr3t-password",
		}

		resp, body := ctx.makeRequest(t, http.MethodPost, "/api/login", requestBody, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response authDTO.TokenResponse
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		assert.NotEmpty(t, response.AccessToken)
		assert.Equal(t, "bearer", response.TokenType)

		ctx.token = response.AccessToken
	})

	// [4/7] Test POST /api/login - Wrong password gets a generic 401
	t.Run("04_LoginWrongPassword", func(t *testing.T) {
		requestBody := authDTO.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong-password",
		}

		resp, body := ctx.makeRequest(t, http.MethodPost, "/api/login", requestBody, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"error":"unauthorized","message":"Authentication is required"}`, string(body))
	})

	// [5/7] Test POST /api/login - Unknown email is indistinguishable from wrong password
	t.Run("05_LoginUnknownEmail", func(t *testing.T) {
		requestBody := authDTO.LoginRequest{
			Email:    "nobody@example.com",
			Password: "s3cr3t-password",
		}

		resp, body := ctx.makeRequest(t, http.MethodPost, "/api/login", requestBody, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"error":"unauthorized","message":"Authentication is required"}`, string(body))
	})

	// [6/7] Test protected endpoint without a token
	t.Run("06_ProtectedWithoutToken", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/predictions", nil, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"error":"unauthorized","message":"Authentication is required"}`, string(body))
	})

	// [7/7] Test protected endpoint with the issued token
	t.Run("07_ProtectedWithToken", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/predictions", nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response predictionDTO.ListPredictionsResponse
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		assert.Empty(t, response.Data)
		assert.Contains(t, string(body), `"data":[]`)
	})
}

// TestIntegration_Predictions_CompleteFlow tests prediction creation,
// retrieval, listing, stats and per-user isolation.
func TestIntegration_Predictions_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	ctx.token = ctx.registerUser(t, "bob@example.com", "s3cr3t-password")

	var firstPredictionID string

	// [1/8] Test POST /api/predictions - Default model version
	t.Run("01_CreatePredictionDefaultVersion", func(t *testing.T) {
		requestBody := predictionDTO.CreatePredictionRequest{
			Text: "great stuff", // 11 runes: POSITIVE with score 0.11 under v1
		}

		resp, body := ctx.makeRequest(t, http.MethodPost, "/api/predictions", requestBody, true)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var response predictionDTO.PredictionResponse
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		assert.NotEmpty(t, response.ID)
		assert.Equal(t, "v1", response.ModelVersion)
		assert.Equal(t, "great stuff", response.Text)
		assert.Equal(t, "POSITIVE", response.Label)
		assert.InDelta(t, 0.11, response.Score, 0.0001)
		assert.False(t, response.CreatedAt.IsZero())

		firstPredictionID = response.ID
	})

	// [2/8] Test POST /api/predictions - Explicit v2 model
	t.Run("02_CreatePredictionV2", func(t *testing.T) {
		requestBody := predictionDTO.CreatePredictionRequest{
			Text:         "twelve runes", // 12 runes: NEGATIVE with score 0.84 under v2
			ModelVersion: "v2",
		}

		resp, body := ctx.makeRequest(t, http.MethodPost, "/api/predictions", requestBody, true)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var response predictionDTO.PredictionResponse
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		assert.Equal(t, "v2", response.ModelVersion)
		assert.Equal(t, "NEGATIVE", response.Label)
		assert.InDelta(t, 0.84, response.Score, 0.0001)
	})

	// [3/8] Test POST /api/predictions - Validation failures
	t.Run("03_CreatePredictionValidation", func(t *testing.T) {
		testCases := []struct {
			name        string
			requestBody predictionDTO.CreatePredictionRequest
		}{
			{"EmptyText", predictionDTO.CreatePredictionRequest{Text: ""}},
			{"BlankText", predictionDTO.CreatePredictionRequest{Text: "   "}},
			{"UnknownModelVersion", predictionDTO.CreatePredictionRequest{Text: "hello", ModelVersion: "v3"}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/api/predictions", tc.requestBody, true)
				assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			})
		}
	})

	// [4/8] Test GET /api/predictions/:id
	t.Run("04_GetPrediction", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/predictions/"+firstPredictionID, nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response predictionDTO.PredictionResponse
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		assert.Equal(t, firstPredictionID, response.ID)
		assert.Equal(t, "great stuff", response.Text)
	})

	// [5/8] Test GET /api/predictions/:id - Unknown and malformed IDs
	t.Run("05_GetPredictionErrors", func(t *testing.T) {
		resp, _ := ctx.makeRequest(
			t, http.MethodGet, "/api/predictions/0198c6a1-0000-7000-8000-000000000000", nil, true)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = ctx.makeRequest(t, http.MethodGet, "/api/predictions/not-a-uuid", nil, true)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	// [6/8] Test GET /api/predictions - Newest first and pagination
	t.Run("06_ListPredictions", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/predictions", nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response predictionDTO.ListPredictionsResponse
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		require.Len(t, response.Data, 2)
		assert.Equal(t, "twelve runes", response.Data[0].Text)
		assert.Equal(t, "great stuff", response.Data[1].Text)

		resp, body = ctx.makeRequest(t, http.MethodGet, "/api/predictions?offset=1&limit=1", nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		err = json.Unmarshal(body, &response)
		require.NoError(t, err)
		require.Len(t, response.Data, 1)
		assert.Equal(t, firstPredictionID, response.Data[0].ID)
	})

	// [7/8] Test GET /api/stats
	t.Run("07_Stats", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/stats", nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response struct {
			Total          int64            `json:"total"`
			ByClass        map[string]int64 `json:"by_class"`
			ByModelVersion map[string]int64 `json:"by_model_version"`
		}
		err := json.Unmarshal(body, &response)
		require.NoError(t, err)
		assert.Equal(t, int64(2), response.Total)
		assert.Equal(t, int64(1), response.ByClass["POSITIVE"])
		assert.Equal(t, int64(1), response.ByClass["NEGATIVE"])
		assert.Equal(t, int64(1), response.ByModelVersion["v1"])
		assert.Equal(t, int64(1), response.ByModelVersion["v2"])
	})

	// [8/8] Test per-user isolation with a second account
	t.Run("08_CrossUserIsolation", func(t *testing.T) {
		ownerToken := ctx.token
		ctx.token = ctx.registerUser(t, "carol@example.com", "s3cr3t-password")
		defer func() { ctx.token = ownerToken }()

		// Another user's prediction is reported as not found.
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/api/predictions/"+firstPredictionID, nil, true)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/predictions", nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var listResponse predictionDTO.ListPredictionsResponse
		require.NoError(t, json.Unmarshal(body, &listResponse))
		assert.Empty(t, listResponse.Data)

		resp, body = ctx.makeRequest(t, http.MethodGet, "/api/stats", nil, true)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var statsResponse struct {
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(body, &statsResponse))
		assert.Equal(t, int64(0), statsResponse.Total)
	})
}

// TestIntegration_TokenLifecycle tests that issued tokens expire and that
// tampered tokens are rejected with the same generic response.
func TestIntegration_TokenLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	ctx.token = ctx.registerUser(t, "dave@example.com", "s3cr3t-password")

	t.Run("01_TamperedTokenRejected", func(t *testing.T) {
		validToken := ctx.token
		defer func() { ctx.token = validToken }()

		// Flip the last character of the signature segment.
		last := validToken[len(validToken)-1]
		replacement := byte('A')
		if last == replacement {
			replacement = 'B'
		}
		ctx.token = fmt.Sprintf("%s%c", validToken[:len(validToken)-1], replacement)

		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/predictions", nil, true)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"error":"unauthorized","message":"Authentication is required"}`, string(body))
	})

	t.Run("02_GarbageTokenRejected", func(t *testing.T) {
		validToken := ctx.token
		defer func() { ctx.token = validToken }()

		ctx.token = "not.a.token"

		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/predictions", nil, true)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"error":"unauthorized","message":"Authentication is required"}`, string(body))
	})
}
