package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"model-catalog-service/internal/catalog"
	mid "model-catalog-service/internal/middleware"
	"model-catalog-service/internal/store"
	"model-catalog-service/pkg/config"
	"model-catalog-service/pkg/identity"
	"model-catalog-service/prometheus"
)

const testSigningKey = "handler-test-key"

func TestMain(m *testing.M) {
	// Metrics are package-level and promauto registers into the default
	// registry, so initialize them once for the whole package.
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "test"}})
	os.Exit(m.Run())
}

type testServer struct {
	echo *echo.Echo
	mem  *store.Memory
	svc  *catalog.Service
}

func newTestServer() *testServer {
	mem := store.NewMemory()
	svc := catalog.NewService(mem.Models(), mem.Purchases(), zap.NewNop())
	modelHandler := NewModelHandler(svc, "test")
	purchaseHandler := NewPurchaseHandler(svc, "test")
	verifier := identity.NewVerifier(&config.AuthConfig{SigningKey: testSigningKey})

	e := echo.New()
	requireAuth := mid.AuthMiddleware(verifier)
	optionalAuth := mid.OptionalAuthMiddleware(verifier)

	api := e.Group("/api/v1")
	api.GET("/models", modelHandler.List, optionalAuth)
	api.GET("/models/featured", modelHandler.Featured)
	api.GET("/models/:id", modelHandler.Get, requireAuth)
	api.GET("/my-models", modelHandler.Mine, requireAuth)
	api.POST("/add-model", modelHandler.Create, requireAuth)
	api.PUT("/update-model/:id", modelHandler.Update, requireAuth)
	api.DELETE("/delete-model/:id", modelHandler.Delete, requireAuth)
	api.POST("/purchase-model/:id", modelHandler.Purchase, requireAuth)
	api.GET("/purchased-model/:id", modelHandler.PurchaseCount, requireAuth)
	api.POST("/repair-model/:id", modelHandler.Repair, requireAuth)
	api.GET("/my-purchases", purchaseHandler.Mine, requireAuth)
	api.GET("/model-purchases/:modelId", purchaseHandler.ByModel, requireAuth)
	api.GET("/purchase-stats", purchaseHandler.Stats, requireAuth)

	return &testServer{echo: e, mem: mem, svc: svc}
}

func tokenFor(t *testing.T, email string) string {
	t.Helper()
	claims := identity.Claims{
		UserID: "uid-" + email,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return signed
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func (ts *testServer) seed(t *testing.T, creator string) string {
	t.Helper()
	m, err := ts.svc.Create(context.Background(), creator, catalog.ModelInput{
		Name:        "VisionNet",
		Framework:   "pytorch",
		UseCase:     "image classification",
		Dataset:     "imagenet",
		Description: "A convolutional classifier",
		Image:       "http://example.com/visionnet.png",
	})
	require.NoError(t, err)
	return m.ID.Hex()
}

const validBody = `{
	"name": "VisionNet",
	"framework": "pytorch",
	"useCase": "image classification",
	"dataset": "imagenet",
	"description": "A convolutional classifier",
	"image": "http://example.com/visionnet.png"
}`

func TestProtectedRouteWithoutToken(t *testing.T) {
	ts := newTestServer()

	rec, envelope := ts.do(t, http.MethodGet, "/api/v1/my-models", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, envelope.Success)

	// No model was touched: the store is still empty.
	models, err := ts.mem.Models().Find(context.Background(), store.ModelFilter{})
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestProtectedRouteMalformedHeader(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/my-models", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRouteInvalidToken(t *testing.T) {
	ts := newTestServer()

	rec, envelope := ts.do(t, http.MethodGet, "/api/v1/my-models", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", envelope.Message)
}

func TestFeaturedIsPublic(t *testing.T) {
	ts := newTestServer()
	ts.seed(t, "alice@example.com")

	rec, envelope := ts.do(t, http.MethodGet, "/api/v1/models/featured", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
	require.NotNil(t, envelope.Count)
	assert.Equal(t, 1, *envelope.Count)
}

func TestCreateModel(t *testing.T) {
	ts := newTestServer()

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/add-model", tokenFor(t, "alice@example.com"), validBody)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, envelope.Success)
	assert.Equal(t, "Model added successfully", envelope.Message)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "VisionNet", data["name"])
	assert.Equal(t, "alice@example.com", data["createdBy"])
	assert.Equal(t, float64(0), data["purchased"])
}

func TestCreateModelMissingFields(t *testing.T) {
	ts := newTestServer()

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/add-model", tokenFor(t, "alice@example.com"),
		`{"name": "VisionNet"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Message, "framework")
	assert.Contains(t, envelope.Message, "image")
}

func TestGetModelInvalidID(t *testing.T) {
	ts := newTestServer()

	rec, envelope := ts.do(t, http.MethodGet, "/api/v1/models/not-hex", tokenFor(t, "alice@example.com"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid model ID format", envelope.Message)
}

func TestGetModelNotFound(t *testing.T) {
	ts := newTestServer()

	rec, envelope := ts.do(t, http.MethodGet, "/api/v1/models/64a000000000000000000000", tokenFor(t, "alice@example.com"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Model not found", envelope.Message)
}

func TestUpdateModelForbiddenForNonOwner(t *testing.T) {
	ts := newTestServer()
	id := ts.seed(t, "alice@example.com")

	rec, envelope := ts.do(t, http.MethodPut, "/api/v1/update-model/"+id, tokenFor(t, "mallory@example.com"), validBody)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, envelope.Message, "not authorized")
}

func TestDeleteModelByOwnerCascades(t *testing.T) {
	ts := newTestServer()
	id := ts.seed(t, "alice@example.com")
	_, err := ts.svc.Purchase(context.Background(), "bob@example.com", id)
	require.NoError(t, err)

	rec, envelope := ts.do(t, http.MethodDelete, "/api/v1/delete-model/"+id, tokenFor(t, "alice@example.com"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Model deleted successfully", envelope.Message)

	count, err := ts.mem.Purchases().CountByModel(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestPurchaseModelEndpoint(t *testing.T) {
	ts := newTestServer()
	id := ts.seed(t, "alice@example.com")

	rec, envelope := ts.do(t, http.MethodPost, "/api/v1/purchase-model/"+id, tokenFor(t, "bob@example.com"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Model purchased successfully", envelope.Message)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["purchased"])
}

func TestListWithSearch(t *testing.T) {
	ts := newTestServer()
	ts.seed(t, "alice@example.com")

	rec, envelope := ts.do(t, http.MethodGet, "/api/v1/models?search=vision", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, envelope.Count)
	assert.Equal(t, 1, *envelope.Count)

	rec, envelope = ts.do(t, http.MethodGet, "/api/v1/models?search=nomatch", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, envelope.Count)
	assert.Equal(t, 0, *envelope.Count)
}

func TestMyPurchasesEndpoint(t *testing.T) {
	ts := newTestServer()
	id := ts.seed(t, "alice@example.com")
	_, err := ts.svc.Purchase(context.Background(), "bob@example.com", id)
	require.NoError(t, err)

	rec, envelope := ts.do(t, http.MethodGet, "/api/v1/my-purchases", tokenFor(t, "bob@example.com"), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, envelope.Count)
	assert.Equal(t, 1, *envelope.Count)
}

func TestRepairEndpointForbiddenForNonOwner(t *testing.T) {
	ts := newTestServer()
	id := ts.seed(t, "alice@example.com")

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/repair-model/"+id, tokenFor(t, "mallory@example.com"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
