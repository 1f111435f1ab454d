package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	"github.com/amirphl/getaround-pricing/app/handlers"
	"github.com/amirphl/getaround-pricing/app/middleware"
	"github.com/amirphl/getaround-pricing/app/services"
	businessflow "github.com/amirphl/getaround-pricing/business_flow"
	"github.com/amirphl/getaround-pricing/config"
	"github.com/amirphl/getaround-pricing/pricing"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExplorationFlow struct{}

func (stubExplorationFlow) SearchByBrand(context.Context, string) (*dto.SearchListingsResponse, error) {
	return &dto.SearchListingsResponse{Listings: []dto.CarListingItem{}}, nil
}

func (stubExplorationFlow) SearchByMaxMileage(context.Context, *dto.MaxMileageRequest) (*dto.SearchListingsResponse, error) {
	return &dto.SearchListingsResponse{Listings: []dto.CarListingItem{}}, nil
}

func (stubExplorationFlow) UniqueValues(_ context.Context, req *dto.UniqueValuesRequest) (*dto.UniqueValuesResponse, error) {
	return &dto.UniqueValuesResponse{Column: req.Column, Values: []any{}}, nil
}

func (stubExplorationFlow) Export(context.Context, *dto.ExportListingsRequest) (*dto.ExportListingsResponse, error) {
	return &dto.ExportListingsResponse{FileName: "getaround_listings.xlsx"}, nil
}

type stubDatasetFlow struct{}

func (stubDatasetFlow) Import(_ context.Context, req *dto.ImportDatasetRequest, _ *businessflow.ClientMetadata) (*dto.ImportDatasetResponse, error) {
	return &dto.ImportDatasetResponse{ImportID: 1, Source: req.Source, RowCount: 2, Generation: 1}, nil
}

func testConfig() *config.ProductionConfig {
	return &config.ProductionConfig{
		Server: config.ServerConfig{
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
		Security: config.SecurityConfig{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			GlobalRateLimit:  100,
			PredictRateLimit: 2,
			RateLimitWindow:  time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Pricing: config.PricingConfig{
			EncoderPath:   "../../pricing/testdata/preprocessor.json",
			RegressorPath: "../../pricing/testdata/linear.json",
			Currency:      "USD",
		},
		Deployment: config.DeploymentConfig{Version: "test"},
	}
}

func newTestRouter(t *testing.T) (*fiber.App, services.TokenService) {
	t.Helper()
	cfg := testConfig()

	tokens, err := services.NewTokenService(time.Hour, "test-issuer", "test-audience", "test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)

	loader := pricing.NewArtifactLoader(cfg.Pricing.EncoderPath, cfg.Pricing.RegressorPath)
	pricingFlow := businessflow.NewPricingFlow(loader, nil, cfg.Pricing, nil)

	r := NewFiberRouter(cfg, io.Discard, Handlers{
		System:      handlers.NewSystemHandler(pricingFlow, cfg.Deployment, nil),
		Pricing:     handlers.NewPricingHandler(pricingFlow, nil, time.Second),
		Exploration: handlers.NewExplorationHandler(stubExplorationFlow{}, nil, time.Second),
		Admin:       handlers.NewAdminHandler(stubDatasetFlow{}, pricingFlow, nil, time.Second),
	}, middleware.NewAuthMiddleware(tokens))
	r.SetupRoutes()
	return r.GetApp(), tokens
}

func decode(t *testing.T, resp *http.Response) dto.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var out dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, res dto.APIResponse) string {
	t.Helper()
	detail, ok := res.Error.(map[string]any)
	require.True(t, ok, "error is %T", res.Error)
	code, _ := detail["code"].(string)
	return code
}

func TestRouter_HealthCarriesRequestID(t *testing.T) {
	app, _ := newTestRouter(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Request-ID"), 16)
	assert.True(t, decode(t, resp).Success)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "caller-supplied", resp.Header.Get("X-Request-ID"))
}

func TestRouter_NotFound(t *testing.T) {
	app, _ := newTestRouter(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cars", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, decode(t, resp)))
}

func TestRouter_PredictRoute(t *testing.T) {
	app, _ := newTestRouter(t)

	body := `{"model_key":"Fiat","mileage":150000,"engine_power":90,"fuel":"diesel","paint_color":"white","car_type":"sedan",
		"private_parking_available":true,"has_gps":true,"has_air_conditioning":true,"automatic_car":false,
		"has_getaround_connect":true,"has_speed_regulator":true,"winter_tires":true}`

	send := func() *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/predict", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	for range 2 {
		resp := send()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		res := decode(t, resp)
		assert.Equal(t, 93.06, res.Data.(map[string]any)["prediction"])
	}

	// the predict limiter allows two requests per window
	resp := send()
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errorCode(t, decode(t, resp)))
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	app, tokens := newTestRouter(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/admin/dataset/import", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_AUTHORIZATION_HEADER", errorCode(t, decode(t, resp)))

	token, err := tokens.GenerateAdminToken("ops")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/dataset/import", strings.NewReader(`{"source":"data/pricing.csv"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	res := decode(t, resp)
	assert.Equal(t, "data/pricing.csv", res.Data.(map[string]any)["source"])
}

func TestRouter_ExplorationRoutes(t *testing.T) {
	app, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/exploration/brands/Renault",
		"/api/v1/exploration/mileage?max_mileage=1000",
		"/api/v1/exploration/unique-values?column=fuel",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/exploration/export", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "getaround_listings.xlsx")
}

func TestRouter_MetricsAndDocs(t *testing.T) {
	app, _ := newTestRouter(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "http_requests_total")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/swagger.json", nil))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	resp.Body.Close()
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Contains(t, doc["paths"], "/api/v1/pricing/predict")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/docs", nil))
	require.NoError(t, err)
	res := decode(t, resp)
	assert.Len(t, res.Data.(map[string]any)["endpoints"], len(GetRouteDocumentation()))
}
