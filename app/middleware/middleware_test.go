package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	"github.com/amirphl/getaround-pricing/app/services"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminApp(t *testing.T) (*fiber.App, services.TokenService) {
	t.Helper()
	tokens, err := services.NewTokenService(time.Hour, "test-issuer", "test-audience", "test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/admin", NewAuthMiddleware(tokens).AdminAuthenticate(), func(c fiber.Ctx) error {
		subject, ok := GetAdminSubjectFromContext(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		claims, ok := GetTokenClaimsFromContext(c)
		if !ok || claims.Subject != subject {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(subject)
	})
	return app, tokens
}

func TestAdminAuthenticate(t *testing.T) {
	app, tokens := newAdminApp(t)
	token, err := tokens.GenerateAdminToken("ops")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{name: "missing header", header: "", status: fiber.StatusUnauthorized, code: "MISSING_AUTHORIZATION_HEADER"},
		{name: "basic auth", header: "Basic b3BzOnNlY3JldA==", status: fiber.StatusUnauthorized, code: "INVALID_AUTHORIZATION_FORMAT"},
		{name: "garbage token", header: "Bearer not-a-token", status: fiber.StatusUnauthorized, code: "TOKEN_INVALID"},
		{name: "valid token", header: "Bearer " + token, status: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			if tt.code == "" {
				assert.Equal(t, "ops", string(body))
				return
			}

			var envelope struct {
				Success bool            `json:"success"`
				Error   dto.ErrorDetail `json:"error"`
			}
			require.NoError(t, json.Unmarshal(body, &envelope))
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.code, envelope.Error.Code)
		})
	}
}

func requestsTotal(t *testing.T) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestMetrics(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/ok", func(c fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", func(c fiber.Ctx) error { return fiber.ErrServiceUnavailable })

	before := requestsTotal(t)
	for _, path := range []string{"/ok", "/fail", "/missing"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, before+3, requestsTotal(t))
}
