// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	"github.com/amirphl/getaround-pricing/app/handlers"
	"github.com/amirphl/getaround-pricing/app/middleware"
	"github.com/amirphl/getaround-pricing/config"
	_ "github.com/amirphl/getaround-pricing/docs"
	"github.com/amirphl/getaround-pricing/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

const requestIDHeader = "X-Request-ID"

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups the endpoint handlers mounted by the router
type Handlers struct {
	System      handlers.SystemHandlerInterface
	Pricing     handlers.PricingHandlerInterface
	Exploration handlers.ExplorationHandlerInterface
	Admin       handlers.AdminHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	cfg            *config.ProductionConfig
	accessLog      io.Writer
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router. Access logs are written to accessLog,
// or to stdout when it is nil.
func NewFiberRouter(cfg *config.ProductionConfig, accessLog io.Writer, h Handlers, authMiddleware *middleware.AuthMiddleware) Router {
	if accessLog == nil {
		accessLog = os.Stdout
	}

	bodyLimit := cfg.Server.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:      "Getaround Pricing API",
		ServerHeader: "getaround-pricing",
		ErrorHandler: errorHandler,
		BodyLimit:    bodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ProxyHeader:  cfg.Server.ProxyHeader,
		TrustProxy:   len(cfg.Server.TrustedProxies) > 0,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Proxies: cfg.Server.TrustedProxies,
		},
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		cfg:            cfg,
		accessLog:      accessLog,
		handlers:       h,
		authMiddleware: authMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	r.app.Get("/", r.handlers.System.Welcome)

	if r.cfg.Metrics.Enabled {
		path := r.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.handlers.System.Health)

	api.Get("/docs", r.getAPIDocumentation)
	api.Get("/swagger.json", r.serveSwaggerJSON)
	r.app.Get("/swagger", r.serveSwaggerUI)

	api.Use(r.rateLimiter(r.cfg.Security.GlobalRateLimit, func(c fiber.Ctx) bool {
		return c.Path() == "/api/v1/health"
	}))

	pricing := api.Group("/pricing")
	pricing.Post("/predict", r.rateLimiter(r.cfg.Security.PredictRateLimit, nil), r.handlers.Pricing.Predict)
	pricing.Get("/model", r.handlers.Pricing.ModelInfo)

	exploration := api.Group("/exploration")
	exploration.Get("/brands/:brand", r.handlers.Exploration.SearchByBrand)
	exploration.Get("/mileage", r.handlers.Exploration.SearchByMaxMileage)
	exploration.Get("/unique-values", r.handlers.Exploration.UniqueValues)
	exploration.Get("/export", r.handlers.Exploration.Export)

	admin := api.Group("/admin", r.authMiddleware.AdminAuthenticate())
	admin.Post("/dataset/import", r.handlers.Admin.ImportDataset)
	admin.Get("/predictions", r.handlers.Admin.ListPredictions)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	sec := r.cfg.Security

	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    requestIDHeader,
		Generator: generateRequestID,
	}))

	r.app.Use(middleware.Metrics())

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        sec.XContentTypeOptions,
		XFrameOptions:             sec.XFrameOptions,
		HSTSMaxAge:                sec.HSTSMaxAge,
		HSTSExcludeSubdomains:     !sec.HSTSIncludeSubDoms,
		HSTSPreloadEnabled:        sec.HSTSPreload,
		ContentSecurityPolicy:     sec.CSPPolicy,
		ReferrerPolicy:            sec.ReferrerPolicy,
		CrossOriginResourcePolicy: "cross-origin",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
		Next: func(c fiber.Ctx) bool {
			// the swagger UI pulls its assets from a CDN
			return c.Path() == "/swagger"
		},
	}))

	// a wildcard origin cannot be combined with credentials
	allowCredentials := sec.AllowCredentials && !slices.Contains(sec.AllowedOrigins, "*")
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     sec.AllowedOrigins,
		AllowMethods:     sec.AllowedMethods,
		AllowHeaders:     sec.AllowedHeaders,
		ExposeHeaders:    []string{requestIDHeader, "X-Row-Count"},
		AllowCredentials: allowCredentials,
		MaxAge:           corsMaxAge(sec.CORSMaxAge),
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.Level(r.cfg.Server.CompressionLevel),
			Next: func(c fiber.Ctx) bool {
				// workbooks are already zip archives
				return strings.HasSuffix(c.Path(), "/export")
			},
		}))
	}

	// Cache middleware for static documentation
	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet ||
				(c.Path() != "/api/v1/docs" && c.Path() != "/api/v1/swagger.json")
		},
		Expiration:          30 * time.Minute,
		DisableCacheControl: false,
	}))

	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","pid":"${pid}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Stream:     r.accessLog,
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/health" || c.Path() == r.cfg.Metrics.Path
			},
		}))
	}

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				requestid.FromContext(c),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// rateLimiter limits requests per client IP over the configured window. A non-positive max disables it.
func (r *FiberRouter) rateLimiter(max int, next func(c fiber.Ctx) bool) fiber.Handler {
	if max <= 0 {
		return func(c fiber.Ctx) error { return c.Next() }
	}
	window := r.cfg.Security.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: next,
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// API documentation endpoint
func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":       "Getaround Pricing API Documentation",
			"version":     r.cfg.Deployment.Version,
			"description": "Rental price estimation and dataset exploration API",
			"endpoints":   GetRouteDocumentation(),
		},
	})
}

// Serve Swagger UI HTML page
func (r *FiberRouter) serveSwaggerUI(c fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(swaggerUIPage)
}

// Serve the generated Swagger document
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", fiber.MIMEApplicationJSON)
	return c.SendString(doc)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errCode := "INTERNAL_ERROR"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		if code < fiber.StatusInternalServerError {
			message = e.Message
			errCode = "REQUEST_ERROR"
		}
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func corsMaxAge(seconds int) int {
	if seconds <= 0 {
		return utils.CORSMaxAge
	}
	return seconds
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{
			"method":      "POST",
			"path":        "/api/v1/pricing/predict",
			"description": "Estimate the daily rental price of a car",
			"parameters": map[string]any{
				"model_key":                 "string (required) - Brand, e.g. Citroën",
				"mileage":                   "number (required) - Kilometers, >= 0",
				"engine_power":              "number (required) - Horsepower, >= 0",
				"fuel":                      "string (required) - diesel|petrol|hybrid_petrol|electro",
				"paint_color":               "string (required) - e.g. black, grey, white",
				"car_type":                  "string (required) - e.g. sedan, suv, estate",
				"private_parking_available": "boolean (required)",
				"has_gps":                   "boolean (required)",
				"has_air_conditioning":      "boolean (required)",
				"automatic_car":             "boolean (required)",
				"has_getaround_connect":     "boolean (required)",
				"has_speed_regulator":       "boolean (required)",
				"winter_tires":              "boolean (required)",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/pricing/model",
			"description": "Pricing artifact versions and encoded feature names",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/exploration/brands/:brand",
			"description": "Listings of one brand",
			"parameters": map[string]any{
				"brand": "string (required) - Brand in URL path, case sensitive",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/exploration/mileage",
			"description": "Listings with mileage lower than or equal to a bound",
			"parameters": map[string]any{
				"max_mileage": "integer (optional) - Query parameter, default 50000",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/exploration/unique-values",
			"description": "Distinct values of a column",
			"parameters": map[string]any{
				"column": "string (required) - Query parameter, e.g. fuel",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/exploration/export",
			"description": "Download matching listings as an .xlsx workbook",
			"parameters": map[string]any{
				"brand":       "string (optional) - Query parameter",
				"max_mileage": "integer (optional) - Query parameter",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/admin/dataset/import",
			"description": "Import the rental pricing dataset (admin token required)",
			"parameters": map[string]any{
				"source": "string (optional) - URL or path, defaults to the configured source",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/admin/predictions",
			"description": "Served predictions, newest first (admin token required)",
			"parameters": map[string]any{
				"model_key": "string (optional) - Query parameter",
				"limit":     "integer (optional) - Query parameter, max 500",
				"offset":    "integer (optional) - Query parameter",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/health",
			"description": "Health check endpoint",
			"parameters":  map[string]any{},
		},
	}
}

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Getaround Pricing API - Swagger UI</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-standalone-preset.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/v1/swagger.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIStandalonePreset
                ],
                layout: "StandaloneLayout",
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`
