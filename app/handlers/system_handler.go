package handlers

import (
	"log/slog"

	"github.com/amirphl/getaround-pricing/app/dto"
	businessflow "github.com/amirphl/getaround-pricing/business_flow"
	"github.com/amirphl/getaround-pricing/config"
	"github.com/amirphl/getaround-pricing/utils"
	"github.com/gofiber/fiber/v3"
)

const serviceName = "getaround-pricing-api"

// SystemHandlerInterface defines the service endpoints
type SystemHandlerInterface interface {
	Welcome(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

// SystemHandler serves liveness and the root greeting
type SystemHandler struct {
	baseHandler
	pricingFlow businessflow.PricingFlow
	deployment  config.DeploymentConfig
}

func NewSystemHandler(pricingFlow businessflow.PricingFlow, deployment config.DeploymentConfig, logger *slog.Logger) SystemHandlerInterface {
	return &SystemHandler{
		baseHandler: newBaseHandler(logger, 0),
		pricingFlow: pricingFlow,
		deployment:  deployment,
	}
}

// Welcome handles the root endpoint
// @Summary Welcome
// @Description Greeting with pointers to the API documentation
// @Tags Health
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Router / [get]
func (h *SystemHandler) Welcome(c fiber.Ctx) error {
	return h.SuccessResponse(c, fiber.StatusOK, "Getaround rental price estimation API. The API documentation is at /swagger", fiber.Map{
		"service": serviceName,
		"version": h.deployment.Version,
		"docs":    "/api/v1/swagger.json",
	})
}

// Health handles health check requests
// @Summary Health Check
// @Description Check the health status of the API and whether the pricing model is loaded
// @Tags Health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse} "Service is healthy"
// @Router /api/v1/health [get]
func (h *SystemHandler) Health(c fiber.Ctx) error {
	loaded := h.pricingFlow.ModelLoaded()
	status := "healthy"
	if !loaded {
		status = "degraded"
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Service is "+status, dto.HealthResponse{
		Status:      status,
		Timestamp:   utils.UTCNow(),
		Service:     serviceName,
		Version:     h.deployment.Version,
		Environment: h.deployment.Environment,
		CommitHash:  h.deployment.CommitHash,
		BuildTime:   h.deployment.BuildTime,
		ModelLoaded: loaded,
	})
}
