package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	businessflow "github.com/amirphl/getaround-pricing/business_flow"
	"github.com/amirphl/getaround-pricing/pricing"
	"github.com/gofiber/fiber/v3"
)

// PricingHandlerInterface defines the price estimation endpoints
type PricingHandlerInterface interface {
	Predict(c fiber.Ctx) error
	ModelInfo(c fiber.Ctx) error
}

// PricingHandler serves price estimates
type PricingHandler struct {
	baseHandler
	flow businessflow.PricingFlow
}

func NewPricingHandler(flow businessflow.PricingFlow, logger *slog.Logger, timeout time.Duration) PricingHandlerInterface {
	return &PricingHandler{
		baseHandler: newBaseHandler(logger, timeout),
		flow:        flow,
	}
}

// Predict estimates the daily rental price of a car
// @Summary Estimate Rental Price
// @Description Estimate the daily rental price of a car from its description. Every field is required; unknown categorical values are accepted and reported in unknown_categories.
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body dto.PredictPriceRequest true "Car description"
// @Success 200 {object} dto.APIResponse{data=dto.PredictPriceResponse} "Estimated price"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Inference failed"
// @Failure 503 {object} dto.APIResponse "Pricing model unavailable"
// @Router /api/v1/pricing/predict [post]
func (h *PricingHandler) Predict(c fiber.Ctx) error {
	var req dto.PredictPriceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/pricing/predict")
	defer cancel()

	res, err := h.flow.EstimatePrice(ctx, &req, h.clientMetadata(c))
	if err != nil {
		if businessflow.IsPricingValidationError(err) {
			var details any
			var pe *pricing.PipelineError
			if errors.As(err, &pe) && pe.Field != "" {
				details = []string{pe.Error()}
			}
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid car description", "VALIDATION_ERROR", details)
		}
		if businessflow.IsModelUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Pricing model is not available", "MODEL_UNAVAILABLE", nil)
		}
		if businessflow.IsInferenceError(err) {
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to estimate price", "INFERENCE_FAILED", nil)
		}
		h.logger.Error("estimate price failed", "request_id", requestID(c), "error", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to estimate price", "PRICE_ESTIMATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Summary, res)
}

// ModelInfo describes the loaded pricing artifacts
// @Summary Pricing Model Info
// @Description Artifact paths, versions and encoded feature names of the pricing model
// @Tags Pricing
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ModelInfoResponse} "Model loaded"
// @Failure 503 {object} dto.APIResponse{data=dto.ModelInfoResponse} "Pricing model unavailable"
// @Router /api/v1/pricing/model [get]
func (h *PricingHandler) ModelInfo(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/pricing/model")
	defer cancel()

	res, err := h.flow.ModelInfo(ctx)
	if err != nil {
		h.logger.Error("model info failed", "request_id", requestID(c), "error", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to describe pricing model", "MODEL_INFO_FAILED", nil)
	}
	if !res.Loaded {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.APIResponse{
			Success: false,
			Message: "Pricing model is not available",
			Data:    res,
			Error:   dto.ErrorDetail{Code: "MODEL_UNAVAILABLE"},
		})
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Pricing model loaded", res)
}
