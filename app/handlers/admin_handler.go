package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	"github.com/amirphl/getaround-pricing/app/middleware"
	businessflow "github.com/amirphl/getaround-pricing/business_flow"
	"github.com/amirphl/getaround-pricing/utils"
	"github.com/gofiber/fiber/v3"
)

// dataset downloads can be slow
const importTimeout = 5 * time.Minute

// AdminHandlerInterface defines the admin endpoints
type AdminHandlerInterface interface {
	ImportDataset(c fiber.Ctx) error
	ListPredictions(c fiber.Ctx) error
}

// AdminHandler serves dataset imports and the prediction history
type AdminHandler struct {
	baseHandler
	datasetFlow businessflow.DatasetFlow
	pricingFlow businessflow.PricingFlow
}

func NewAdminHandler(datasetFlow businessflow.DatasetFlow, pricingFlow businessflow.PricingFlow, logger *slog.Logger, timeout time.Duration) AdminHandlerInterface {
	return &AdminHandler{
		baseHandler: newBaseHandler(logger, timeout),
		datasetFlow: datasetFlow,
		pricingFlow: pricingFlow,
	}
}

// ImportDataset loads the rental pricing dataset
// @Summary Import Dataset (Admin)
// @Description Fetch the pricing dataset from the configured source, or from the given source, and replace the stored listings
// @Tags Admin Dataset
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ImportDatasetRequest false "Optional source override"
// @Success 201 {object} dto.APIResponse{data=dto.ImportDatasetResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 409 {object} dto.APIResponse "Import already running"
// @Failure 502 {object} dto.APIResponse "Source could not be loaded"
// @Router /api/v1/admin/dataset/import [post]
func (h *AdminHandler) ImportDataset(c fiber.Ctx) error {
	var req dto.ImportDatasetRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContextWithTimeout(c, "/api/v1/admin/dataset/import", importTimeout)
	defer cancel()
	ctx = withAdminSubject(ctx, c)

	res, err := h.datasetFlow.Import(ctx, &req, h.clientMetadata(c))
	if err != nil {
		if businessflow.IsDatasetSourceEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Dataset source is required", "DATASET_SOURCE_REQUIRED", nil)
		}
		if businessflow.IsDatasetSourceInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Dataset source must be an http(s) URL", "DATASET_SOURCE_INVALID", nil)
		}
		if businessflow.IsImportInProgress(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "A dataset import is already running", "DATASET_IMPORT_IN_PROGRESS", nil)
		}
		if businessflow.IsDatasetSourceFailed(err) {
			return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to load dataset source", "DATASET_SOURCE_FAILED", err.Error())
		}
		if businessflow.IsDatasetEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Dataset contains no rows", "DATASET_EMPTY", nil)
		}
		h.logger.Error("dataset import failed", "request_id", requestID(c), "error", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Dataset import failed", "DATASET_IMPORT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Dataset imported successfully", res)
}

// ListPredictions pages through served predictions
// @Summary List Predictions (Admin)
// @Description Served price estimates, newest first
// @Tags Admin Predictions
// @Produce json
// @Security BearerAuth
// @Param model_key query string false "Filter by brand"
// @Param limit query int false "Page size (max 500)" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.APIResponse{data=dto.ListPredictionsResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/admin/predictions [get]
func (h *AdminHandler) ListPredictions(c fiber.Ctx) error {
	var req dto.ListPredictionsRequest
	if v := c.Query("model_key"); v != "" {
		req.ModelKey = &v
	}
	var err error
	if req.Limit, err = queryInt(c, "limit"); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "limit must be an integer", "INVALID_REQUEST", nil)
	}
	if req.Offset, err = queryInt(c, "offset"); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "offset must be an integer", "INVALID_REQUEST", nil)
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/admin/predictions")
	defer cancel()
	ctx = withAdminSubject(ctx, c)

	res, err := h.pricingFlow.ListPredictions(ctx, &req)
	if err != nil {
		if businessflow.IsPredictionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Prediction history is not available", "PREDICTIONS_NOT_FOUND", nil)
		}
		h.logger.Error("list predictions failed", "request_id", requestID(c), "error", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list predictions", "PREDICTIONS_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Predictions retrieved successfully", res)
}

func withAdminSubject(ctx context.Context, c fiber.Ctx) context.Context {
	if subject, ok := middleware.GetAdminSubjectFromContext(c); ok {
		return context.WithValue(ctx, utils.AdminSubject, subject)
	}
	return ctx
}

func queryInt(c fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
