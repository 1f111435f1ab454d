package handlers

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	businessflow "github.com/amirphl/getaround-pricing/business_flow"
	"github.com/gofiber/fiber/v3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExplorationHandlerInterface defines the dataset exploration endpoints
type ExplorationHandlerInterface interface {
	SearchByBrand(c fiber.Ctx) error
	SearchByMaxMileage(c fiber.Ctx) error
	UniqueValues(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// ExplorationHandler serves queries over the rental pricing dataset
type ExplorationHandler struct {
	baseHandler
	flow businessflow.ExplorationFlow
}

func NewExplorationHandler(flow businessflow.ExplorationFlow, logger *slog.Logger, timeout time.Duration) ExplorationHandlerInterface {
	return &ExplorationHandler{
		baseHandler: newBaseHandler(logger, timeout),
		flow:        flow,
	}
}

// SearchByBrand lists the cars of one brand
// @Summary Search Listings by Brand
// @Description Return every listing of a brand. The brand is case sensitive and must be one of the brands present in the dataset.
// @Tags Exploration
// @Produce json
// @Param brand path string true "Brand, e.g. Citroën"
// @Success 200 {object} dto.APIResponse{data=dto.SearchListingsResponse}
// @Failure 400 {object} dto.APIResponse "Unknown brand"
// @Failure 503 {object} dto.APIResponse "Dataset not imported"
// @Router /api/v1/exploration/brands/{brand} [get]
func (h *ExplorationHandler) SearchByBrand(c fiber.Ctx) error {
	brand, err := url.PathUnescape(c.Params("brand"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid brand", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/exploration/brands")
	defer cancel()

	res, err := h.flow.SearchByBrand(ctx, brand)
	if err != nil {
		return h.explorationError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Listings retrieved successfully", res)
}

// SearchByMaxMileage lists the cars under a mileage bound
// @Summary Search Listings by Maximum Mileage
// @Description Return every listing whose mileage is lower than or equal to max_mileage (default 50000)
// @Tags Exploration
// @Produce json
// @Param max_mileage query int false "Inclusive mileage bound" default(50000)
// @Success 200 {object} dto.APIResponse{data=dto.SearchListingsResponse}
// @Failure 400 {object} dto.APIResponse "Invalid mileage"
// @Failure 503 {object} dto.APIResponse "Dataset not imported"
// @Router /api/v1/exploration/mileage [get]
func (h *ExplorationHandler) SearchByMaxMileage(c fiber.Ctx) error {
	var req dto.MaxMileageRequest
	maxMileage, err := parseOptionalInt(c.Query("max_mileage"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "max_mileage must be an integer", "INVALID_MILEAGE", nil)
	}
	req.MaxMileage = maxMileage

	ctx, cancel := h.createRequestContext(c, "/api/v1/exploration/mileage")
	defer cancel()

	res, err := h.flow.SearchByMaxMileage(ctx, &req)
	if err != nil {
		return h.explorationError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Listings retrieved successfully", res)
}

// UniqueValues lists the distinct values of a column
// @Summary Unique Values of a Column
// @Description Distinct values of a categorical, flag or engine_power column, in order of first appearance
// @Tags Exploration
// @Produce json
// @Param column query string true "Column name, e.g. fuel"
// @Success 200 {object} dto.APIResponse{data=dto.UniqueValuesResponse}
// @Failure 400 {object} dto.APIResponse "Unsupported column"
// @Failure 503 {object} dto.APIResponse "Dataset not imported"
// @Router /api/v1/exploration/unique-values [get]
func (h *ExplorationHandler) UniqueValues(c fiber.Ctx) error {
	req := dto.UniqueValuesRequest{Column: strings.TrimSpace(c.Query("column"))}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/exploration/unique-values")
	defer cancel()

	res, err := h.flow.UniqueValues(ctx, &req)
	if err != nil {
		return h.explorationError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Unique values retrieved successfully", res)
}

// Export downloads matching listings as a spreadsheet
// @Summary Export Listings (Excel)
// @Description Download the listings matching the optional brand and max_mileage filters as an .xlsx workbook
// @Tags Exploration
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param brand query string false "Brand"
// @Param max_mileage query int false "Inclusive mileage bound"
// @Success 200 {string} string "Excel file"
// @Failure 400 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse "Dataset not imported"
// @Router /api/v1/exploration/export [get]
func (h *ExplorationHandler) Export(c fiber.Ctx) error {
	var req dto.ExportListingsRequest
	if brand := c.Query("brand"); brand != "" {
		req.Brand = &brand
	}
	maxMileage, err := parseOptionalInt(c.Query("max_mileage"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "max_mileage must be an integer", "INVALID_MILEAGE", nil)
	}
	req.MaxMileage = maxMileage

	ctx, cancel := h.createRequestContext(c, "/api/v1/exploration/export")
	defer cancel()

	res, err := h.flow.Export(ctx, &req)
	if err != nil {
		return h.explorationError(c, err)
	}

	c.Set("Content-Type", xlsxContentType)
	c.Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(res.FileName))
	c.Set("X-Row-Count", strconv.Itoa(res.Rows))
	return c.Send(res.Content)
}

func (h *ExplorationHandler) explorationError(c fiber.Ctx, err error) error {
	if businessflow.IsUnknownBrand(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown brand", "UNKNOWN_BRAND", nil)
	}
	if businessflow.IsNegativeMileage(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Mileage must be non-negative", "NEGATIVE_MILEAGE", nil)
	}
	if businessflow.IsUnsupportedColumn(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Column does not support unique values", "UNSUPPORTED_COLUMN", nil)
	}
	if businessflow.IsDatasetNotImported(err) {
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "The dataset has not been imported yet", "DATASET_NOT_IMPORTED", nil)
	}
	h.logger.Error("exploration query failed", "request_id", requestID(c), "path", c.Path(), "error", err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to query the dataset", "EXPLORATION_FAILED", nil)
}

func parseOptionalInt(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
