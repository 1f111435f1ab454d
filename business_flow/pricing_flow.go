package businessflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	"github.com/amirphl/getaround-pricing/config"
	"github.com/amirphl/getaround-pricing/models"
	"github.com/amirphl/getaround-pricing/pricing"
	"github.com/amirphl/getaround-pricing/repository"
	"github.com/amirphl/getaround-pricing/utils"
)

// PriceEstimator is satisfied by *pricing.ArtifactLoader.
type PriceEstimator interface {
	Load() (*pricing.Pipeline, error)
	Loaded() bool
	EstimatePrice(car pricing.CarDescription) (*pricing.PriceEstimate, error)
}

// PricingFlow handles price estimation and the prediction history
type PricingFlow interface {
	EstimatePrice(ctx context.Context, req *dto.PredictPriceRequest, metadata *ClientMetadata) (*dto.PredictPriceResponse, error)
	ModelInfo(ctx context.Context) (*dto.ModelInfoResponse, error)
	ModelLoaded() bool
	ListPredictions(ctx context.Context, req *dto.ListPredictionsRequest) (*dto.ListPredictionsResponse, error)
}

type PricingFlowImpl struct {
	estimator      PriceEstimator
	predictionRepo repository.PricePredictionRepository
	cfg            config.PricingConfig
	logger         *slog.Logger
}

func NewPricingFlow(
	estimator PriceEstimator,
	predictionRepo repository.PricePredictionRepository,
	cfg config.PricingConfig,
	logger *slog.Logger,
) PricingFlow {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Currency == "" {
		cfg.Currency = utils.DollarCurrency
	}
	return &PricingFlowImpl{
		estimator:      estimator,
		predictionRepo: predictionRepo,
		cfg:            cfg,
		logger:         logger,
	}
}

// EstimatePrice prices a car description and records the served prediction.
func (f *PricingFlowImpl) EstimatePrice(ctx context.Context, req *dto.PredictPriceRequest, metadata *ClientMetadata) (*dto.PredictPriceResponse, error) {
	car := req.ToCarDescription()

	start := time.Now()
	est, err := f.estimator.EstimatePrice(car)
	priceEstimateDuration.Observe(time.Since(start).Seconds())
	setModelLoaded(f.estimator.Loaded())

	if err != nil {
		switch {
		case pricing.IsValidationError(err):
			priceEstimatesTotal.WithLabelValues(outcomeValidationError).Inc()
			return nil, NewBusinessError("PRICING_INVALID_INPUT", "Invalid car description", err)
		case pricing.IsModelUnavailable(err):
			priceEstimatesTotal.WithLabelValues(outcomeModelUnavailable).Inc()
			return nil, NewBusinessError("PRICING_MODEL_UNAVAILABLE", "Pricing model is not available", err)
		default:
			priceEstimatesTotal.WithLabelValues(outcomeInferenceError).Inc()
			f.logger.ErrorContext(ctx, "price inference failed",
				"request_id", metadata.requestID(),
				"model_key", car.ModelKey,
				"error", err)
			return nil, NewBusinessError("PRICING_INFERENCE_FAILED", "Failed to estimate price", err)
		}
	}

	priceEstimatesTotal.WithLabelValues(outcomeSuccess).Inc()
	estimatedPrice.Observe(est.Value)
	for _, field := range est.UnknownCategories {
		unknownCategoriesTotal.WithLabelValues(field).Inc()
	}

	unknown := est.UnknownCategories
	if unknown == nil {
		unknown = []string{}
	}
	resp := &dto.PredictPriceResponse{
		Prediction:        est.Value,
		Currency:          f.cfg.Currency,
		Summary:           fmt.Sprintf("The estimated rental price per day for this vehicle is %.2f %s", est.Value, f.cfg.Currency),
		UnknownCategories: unknown,
		EncoderVersion:    est.EncoderVersion,
		RegressorVersion:  est.RegressorVersion,
	}

	if f.cfg.RecordPredictions && f.predictionRepo != nil {
		row := &models.PricePrediction{
			RequestID:         metadata.requestID(),
			ModelKey:          car.ModelKey,
			Inputs:            models.PredictionInputs(car),
			Price:             est.Value,
			Currency:          f.cfg.Currency,
			UnknownCategories: unknown,
			EncoderVersion:    est.EncoderVersion,
			RegressorVersion:  est.RegressorVersion,
		}
		if err := f.predictionRepo.Save(ctx, row); err != nil {
			f.logger.WarnContext(ctx, "failed to record price prediction",
				"request_id", metadata.requestID(),
				"error", err)
		} else {
			resp.PredictionID = row.UUID.String()
		}
	}

	return resp, nil
}

// ModelInfo reports the artifact paths and, once loaded, their versions and feature layout.
func (f *PricingFlowImpl) ModelInfo(ctx context.Context) (*dto.ModelInfoResponse, error) {
	resp := &dto.ModelInfoResponse{
		EncoderPath:   f.cfg.EncoderPath,
		RegressorPath: f.cfg.RegressorPath,
	}

	p, err := f.estimator.Load()
	setModelLoaded(err == nil)
	if err != nil {
		resp.Error = err.Error()
		return resp, nil
	}

	resp.Loaded = true
	resp.EncoderVersion = p.EncoderVersion()
	resp.RegressorVersion = p.RegressorVersion()
	resp.FeatureNames = p.FeatureNames()
	resp.FeatureCount = len(resp.FeatureNames)
	return resp, nil
}

func (f *PricingFlowImpl) ModelLoaded() bool {
	return f.estimator.Loaded()
}

// ListPredictions returns served predictions, newest first.
func (f *PricingFlowImpl) ListPredictions(ctx context.Context, req *dto.ListPredictionsRequest) (*dto.ListPredictionsResponse, error) {
	if f.predictionRepo == nil {
		return nil, NewBusinessError("PREDICTIONS_NOT_RECORDED", "Prediction history is not available", ErrPredictionNotFound)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = utils.DefaultPredictionPageSize
	}
	if limit > utils.MaxPredictionPageSize {
		limit = utils.MaxPredictionPageSize
	}
	offset := max(req.Offset, 0)

	filter := models.PricePredictionFilter{ModelKey: req.ModelKey}
	rows, err := f.predictionRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, NewBusinessError("PREDICTIONS_LIST_FAILED", "Failed to list predictions", err)
	}
	total, err := f.predictionRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("PREDICTIONS_COUNT_FAILED", "Failed to count predictions", err)
	}

	items := make([]dto.PredictionItem, 0, len(rows))
	for _, row := range rows {
		unknown := []string(row.UnknownCategories)
		if unknown == nil {
			unknown = []string{}
		}
		items = append(items, dto.PredictionItem{
			UUID:              row.UUID.String(),
			RequestID:         row.RequestID,
			Inputs:            pricing.CarDescription(row.Inputs),
			Prediction:        row.Price,
			Currency:          row.Currency,
			UnknownCategories: unknown,
			EncoderVersion:    row.EncoderVersion,
			RegressorVersion:  row.RegressorVersion,
			CreatedAt:         row.CreatedAt,
		})
	}

	return &dto.ListPredictionsResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}
