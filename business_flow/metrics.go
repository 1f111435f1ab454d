package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess          = "success"
	outcomeValidationError  = "validation_error"
	outcomeModelUnavailable = "model_unavailable"
	outcomeInferenceError   = "inference_error"
)

var (
	// Price estimates partitioned by outcome
	priceEstimatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_estimates_total",
			Help: "Total number of price estimation requests by outcome",
		},
		[]string{"outcome"},
	)

	priceEstimateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricing_estimate_duration_seconds",
			Help:    "Time spent encoding and scoring a car description",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	estimatedPrice = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricing_estimated_price",
			Help:    "Distribution of estimated daily rental prices",
			Buckets: []float64{0, 25, 50, 75, 100, 125, 150, 200, 300, 500},
		},
	)

	// Unknown categories seen at inference time, by field
	unknownCategoriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_unknown_categories_total",
			Help: "Categorical values absent from the encoder vocabulary",
		},
		[]string{"field"},
	)

	modelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricing_model_loaded",
			Help: "1 when the pricing artifacts are loaded",
		},
	)

	datasetImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_imports_total",
			Help: "Dataset imports by status",
		},
		[]string{"status"},
	)

	datasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_rows",
			Help: "Number of listings in the current dataset",
		},
	)

	explorationCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exploration_cache_requests_total",
			Help: "Exploration cache lookups by result",
		},
		[]string{"result"},
	)
)

func setModelLoaded(loaded bool) {
	if loaded {
		modelLoaded.Set(1)
		return
	}
	modelLoaded.Set(0)
}
