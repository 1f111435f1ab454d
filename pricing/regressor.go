package pricing

import (
	"fmt"
	"math"
	"slices"
)

const RegressorKindLinear = "linear_regression"

// RegressorArtifact is the persisted form of the regression model.
type RegressorArtifact struct {
	Kind         string    `json:"kind" yaml:"kind"`
	Version      string    `json:"version" yaml:"version"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	FeatureNames []string  `json:"feature_names,omitempty" yaml:"feature_names,omitempty"`
}

// Regressor is a frozen linear regression function. It is immutable once built.
type Regressor struct {
	version      string
	intercept    float64
	coefficients []float64
	featureNames []string
}

// NewRegressor validates the artifact and builds the regressor.
func NewRegressor(a RegressorArtifact) (*Regressor, error) {
	if a.Kind != RegressorKindLinear {
		return nil, fmt.Errorf("unsupported regressor kind %q", a.Kind)
	}
	if len(a.Coefficients) == 0 {
		return nil, fmt.Errorf("regressor has no coefficients")
	}
	if len(a.FeatureNames) > 0 && len(a.FeatureNames) != len(a.Coefficients) {
		return nil, fmt.Errorf("regressor lists %d feature names for %d coefficients", len(a.FeatureNames), len(a.Coefficients))
	}
	if math.IsNaN(a.Intercept) || math.IsInf(a.Intercept, 0) {
		return nil, fmt.Errorf("regressor intercept is not finite")
	}
	for i, c := range a.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("regressor coefficient %d is not finite", i)
		}
	}
	return &Regressor{
		version:      a.Version,
		intercept:    a.Intercept,
		coefficients: slices.Clone(a.Coefficients),
		featureNames: slices.Clone(a.FeatureNames),
	}, nil
}

func (r *Regressor) Version() string { return r.version }

// Dimension returns the number of features the regressor expects.
func (r *Regressor) Dimension() int { return len(r.coefficients) }

// CheckFeatures verifies that the encoder output lines up with the regressor inputs.
func (r *Regressor) CheckFeatures(names []string) error {
	if len(names) != len(r.coefficients) {
		return fmt.Errorf("dimension mismatch: encoder produces %d features, regressor expects %d", len(names), len(r.coefficients))
	}
	if len(r.featureNames) == 0 {
		return nil
	}
	for i, name := range names {
		if r.featureNames[i] != name {
			return fmt.Errorf("feature %d mismatch: encoder produces %q, regressor expects %q", i, name, r.featureNames[i])
		}
	}
	return nil
}

// Predict maps a feature vector to a scalar.
func (r *Regressor) Predict(x EncodedFeatureVector) (float64, error) {
	if len(x) != len(r.coefficients) {
		return 0, fmt.Errorf("dimension mismatch: got %d features, expected %d", len(x), len(r.coefficients))
	}
	y := r.intercept
	for i, c := range r.coefficients {
		y += c * x[i]
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("prediction is not finite")
	}
	return y, nil
}
