package pricing

import (
	"errors"
	"math"
)

// PriceEstimate is the rounded daily rental price produced for one car description.
type PriceEstimate struct {
	Value             float64  `json:"value"`
	UnknownCategories []string `json:"unknown_categories,omitempty"`
	EncoderVersion    string   `json:"encoder_version"`
	RegressorVersion  string   `json:"regressor_version"`
}

// Pipeline pairs a frozen encoder with a frozen regressor. It holds no mutable state
// and is safe for concurrent use.
type Pipeline struct {
	encoder   *Encoder
	regressor *Regressor
	// set when the two artifacts do not line up; reported on every estimate
	compatErr error
}

// NewPipeline builds a pipeline from loaded artifacts.
func NewPipeline(encoder *Encoder, regressor *Regressor) (*Pipeline, error) {
	if encoder == nil || regressor == nil {
		return nil, newModelUnavailableError("pipeline requires both an encoder and a regressor", errors.New("nil artifact"))
	}
	return &Pipeline{
		encoder:   encoder,
		regressor: regressor,
		compatErr: regressor.CheckFeatures(encoder.FeatureNames()),
	}, nil
}

// EstimatePrice validates the description, encodes it, applies the regressor and
// rounds the result to two decimals. Negative outputs are clamped to zero.
func (p *Pipeline) EstimatePrice(car CarDescription) (*PriceEstimate, error) {
	if err := car.Validate(); err != nil {
		return nil, err
	}
	if p.compatErr != nil {
		return nil, newInferenceError("encoder and regressor artifacts are incompatible", p.compatErr)
	}

	x, unknown, err := p.encoder.Encode(car.row())
	if err != nil {
		return nil, newInferenceError("failed to encode car description", err)
	}

	y, err := p.regressor.Predict(x)
	if err != nil {
		return nil, newInferenceError("failed to apply regression model", err)
	}

	return &PriceEstimate{
		Value:             roundPrice(y),
		UnknownCategories: unknown,
		EncoderVersion:    p.encoder.Version(),
		RegressorVersion:  p.regressor.Version(),
	}, nil
}

// Encode exposes the encoded vector of a description, mainly for diagnostics.
func (p *Pipeline) Encode(car CarDescription) (EncodedFeatureVector, error) {
	if err := car.Validate(); err != nil {
		return nil, err
	}
	x, _, err := p.encoder.Encode(car.row())
	if err != nil {
		return nil, newInferenceError("failed to encode car description", err)
	}
	return x, nil
}

func (p *Pipeline) FeatureNames() []string   { return p.encoder.FeatureNames() }
func (p *Pipeline) EncoderVersion() string   { return p.encoder.Version() }
func (p *Pipeline) RegressorVersion() string { return p.regressor.Version() }

func roundPrice(y float64) float64 {
	if y <= 0 {
		return 0
	}
	// from 2^53 up a float64 has no fractional digits, and y*100 may overflow
	if y >= 1<<53 {
		return y
	}
	return math.Round(y*100) / 100
}
