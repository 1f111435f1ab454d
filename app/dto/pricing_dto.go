package dto

import (
	"time"

	"github.com/amirphl/getaround-pricing/pricing"
)

// PredictPriceRequest is the car description to price. Every field is required;
// pointers distinguish a missing field from a zero value.
type PredictPriceRequest struct {
	ModelKey                *string  `json:"model_key" validate:"required,max=64" example:"Fiat"`
	Mileage                 *float64 `json:"mileage" validate:"required,gte=0" example:"150000"`
	EnginePower             *float64 `json:"engine_power" validate:"required,gte=0" example:"90"`
	Fuel                    *string  `json:"fuel" validate:"required,max=32" example:"diesel"`
	PaintColor              *string  `json:"paint_color" validate:"required,max=32" example:"white"`
	CarType                 *string  `json:"car_type" validate:"required,max=32" example:"sedan"`
	PrivateParkingAvailable *bool    `json:"private_parking_available" validate:"required" example:"true"`
	HasGPS                  *bool    `json:"has_gps" validate:"required" example:"true"`
	HasAirConditioning      *bool    `json:"has_air_conditioning" validate:"required" example:"true"`
	AutomaticCar            *bool    `json:"automatic_car" validate:"required" example:"false"`
	HasGetaroundConnect     *bool    `json:"has_getaround_connect" validate:"required" example:"true"`
	HasSpeedRegulator       *bool    `json:"has_speed_regulator" validate:"required" example:"true"`
	WinterTires             *bool    `json:"winter_tires" validate:"required" example:"true"`
}

// ToCarDescription converts a validated request. Missing fields become zero values.
func (r *PredictPriceRequest) ToCarDescription() pricing.CarDescription {
	return pricing.CarDescription{
		ModelKey:                deref(r.ModelKey),
		Mileage:                 deref(r.Mileage),
		EnginePower:             deref(r.EnginePower),
		Fuel:                    deref(r.Fuel),
		PaintColor:              deref(r.PaintColor),
		CarType:                 deref(r.CarType),
		PrivateParkingAvailable: deref(r.PrivateParkingAvailable),
		HasGPS:                  deref(r.HasGPS),
		HasAirConditioning:      deref(r.HasAirConditioning),
		AutomaticCar:            deref(r.AutomaticCar),
		HasGetaroundConnect:     deref(r.HasGetaroundConnect),
		HasSpeedRegulator:       deref(r.HasSpeedRegulator),
		WinterTires:             deref(r.WinterTires),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// PredictPriceResponse is the estimated daily rental price
type PredictPriceResponse struct {
	PredictionID      string   `json:"prediction_id,omitempty"`
	Prediction        float64  `json:"prediction" example:"93.06"`
	Currency          string   `json:"currency" example:"USD"`
	Summary           string   `json:"summary"`
	UnknownCategories []string `json:"unknown_categories"`
	EncoderVersion    string   `json:"encoder_version"`
	RegressorVersion  string   `json:"regressor_version"`
}

// ModelInfoResponse describes the loaded pricing artifacts
type ModelInfoResponse struct {
	Loaded           bool     `json:"loaded"`
	EncoderPath      string   `json:"encoder_path"`
	RegressorPath    string   `json:"regressor_path"`
	EncoderVersion   string   `json:"encoder_version,omitempty"`
	RegressorVersion string   `json:"regressor_version,omitempty"`
	FeatureCount     int      `json:"feature_count"`
	FeatureNames     []string `json:"feature_names,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// ListPredictionsRequest pages through served predictions
type ListPredictionsRequest struct {
	ModelKey *string `json:"model_key,omitempty" query:"model_key" validate:"omitempty,max=64"`
	Limit    int     `json:"limit" query:"limit" validate:"omitempty,min=1,max=500"`
	Offset   int     `json:"offset" query:"offset" validate:"omitempty,min=0"`
}

// PredictionItem is one served prediction
type PredictionItem struct {
	UUID              string                 `json:"uuid"`
	RequestID         string                 `json:"request_id,omitempty"`
	Inputs            pricing.CarDescription `json:"inputs"`
	Prediction        float64                `json:"prediction"`
	Currency          string                 `json:"currency"`
	UnknownCategories []string               `json:"unknown_categories"`
	EncoderVersion    string                 `json:"encoder_version"`
	RegressorVersion  string                 `json:"regressor_version"`
	CreatedAt         time.Time              `json:"created_at"`
}

// ListPredictionsResponse is a page of served predictions
type ListPredictionsResponse struct {
	Items  []PredictionItem `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
