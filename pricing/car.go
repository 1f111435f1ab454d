// Package pricing implements the rental price inference pipeline: a car description is
// validated, encoded with a frozen pre-fit transform and priced by a frozen regression model.
package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column names of a car description, as used in persisted artifacts and payloads.
const (
	FieldModelKey                = "model_key"
	FieldMileage                 = "mileage"
	FieldEnginePower             = "engine_power"
	FieldFuel                    = "fuel"
	FieldPaintColor              = "paint_color"
	FieldCarType                 = "car_type"
	FieldPrivateParkingAvailable = "private_parking_available"
	FieldHasGPS                  = "has_gps"
	FieldHasAirConditioning      = "has_air_conditioning"
	FieldAutomaticCar            = "automatic_car"
	FieldHasGetaroundConnect     = "has_getaround_connect"
	FieldHasSpeedRegulator       = "has_speed_regulator"
	FieldWinterTires             = "winter_tires"
)

// NumericFields lists the numeric columns of a car description.
var NumericFields = []string{FieldMileage, FieldEnginePower}

// CategoricalFields lists the string columns of a car description.
var CategoricalFields = []string{FieldModelKey, FieldFuel, FieldPaintColor, FieldCarType}

// FlagFields lists the boolean equipment columns of a car description.
var FlagFields = []string{
	FieldPrivateParkingAvailable,
	FieldHasGPS,
	FieldHasAirConditioning,
	FieldAutomaticCar,
	FieldHasGetaroundConnect,
	FieldHasSpeedRegulator,
	FieldWinterTires,
}

// AllFields returns the 13 columns every description must carry.
func AllFields() []string {
	out := make([]string, 0, len(NumericFields)+len(CategoricalFields)+len(FlagFields))
	out = append(out, FieldModelKey, FieldMileage, FieldEnginePower, FieldFuel, FieldPaintColor, FieldCarType)
	out = append(out, FlagFields...)
	return out
}

// CarDescription describes one vehicle and its equipment.
type CarDescription struct {
	ModelKey                string  `json:"model_key"`
	Mileage                 float64 `json:"mileage"`
	EnginePower             float64 `json:"engine_power"`
	Fuel                    string  `json:"fuel"`
	PaintColor              string  `json:"paint_color"`
	CarType                 string  `json:"car_type"`
	PrivateParkingAvailable bool    `json:"private_parking_available"`
	HasGPS                  bool    `json:"has_gps"`
	HasAirConditioning      bool    `json:"has_air_conditioning"`
	AutomaticCar            bool    `json:"automatic_car"`
	HasGetaroundConnect     bool    `json:"has_getaround_connect"`
	HasSpeedRegulator       bool    `json:"has_speed_regulator"`
	WinterTires             bool    `json:"winter_tires"`
}

// Validate checks that categorical fields are set and numeric fields are finite and non-negative.
func (c CarDescription) Validate() error {
	categorical := map[string]string{
		FieldModelKey:   c.ModelKey,
		FieldFuel:       c.Fuel,
		FieldPaintColor: c.PaintColor,
		FieldCarType:    c.CarType,
	}
	for _, name := range CategoricalFields {
		if strings.TrimSpace(categorical[name]) == "" {
			return newValidationError(name, "%s is required", name)
		}
	}

	numeric := map[string]float64{
		FieldMileage:     c.Mileage,
		FieldEnginePower: c.EnginePower,
	}
	for _, name := range NumericFields {
		v := numeric[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return newValidationError(name, "%s must be a finite number", name)
		}
		if v < 0 {
			return newValidationError(name, "%s must be non-negative", name)
		}
	}
	return nil
}

// row wraps the description as a one-row table keyed by column name.
// Numeric columns hold float64 values, every other column holds its string form.
func (c CarDescription) row() map[string]any {
	return map[string]any{
		FieldModelKey:                c.ModelKey,
		FieldMileage:                 c.Mileage,
		FieldEnginePower:             c.EnginePower,
		FieldFuel:                    c.Fuel,
		FieldPaintColor:              c.PaintColor,
		FieldCarType:                 c.CarType,
		FieldPrivateParkingAvailable: strconv.FormatBool(c.PrivateParkingAvailable),
		FieldHasGPS:                  strconv.FormatBool(c.HasGPS),
		FieldHasAirConditioning:      strconv.FormatBool(c.HasAirConditioning),
		FieldAutomaticCar:            strconv.FormatBool(c.AutomaticCar),
		FieldHasGetaroundConnect:     strconv.FormatBool(c.HasGetaroundConnect),
		FieldHasSpeedRegulator:       strconv.FormatBool(c.HasSpeedRegulator),
		FieldWinterTires:             strconv.FormatBool(c.WinterTires),
	}
}

// DecodeCarDescription strictly decodes a JSON object into a CarDescription.
// All 13 fields must be present, unknown fields are rejected, and numbers may be
// written either as integers or as floats.
func DecodeCarDescription(data []byte) (CarDescription, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return CarDescription{}, newValidationError("", "car description must be a JSON object: %v", err)
	}

	known := make(map[string]struct{}, 13)
	for _, name := range AllFields() {
		known[name] = struct{}{}
		v, ok := raw[name]
		if !ok || isJSONNull(v) {
			return CarDescription{}, newValidationError(name, "%s is required", name)
		}
	}
	for name := range raw {
		if _, ok := known[name]; !ok {
			return CarDescription{}, newValidationError(name, "unknown field %s", name)
		}
	}

	var car CarDescription
	var err error
	strs := map[string]*string{
		FieldModelKey:   &car.ModelKey,
		FieldFuel:       &car.Fuel,
		FieldPaintColor: &car.PaintColor,
		FieldCarType:    &car.CarType,
	}
	for _, name := range CategoricalFields {
		if err = json.Unmarshal(raw[name], strs[name]); err != nil {
			return CarDescription{}, newValidationError(name, "%s must be a string", name)
		}
	}

	nums := map[string]*float64{
		FieldMileage:     &car.Mileage,
		FieldEnginePower: &car.EnginePower,
	}
	for _, name := range NumericFields {
		if *nums[name], err = decodeNumber(raw[name]); err != nil {
			return CarDescription{}, newValidationError(name, "%s must be a number", name)
		}
	}

	flags := car.flagPointers()
	for _, name := range FlagFields {
		if err = json.Unmarshal(raw[name], flags[name]); err != nil {
			return CarDescription{}, newValidationError(name, "%s must be a boolean", name)
		}
	}

	if err := car.Validate(); err != nil {
		return CarDescription{}, err
	}
	return car, nil
}

func (c *CarDescription) flagPointers() map[string]*bool {
	return map[string]*bool{
		FieldPrivateParkingAvailable: &c.PrivateParkingAvailable,
		FieldHasGPS:                  &c.HasGPS,
		FieldHasAirConditioning:      &c.HasAirConditioning,
		FieldAutomaticCar:            &c.AutomaticCar,
		FieldHasGetaroundConnect:     &c.HasGetaroundConnect,
		FieldHasSpeedRegulator:       &c.HasSpeedRegulator,
		FieldWinterTires:             &c.WinterTires,
	}
}

func decodeNumber(v json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, fmt.Errorf("invalid number %s: %w", string(v), err)
	}
	return f, nil
}

func isJSONNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}
