package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiatPayload(t *testing.T, edit func(map[string]any)) []byte {
	t.Helper()
	m := map[string]any{
		"model_key":                 "Fiat",
		"mileage":                   150000,
		"engine_power":              90,
		"fuel":                      "diesel",
		"paint_color":               "white",
		"car_type":                  "sedan",
		"private_parking_available": true,
		"has_gps":                   true,
		"has_air_conditioning":      true,
		"automatic_car":             false,
		"has_getaround_connect":     true,
		"has_speed_regulator":       true,
		"winter_tires":              true,
	}
	if edit != nil {
		edit(m)
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return data
}

func TestDecodeCarDescription(t *testing.T) {
	car, err := DecodeCarDescription(fiatPayload(t, nil))
	require.NoError(t, err)
	assert.Equal(t, fiatExample(), car)

	// integer and float encodings of a number decode to the same value
	floatCar, err := DecodeCarDescription(fiatPayload(t, func(m map[string]any) {
		m["mileage"] = 150000.0
		m["engine_power"] = 90.0
	}))
	require.NoError(t, err)
	assert.Equal(t, car, floatCar)
}

func TestDecodeCarDescription_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		field string
	}{
		{
			name:  "not an object",
			data:  []byte(`["Fiat"]`),
			field: "",
		},
		{
			name:  "missing flag",
			data:  fiatPayload(t, func(m map[string]any) { delete(m, "winter_tires") }),
			field: FieldWinterTires,
		},
		{
			name:  "null brand",
			data:  fiatPayload(t, func(m map[string]any) { m["model_key"] = nil }),
			field: FieldModelKey,
		},
		{
			name:  "unknown key",
			data:  fiatPayload(t, func(m map[string]any) { m["color"] = "red" }),
			field: "color",
		},
		{
			name:  "mileage as string",
			data:  fiatPayload(t, func(m map[string]any) { m["mileage"] = "150000" }),
			field: FieldMileage,
		},
		{
			name:  "flag as string",
			data:  fiatPayload(t, func(m map[string]any) { m["has_gps"] = "yes" }),
			field: FieldHasGPS,
		},
		{
			name:  "brand as number",
			data:  fiatPayload(t, func(m map[string]any) { m["model_key"] = 7 }),
			field: FieldModelKey,
		},
		{
			name:  "negative engine power",
			data:  fiatPayload(t, func(m map[string]any) { m["engine_power"] = -5 }),
			field: FieldEnginePower,
		},
		{
			name:  "empty car type",
			data:  fiatPayload(t, func(m map[string]any) { m["car_type"] = "" }),
			field: FieldCarType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCarDescription(tt.data)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			var pe *PipelineError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestAllFields(t *testing.T) {
	fields := AllFields()
	assert.Len(t, fields, 13)
	assert.ElementsMatch(t, fields, append(append(append([]string{}, NumericFields...), CategoricalFields...), FlagFields...))
}
