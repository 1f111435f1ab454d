package dto

// CarListingItem is one row of the rental pricing dataset
type CarListingItem struct {
	RowIndex                int    `json:"row_index"`
	ModelKey                string `json:"model_key"`
	Mileage                 int64  `json:"mileage"`
	EnginePower             int    `json:"engine_power"`
	Fuel                    string `json:"fuel"`
	PaintColor              string `json:"paint_color"`
	CarType                 string `json:"car_type"`
	PrivateParkingAvailable bool   `json:"private_parking_available"`
	HasGPS                  bool   `json:"has_gps"`
	HasAirConditioning      bool   `json:"has_air_conditioning"`
	AutomaticCar            bool   `json:"automatic_car"`
	HasGetaroundConnect     bool   `json:"has_getaround_connect"`
	HasSpeedRegulator       bool   `json:"has_speed_regulator"`
	WinterTires             bool   `json:"winter_tires"`
	RentalPricePerDay       int    `json:"rental_price_per_day"`
}

// SearchListingsResponse holds the listings matching an exploration query
type SearchListingsResponse struct {
	Count    int              `json:"count"`
	Listings []CarListingItem `json:"listings"`
}

// MaxMileageRequest filters listings by an inclusive mileage bound
type MaxMileageRequest struct {
	MaxMileage *int64 `query:"max_mileage"`
}

// UniqueValuesRequest names the dataset column to inspect
type UniqueValuesRequest struct {
	Column string `query:"column" validate:"required,max=64"`
}

// UniqueValuesResponse lists the distinct values of a column in order of first appearance
type UniqueValuesResponse struct {
	Column string `json:"column"`
	Values []any  `json:"values"`
}

// ExportListingsRequest filters the listings written to a spreadsheet
type ExportListingsRequest struct {
	Brand      *string `query:"brand"`
	MaxMileage *int64  `query:"max_mileage"`
}

// ExportListingsResponse is a generated workbook
type ExportListingsResponse struct {
	FileName string
	Rows     int
	Content  []byte
}
