package models

import "time"

// CarListing is one row of the rental pricing dataset served by the exploration endpoints.
// Table: car_listings
// Rows are replaced wholesale by each dataset import
type CarListing struct {
	ID                      uint      `gorm:"primaryKey" json:"-"`
	ImportID                uint      `gorm:"not null;index:idx_car_listings_import_id" json:"-"`
	RowIndex                int       `gorm:"not null" json:"row_index"`
	ModelKey                string    `gorm:"size:64;not null;index:idx_car_listings_model_key" json:"model_key"`
	Mileage                 int64     `gorm:"not null;index:idx_car_listings_mileage" json:"mileage"`
	EnginePower             int       `gorm:"not null" json:"engine_power"`
	Fuel                    string    `gorm:"size:32;not null" json:"fuel"`
	PaintColor              string    `gorm:"size:32;not null" json:"paint_color"`
	CarType                 string    `gorm:"size:32;not null" json:"car_type"`
	PrivateParkingAvailable bool      `gorm:"not null" json:"private_parking_available"`
	HasGPS                  bool      `gorm:"column:has_gps;not null" json:"has_gps"`
	HasAirConditioning      bool      `gorm:"not null" json:"has_air_conditioning"`
	AutomaticCar            bool      `gorm:"not null" json:"automatic_car"`
	HasGetaroundConnect     bool      `gorm:"not null" json:"has_getaround_connect"`
	HasSpeedRegulator       bool      `gorm:"not null" json:"has_speed_regulator"`
	WinterTires             bool      `gorm:"not null" json:"winter_tires"`
	RentalPricePerDay       int       `gorm:"not null" json:"rental_price_per_day"`
	CreatedAt               time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"-"`
}

func (CarListing) TableName() string { return "car_listings" }

// CarListingFilter represents filter criteria for car listing queries
type CarListingFilter struct {
	ModelKey   *string
	MaxMileage *int64
	Limit      int
}
