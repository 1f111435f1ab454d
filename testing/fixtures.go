// Package testing provides test utilities and database setup for testing the pricing service
package testing

import (
	"fmt"

	"github.com/amirphl/getaround-pricing/models"
	"github.com/amirphl/getaround-pricing/pricing"
	"github.com/lib/pq"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// SampleListings returns a small dataset: two Citroën, one Renault and one BMW.
func SampleListings() []*models.CarListing {
	return []*models.CarListing{
		{RowIndex: 0, ModelKey: "Citroën", Mileage: 140411, EnginePower: 100, Fuel: "diesel", PaintColor: "black", CarType: "convertible", PrivateParkingAvailable: true, HasGPS: true, HasGetaroundConnect: true, RentalPricePerDay: 106},
		{RowIndex: 1, ModelKey: "Citroën", Mileage: 13929, EnginePower: 317, Fuel: "petrol", PaintColor: "grey", CarType: "convertible", PrivateParkingAvailable: true, HasGPS: true, HasSpeedRegulator: true, RentalPricePerDay: 264},
		{RowIndex: 2, ModelKey: "Renault", Mileage: 183297, EnginePower: 120, Fuel: "diesel", PaintColor: "white", CarType: "convertible", HasAirConditioning: true, RentalPricePerDay: 101},
		{RowIndex: 3, ModelKey: "BMW", Mileage: 49000, EnginePower: 135, Fuel: "diesel", PaintColor: "black", CarType: "sedan", AutomaticCar: true, WinterTires: true, RentalPricePerDay: 158},
	}
}

// CreateTestDataset stores a completed import holding SampleListings
func (tf *TestFixtures) CreateTestDataset() (*models.DatasetImport, []*models.CarListing, error) {
	imp := &models.DatasetImport{
		Source:   "fixtures",
		Status:   models.DatasetImportStatusCompleted,
		RowCount: len(SampleListings()),
	}
	if err := tf.DB.DB.Create(imp).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create test dataset import: %w", err)
	}

	listings := SampleListings()
	for _, l := range listings {
		l.ImportID = imp.ID
	}
	if err := tf.DB.DB.Create(&listings).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create test listings: %w", err)
	}
	return imp, listings, nil
}

// CreateTestPrediction stores a prediction for a car of the given brand
func (tf *TestFixtures) CreateTestPrediction(modelKey string, price float64, unknown ...string) (*models.PricePrediction, error) {
	p := &models.PricePrediction{
		ModelKey: modelKey,
		Inputs: models.PredictionInputs(pricing.CarDescription{
			ModelKey:    modelKey,
			Mileage:     150000,
			EnginePower: 90,
			Fuel:        "diesel",
			PaintColor:  "white",
			CarType:     "sedan",
		}),
		Price:             price,
		Currency:          "USD",
		UnknownCategories: pq.StringArray(unknown),
		EncoderVersion:    "getaround-2024.05",
		RegressorVersion:  "linear-2024.05",
	}
	if err := tf.DB.DB.Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create test prediction: %w", err)
	}
	return p, nil
}
