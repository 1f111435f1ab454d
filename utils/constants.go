package utils

import (
	"slices"
	"time"
)

// Token and session time constants
const (
	// AdminTokenTTL is the time-to-live for admin access tokens (12 hours)
	AdminTokenTTL = 12 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Pricing constants
const (
	DollarCurrency = "USD"

	// DefaultMaxMileage is used by the mileage search when no bound is given
	DefaultMaxMileage = 50000

	// DefaultPredictionPageSize bounds admin prediction listings
	DefaultPredictionPageSize = 50
	MaxPredictionPageSize     = 500
)

// Cache key segments
const (
	ExplorationCacheKey  = "exploration"
	DatasetGenerationKey = "dataset:generation"
	DatasetImportLockKey = "dataset:import:lock"
)

// KnownBrands lists the car brands present in the Getaround pricing dataset.
var KnownBrands = []string{
	"Citroën", "Peugeot", "PGO", "Renault", "Audi", "BMW", "Ford",
	"Mercedes", "Opel", "Porsche", "Volkswagen", "KIA Motors",
	"Alfa Romeo", "Ferrari", "Fiat", "Lamborghini", "Maserati",
	"Lexus", "Honda", "Mazda", "Mini", "Mitsubishi", "Nissan", "SEAT",
	"Subaru", "Suzuki", "Toyota", "Yamaha",
}

// IsKnownBrand reports whether brand is one of KnownBrands. The match is case sensitive.
func IsKnownBrand(brand string) bool {
	return slices.Contains(KnownBrands, brand)
}
