package repository

import (
	"fmt"

	"github.com/amirphl/getaround-pricing/models"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in creation order.
func Models() []any {
	return []any{
		&models.DatasetImport{},
		&models.CarListing{},
		&models.PricePrediction{},
	}
}

// AutoMigrate creates or updates the service tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
