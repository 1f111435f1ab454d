package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/getaround-pricing/models"
	"gorm.io/gorm"
)

// DatasetImportRepositoryImpl implements DatasetImportRepository interface
type DatasetImportRepositoryImpl struct {
	*BaseRepository[models.DatasetImport, struct{}]
}

// NewDatasetImportRepository creates a new dataset import repository
func NewDatasetImportRepository(db *gorm.DB) DatasetImportRepository {
	return &DatasetImportRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DatasetImport, struct{}](db),
	}
}

// Update persists every field of an existing import record
func (r *DatasetImportRepositoryImpl) Update(ctx context.Context, entity *models.DatasetImport) error {
	db := r.getDB(ctx)
	if err := db.Save(entity).Error; err != nil {
		return fmt.Errorf("failed to update dataset import %d: %w", entity.ID, err)
	}
	return nil
}

// LatestCompleted returns the most recent completed import, or nil when none exists
func (r *DatasetImportRepositoryImpl) LatestCompleted(ctx context.Context) (*models.DatasetImport, error) {
	db := r.getDB(ctx)
	var row models.DatasetImport
	err := db.Where("status = ?", models.DatasetImportStatusCompleted).Order("id DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest dataset import: %w", err)
	}
	return &row, nil
}
