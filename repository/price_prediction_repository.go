package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/getaround-pricing/models"
	"gorm.io/gorm"
)

// PricePredictionRepositoryImpl implements PricePredictionRepository interface
type PricePredictionRepositoryImpl struct {
	*BaseRepository[models.PricePrediction, models.PricePredictionFilter]
}

// NewPricePredictionRepository creates a new price prediction repository
func NewPricePredictionRepository(db *gorm.DB) PricePredictionRepository {
	return &PricePredictionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PricePrediction, models.PricePredictionFilter](db),
	}
}

func (r *PricePredictionRepositoryImpl) applyFilter(query *gorm.DB, filter models.PricePredictionFilter) *gorm.DB {
	if filter.ModelKey != nil {
		query = query.Where("model_key = ?", *filter.ModelKey)
	}
	if filter.RequestID != nil {
		query = query.Where("request_id = ?", *filter.RequestID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves predictions based on filter criteria, newest first by default
func (r *PricePredictionRepositoryImpl) ByFilter(ctx context.Context, filter models.PricePredictionFilter, orderBy string, limit, offset int) ([]*models.PricePrediction, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PricePrediction{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.PricePrediction
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list price predictions: %w", err)
	}
	return rows, nil
}

// Count returns the number of predictions matching the filter
func (r *PricePredictionRepositoryImpl) Count(ctx context.Context, filter models.PricePredictionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PricePrediction{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count price predictions: %w", err)
	}
	return count, nil
}
