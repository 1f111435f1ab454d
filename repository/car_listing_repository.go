package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/getaround-pricing/models"
	"gorm.io/gorm"
)

// ErrUnknownColumn is returned when a distinct-values query names a column outside the dataset
var ErrUnknownColumn = errors.New("unknown car listing column")

var (
	stringColumns = map[string]bool{"model_key": true, "fuel": true, "paint_color": true, "car_type": true}
	intColumns    = map[string]bool{"mileage": true, "engine_power": true, "rental_price_per_day": true}
	boolColumns   = map[string]bool{
		"private_parking_available": true,
		"has_gps":                   true,
		"has_air_conditioning":      true,
		"automatic_car":             true,
		"has_getaround_connect":     true,
		"has_speed_regulator":       true,
		"winter_tires":              true,
	}
)

// CarListingRepositoryImpl implements CarListingRepository interface
type CarListingRepositoryImpl struct {
	*BaseRepository[models.CarListing, models.CarListingFilter]
}

// NewCarListingRepository creates a new car listing repository
func NewCarListingRepository(db *gorm.DB) CarListingRepository {
	return &CarListingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CarListing, models.CarListingFilter](db),
	}
}

// applyFilter applies filter criteria to a GORM query
func (r *CarListingRepositoryImpl) applyFilter(query *gorm.DB, filter models.CarListingFilter) *gorm.DB {
	if filter.ModelKey != nil {
		query = query.Where("model_key = ?", *filter.ModelKey)
	}
	if filter.MaxMileage != nil {
		query = query.Where("mileage <= ?", *filter.MaxMileage)
	}
	return query
}

// ByFilter retrieves listings based on filter criteria, in dataset order by default
func (r *CarListingRepositoryImpl) ByFilter(ctx context.Context, filter models.CarListingFilter, orderBy string, limit, offset int) ([]*models.CarListing, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CarListing{}), filter)

	if orderBy == "" {
		orderBy = "row_index ASC"
	}
	query = query.Order(orderBy)

	if limit <= 0 {
		limit = filter.Limit
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.CarListing
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list car listings: %w", err)
	}
	return rows, nil
}

// Count returns the number of listings matching the filter
func (r *CarListingRepositoryImpl) Count(ctx context.Context, filter models.CarListingFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CarListing{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count car listings: %w", err)
	}
	return count, nil
}

// ReplaceAll deletes every listing and inserts the given ones in batches
func (r *CarListingRepositoryImpl) ReplaceAll(ctx context.Context, importID uint, listings []*models.CarListing, batchSize int) (err error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				err = db.Commit().Error
			}
		}()
	}

	if err = db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CarListing{}).Error; err != nil {
		return fmt.Errorf("failed to clear car listings: %w", err)
	}

	for _, l := range listings {
		l.ID = 0
		l.ImportID = importID
	}
	if len(listings) == 0 {
		return nil
	}
	if err = db.CreateInBatches(listings, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert car listings: %w", err)
	}
	return nil
}

// DistinctStrings returns the distinct values of a text column in order of first appearance
func (r *CarListingRepositoryImpl) DistinctStrings(ctx context.Context, column string) ([]string, error) {
	if !stringColumns[column] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	out := []string{}
	if err := r.distinct(ctx, column).Pluck(column, &out).Error; err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", column, err)
	}
	return out, nil
}

// DistinctInts returns the distinct values of an integer column in order of first appearance
func (r *CarListingRepositoryImpl) DistinctInts(ctx context.Context, column string) ([]int64, error) {
	if !intColumns[column] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	out := []int64{}
	if err := r.distinct(ctx, column).Pluck(column, &out).Error; err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", column, err)
	}
	return out, nil
}

// DistinctBools returns the distinct values of a flag column in order of first appearance
func (r *CarListingRepositoryImpl) DistinctBools(ctx context.Context, column string) ([]bool, error) {
	if !boolColumns[column] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	out := []bool{}
	if err := r.distinct(ctx, column).Pluck(column, &out).Error; err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", column, err)
	}
	return out, nil
}

// column has been checked against the allow lists above
func (r *CarListingRepositoryImpl) distinct(ctx context.Context, column string) *gorm.DB {
	return r.getDB(ctx).Model(&models.CarListing{}).
		Group(column).
		Order("MIN(row_index)")
}
