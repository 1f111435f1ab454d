// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/getaround-pricing/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// CarListingRepository defines operations for the rental pricing dataset
type CarListingRepository interface {
	Repository[models.CarListing, models.CarListingFilter]
	// ReplaceAll swaps the whole dataset for listings inside one transaction
	ReplaceAll(ctx context.Context, importID uint, listings []*models.CarListing, batchSize int) error
	DistinctStrings(ctx context.Context, column string) ([]string, error)
	DistinctInts(ctx context.Context, column string) ([]int64, error)
	DistinctBools(ctx context.Context, column string) ([]bool, error)
}

// PricePredictionRepository defines operations for served price estimates
type PricePredictionRepository interface {
	Repository[models.PricePrediction, models.PricePredictionFilter]
}

// DatasetImportRepository defines operations for dataset import records
type DatasetImportRepository interface {
	ByID(ctx context.Context, id uint) (*models.DatasetImport, error)
	Save(ctx context.Context, entity *models.DatasetImport) error
	Update(ctx context.Context, entity *models.DatasetImport) error
	LatestCompleted(ctx context.Context) (*models.DatasetImport, error)
}
