package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/amirphl/getaround-pricing/models"
	"github.com/amirphl/getaround-pricing/repository"
	testingutil "github.com/amirphl/getaround-pricing/testing"
	"github.com/amirphl/getaround-pricing/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarListingRepository(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	repo := repository.NewCarListingRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	imp, _, err := fixtures.CreateTestDataset()
	require.NoError(t, err)

	t.Run("ByFilterBrand", func(t *testing.T) {
		rows, err := repo.ByFilter(ctx, models.CarListingFilter{ModelKey: utils.ToPtr("Citroën")}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 0, rows[0].RowIndex)
		assert.Equal(t, 1, rows[1].RowIndex)
	})

	t.Run("ByFilterMaxMileage", func(t *testing.T) {
		rows, err := repo.ByFilter(ctx, models.CarListingFilter{MaxMileage: utils.ToPtr(int64(49000))}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, r := range rows {
			assert.LessOrEqual(t, r.Mileage, int64(49000))
		}

		count, err := repo.Count(ctx, models.CarListingFilter{MaxMileage: utils.ToPtr(int64(0))})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("DistinctValues", func(t *testing.T) {
		brands, err := repo.DistinctStrings(ctx, "model_key")
		require.NoError(t, err)
		assert.Equal(t, []string{"Citroën", "Renault", "BMW"}, brands)

		powers, err := repo.DistinctInts(ctx, "engine_power")
		require.NoError(t, err)
		assert.Equal(t, []int64{100, 317, 120, 135}, powers)

		gps, err := repo.DistinctBools(ctx, "has_gps")
		require.NoError(t, err)
		assert.Equal(t, []bool{true, false}, gps)

		_, err = repo.DistinctStrings(ctx, "model_key; DROP TABLE car_listings")
		assert.True(t, errors.Is(err, repository.ErrUnknownColumn))
		_, err = repo.DistinctBools(ctx, "model_key")
		assert.True(t, errors.Is(err, repository.ErrUnknownColumn))
	})

	t.Run("ReplaceAll", func(t *testing.T) {
		replacement := testingutil.SampleListings()[:1]
		require.NoError(t, repo.ReplaceAll(ctx, imp.ID, replacement, 10))

		count, err := repo.Count(ctx, models.CarListingFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ClearAllTables", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		count, err := repo.Count(ctx, models.CarListingFilter{})
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestReplaceAllRollsBackInsideTransaction(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	repo := repository.NewCarListingRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	imp, _, err := fixtures.CreateTestDataset()
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
		if err := repo.ReplaceAll(txCtx, imp.ID, nil, 0); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := repo.Count(ctx, models.CarListingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestPricePredictionRepository(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	repo := repository.NewPricePredictionRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	_, err := fixtures.CreateTestPrediction("Fiat", 93.06)
	require.NoError(t, err)
	latest, err := fixtures.CreateTestPrediction("Tesla", 102.9, "model_key")
	require.NoError(t, err)

	rows, err := repo.ByFilter(ctx, models.PricePredictionFilter{}, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, latest.UUID, rows[0].UUID)
	assert.Equal(t, []string{"model_key"}, []string(rows[0].UnknownCategories))
	assert.Equal(t, "Tesla", rows[0].Inputs.ModelKey)
	assert.Empty(t, rows[1].UnknownCategories)

	count, err := repo.Count(ctx, models.PricePredictionFilter{ModelKey: utils.ToPtr("Fiat")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	byID, err := repo.ByID(ctx, latest.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, 102.9, byID.Price)

	missing, err := repo.ByID(ctx, 9999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDatasetImportRepository(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	repo := repository.NewDatasetImportRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	latest, err := repo.LatestCompleted(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	imp := &models.DatasetImport{Source: "testdata/listings.csv"}
	require.NoError(t, repo.Save(ctx, imp))
	assert.Equal(t, models.DatasetImportStatusRunning, imp.Status)

	latest, err = repo.LatestCompleted(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	imp.Status = models.DatasetImportStatusCompleted
	imp.RowCount = 4
	imp.CompletedAt = utils.ToPtr(utils.UTCNow())
	require.NoError(t, repo.Update(ctx, imp))

	latest, err = repo.LatestCompleted(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, imp.ID, latest.ID)
	assert.Equal(t, 4, latest.RowCount)
}

func TestSaveReportsCommitFailure(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	repo := repository.NewCarListingRepository(testDB.DB)
	ctx := testingutil.CreateTestContext()

	imp, _, err := fixtures.CreateTestDataset()
	require.NoError(t, err)

	// a deferred constraint only fires at COMMIT
	require.NoError(t, testDB.DB.Exec(
		"ALTER TABLE car_listings ADD CONSTRAINT car_listings_import_row_unique UNIQUE (import_id, row_index) DEFERRABLE INITIALLY DEFERRED",
	).Error)

	duplicate := testingutil.SampleListings()[0]
	duplicate.ImportID = imp.ID
	err = repo.Save(ctx, duplicate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")

	batch := testingutil.SampleListings()[2:]
	for _, l := range batch {
		l.ImportID = imp.ID
	}
	err = repo.SaveBatch(ctx, batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")

	count, err := repo.Count(ctx, models.CarListingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
