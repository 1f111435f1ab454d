package businessflow

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	"github.com/amirphl/getaround-pricing/config"
	"github.com/amirphl/getaround-pricing/models"
	"github.com/amirphl/getaround-pricing/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDatasetFlow(source DatasetSource, listings *fakeListingRepo, imports *fakeImportRepo, rc *redis.Client) DatasetFlow {
	cfg := config.DatasetConfig{Source: "https://example.com/pricing.csv", BatchSize: 100}
	return NewDatasetFlow(source, nil, listings, imports, rc, cfg, &config.CacheConfig{RedisPrefix: "test:"}, nil)
}

func TestDatasetFlow_Import(t *testing.T) {
	source := &fakeSource{listings: sampleListings()}
	listings := &fakeListingRepo{}
	imports := &fakeImportRepo{}
	flow := newDatasetFlow(source, listings, imports, nil)

	resp, err := flow.Import(context.Background(), &dto.ImportDatasetRequest{}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/pricing.csv"}, source.sources)
	assert.Equal(t, 4, resp.RowCount)
	assert.Equal(t, uint(1), resp.ImportID)
	assert.Equal(t, resp.ImportID, resp.Generation)
	assert.NotEmpty(t, resp.UUID)

	require.Len(t, imports.imports, 1)
	imp := imports.imports[0]
	assert.Equal(t, models.DatasetImportStatusCompleted, imp.Status)
	assert.Equal(t, 4, imp.RowCount)
	assert.NotNil(t, imp.CompletedAt)
	assert.Nil(t, imp.Error)

	assert.Equal(t, uint(1), listings.importID)
	assert.Len(t, listings.listings, 4)
	assert.Equal(t, uint(1), listings.listings[0].ImportID)

	// the imported dataset is immediately explorable
	explore := newExplorationFlow(listings, imports, nil)
	found, err := explore.SearchByBrand(context.Background(), "Renault")
	require.NoError(t, err)
	assert.Equal(t, 1, found.Count)
}

func TestDatasetFlow_ImportExplicitSource(t *testing.T) {
	source := &fakeSource{listings: sampleListings()}
	flow := newDatasetFlow(source, &fakeListingRepo{}, &fakeImportRepo{}, nil)

	_, err := flow.Import(context.Background(), &dto.ImportDatasetRequest{Source: "  http://mirror.example.com/pricing.csv "}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://mirror.example.com/pricing.csv"}, source.sources)
}

func TestDatasetFlow_ImportRejectsNonHTTPSources(t *testing.T) {
	tests := []string{
		"/etc/passwd",
		"testdata/listings.csv",
		"file:///etc/passwd",
		"ftp://example.com/pricing.csv",
		"https:///pricing.csv",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			source := &fakeSource{listings: sampleListings()}
			imports := &fakeImportRepo{}
			flow := newDatasetFlow(source, &fakeListingRepo{}, imports, nil)

			resp, err := flow.Import(context.Background(), &dto.ImportDatasetRequest{Source: raw}, nil)
			assert.Nil(t, resp)
			assert.True(t, IsDatasetSourceInvalid(err))
			assert.Empty(t, source.sources)
			assert.Empty(t, imports.imports)
		})
	}
}

func TestDatasetFlow_ImportConfiguredLocalSource(t *testing.T) {
	source := &fakeSource{listings: sampleListings()}
	cfg := config.DatasetConfig{Source: "testdata/listings.csv"}
	flow := NewDatasetFlow(source, nil, &fakeListingRepo{}, &fakeImportRepo{}, nil, cfg, nil, nil)

	_, err := flow.Import(context.Background(), &dto.ImportDatasetRequest{Source: "testdata/listings.csv"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/listings.csv"}, source.sources)
}

func TestDatasetFlow_ImportCompletionFailureKeepsListings(t *testing.T) {
	previous := sampleListings()[:1]
	listings := &fakeListingRepo{listings: previous, importID: 7}
	imports := &fakeImportRepo{failUpdates: 1}
	flow := newDatasetFlow(&fakeSource{listings: sampleListings()}, listings, imports, nil)

	resp, err := flow.Import(context.Background(), nil, nil)
	assert.Nil(t, resp)
	require.Error(t, err)

	var be *BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "DATASET_IMPORT_SAVE_FAILED", be.Code)

	require.Len(t, imports.imports, 1)
	imp := imports.imports[0]
	assert.Equal(t, models.DatasetImportStatusFailed, imp.Status)
	assert.Zero(t, imp.RowCount)
	require.NotNil(t, imp.Error)
	assert.Contains(t, *imp.Error, "connection reset by peer")

	assert.Equal(t, uint(7), listings.importID)
	assert.Equal(t, previous, listings.listings)

	latest, err := imports.LatestCompleted(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestDatasetFlow_ImportFailures(t *testing.T) {
	storeFailure := errors.New("disk full")
	loadFailure := errors.New("unexpected status 404")

	tests := []struct {
		name     string
		source   *fakeSource
		listings *fakeListingRepo
		code     string
		check    func(error) bool
	}{
		{
			name:     "source fails",
			source:   &fakeSource{err: loadFailure},
			listings: &fakeListingRepo{},
			code:     "DATASET_SOURCE_FAILED",
			check:    func(err error) bool { return IsDatasetSourceFailed(err) && errors.Is(err, loadFailure) },
		},
		{
			name:     "empty dataset",
			source:   &fakeSource{},
			listings: &fakeListingRepo{},
			code:     "DATASET_EMPTY",
			check:    IsDatasetEmpty,
		},
		{
			name:     "store fails",
			source:   &fakeSource{listings: sampleListings()},
			listings: &fakeListingRepo{replaceErr: storeFailure},
			code:     "DATASET_STORE_FAILED",
			check:    func(err error) bool { return errors.Is(err, storeFailure) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imports := &fakeImportRepo{}
			flow := newDatasetFlow(tt.source, tt.listings, imports, nil)

			resp, err := flow.Import(context.Background(), nil, nil)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, tt.check(err))

			var be *BusinessError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.code, be.Code)

			require.Len(t, imports.imports, 1)
			imp := imports.imports[0]
			assert.Equal(t, models.DatasetImportStatusFailed, imp.Status)
			require.NotNil(t, imp.Error)
			assert.NotEmpty(t, *imp.Error)

			latest, err := imports.LatestCompleted(context.Background())
			require.NoError(t, err)
			assert.Nil(t, latest)
		})
	}
}

func TestDatasetFlow_SourceRequired(t *testing.T) {
	flow := NewDatasetFlow(&fakeSource{}, nil, &fakeListingRepo{}, &fakeImportRepo{}, nil, config.DatasetConfig{}, nil, nil)
	_, err := flow.Import(context.Background(), &dto.ImportDatasetRequest{Source: "   "}, nil)
	assert.True(t, IsDatasetSourceEmpty(err))
}

func TestDatasetFlow_ConcurrentImportIsRejected(t *testing.T) {
	block := make(chan struct{})
	source := &fakeSource{listings: sampleListings(), block: block, entered: make(chan struct{})}
	flow := newDatasetFlow(source, &fakeListingRepo{}, &fakeImportRepo{}, nil)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = flow.Import(context.Background(), nil, nil)
	}()

	// Load runs while the first import holds the lock
	select {
	case <-source.entered:
	case <-time.After(time.Second):
		t.Fatal("first import never reached the source")
	}

	_, err := flow.Import(context.Background(), nil, nil)
	assert.True(t, IsImportInProgress(err))

	close(block)
	wg.Wait()
	require.NoError(t, firstErr)
}

func TestDatasetFlow_UnreachableRedis(t *testing.T) {
	rc := unreachableRedis()
	defer rc.Close()

	listings := &fakeListingRepo{}
	flow := newDatasetFlow(&fakeSource{listings: sampleListings()}, listings, &fakeImportRepo{}, rc)

	resp, err := flow.Import(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.RowCount)
	assert.Len(t, listings.listings, 4)
}

// requireRedis connects to TEST_REDIS_ADDR (default 127.0.0.1:6379), skipping when no server answers.
func requireRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	rc := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	if err := rc.Ping(context.Background()).Err(); err != nil {
		_ = rc.Close()
		t.Skipf("skipping redis test: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestDatasetFlow_ImportLockOwnership(t *testing.T) {
	rc := requireRedis(t)
	cacheCfg := config.CacheConfig{RedisPrefix: "test:" + uuid.NewString() + ":"}
	lockKey := redisKey(cacheCfg, utils.DatasetImportLockKey)
	t.Cleanup(func() {
		_ = rc.Del(context.Background(), lockKey, redisKey(cacheCfg, utils.DatasetGenerationKey)).Err()
	})

	newFlow := func(source *fakeSource) DatasetFlow {
		cfg := config.DatasetConfig{Source: "https://example.com/pricing.csv"}
		return NewDatasetFlow(source, nil, &fakeListingRepo{}, &fakeImportRepo{}, rc, cfg, &cacheCfg, nil)
	}

	t.Run("released after import", func(t *testing.T) {
		_, err := newFlow(&fakeSource{listings: sampleListings()}).Import(context.Background(), nil, nil)
		require.NoError(t, err)

		n, err := rc.Exists(context.Background(), lockKey).Result()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("lock taken over by another process is kept", func(t *testing.T) {
		block := make(chan struct{})
		source := &fakeSource{listings: sampleListings(), block: block, entered: make(chan struct{})}
		flow := newFlow(source)

		done := make(chan error, 1)
		go func() {
			_, err := flow.Import(context.Background(), nil, nil)
			done <- err
		}()

		select {
		case <-source.entered:
		case <-time.After(time.Second):
			t.Fatal("import never reached the source")
		}

		token, err := rc.Get(context.Background(), lockKey).Result()
		require.NoError(t, err)
		_, err = uuid.Parse(token)
		assert.NoError(t, err)

		// the TTL ran out and another process acquired the lock
		require.NoError(t, rc.Set(context.Background(), lockKey, "other-process", time.Minute).Err())

		close(block)
		require.NoError(t, <-done)

		holder, err := rc.Get(context.Background(), lockKey).Result()
		require.NoError(t, err)
		assert.Equal(t, "other-process", holder)
	})
}
