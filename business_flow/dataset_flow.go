package businessflow

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	"github.com/amirphl/getaround-pricing/config"
	"github.com/amirphl/getaround-pricing/models"
	"github.com/amirphl/getaround-pricing/repository"
	"github.com/amirphl/getaround-pricing/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const datasetImportLockTTL = 10 * time.Minute

// releaseImportLock deletes the lock only while it still carries our token
var releaseImportLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DatasetSource loads car listings from a URL or a local path. *dataset.Loader satisfies it.
type DatasetSource interface {
	Load(ctx context.Context, source string) ([]*models.CarListing, error)
}

// DatasetFlow imports the rental pricing dataset
type DatasetFlow interface {
	Import(ctx context.Context, req *dto.ImportDatasetRequest, metadata *ClientMetadata) (*dto.ImportDatasetResponse, error)
}

type DatasetFlowImpl struct {
	source      DatasetSource
	db          *gorm.DB
	listingRepo repository.CarListingRepository
	importRepo  repository.DatasetImportRepository
	rc          *redis.Client
	cfg         config.DatasetConfig
	cacheConfig *config.CacheConfig
	logger      *slog.Logger
}

func NewDatasetFlow(
	source DatasetSource,
	db *gorm.DB,
	listingRepo repository.CarListingRepository,
	importRepo repository.DatasetImportRepository,
	rc *redis.Client,
	cfg config.DatasetConfig,
	cacheConfig *config.CacheConfig,
	logger *slog.Logger,
) DatasetFlow {
	if cacheConfig == nil {
		cacheConfig = &config.CacheConfig{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetFlowImpl{
		source:      source,
		db:          db,
		listingRepo: listingRepo,
		importRepo:  importRepo,
		rc:          rc,
		cfg:         cfg,
		cacheConfig: cacheConfig,
		logger:      logger,
	}
}

// Import loads the dataset and replaces the stored listings. Only one import runs at
// a time per process, and across processes when redis is available.
func (f *DatasetFlowImpl) Import(ctx context.Context, req *dto.ImportDatasetRequest, metadata *ClientMetadata) (*dto.ImportDatasetResponse, error) {
	source := f.cfg.Source
	if req != nil && strings.TrimSpace(req.Source) != "" {
		requested, err := f.requestedSource(strings.TrimSpace(req.Source))
		if err != nil {
			return nil, err
		}
		source = requested
	}
	if source == "" {
		return nil, NewBusinessError("DATASET_SOURCE_REQUIRED", "Dataset source is required", ErrDatasetSourceEmpty)
	}

	if !tryLockDatasetImport() {
		return nil, NewBusinessError("DATASET_IMPORT_IN_PROGRESS", "A dataset import is already running", ErrImportInProgress)
	}
	defer unlockDatasetImport()

	if f.rc != nil {
		lockKey := redisKey(*f.cacheConfig, utils.DatasetImportLockKey)
		token := uuid.NewString()
		ok, err := f.rc.SetNX(ctx, lockKey, token, datasetImportLockTTL).Result()
		if err != nil {
			// the process lock still holds; imports go on without redis
			f.logger.WarnContext(ctx, "dataset import lock unavailable", "error", err)
		} else if !ok {
			return nil, NewBusinessError("DATASET_IMPORT_IN_PROGRESS", "A dataset import is already running", ErrImportInProgress)
		} else {
			defer func() {
				if err := releaseImportLock.Run(context.Background(), f.rc, []string{lockKey}, token).Err(); err != nil {
					f.logger.WarnContext(ctx, "failed to release dataset import lock", "error", err)
				}
			}()
		}
	}

	imp := &models.DatasetImport{Source: source, Status: models.DatasetImportStatusRunning}
	if err := f.importRepo.Save(ctx, imp); err != nil {
		return nil, NewBusinessError("DATASET_IMPORT_SAVE_FAILED", "Failed to record dataset import", err)
	}

	f.logger.InfoContext(ctx, "dataset import started",
		"import_id", imp.ID,
		"source", source,
		"request_id", metadata.requestID())

	listings, err := f.source.Load(ctx, source)
	if err != nil {
		f.fail(ctx, imp, err)
		return nil, NewBusinessError("DATASET_SOURCE_FAILED", "Failed to load dataset source", joinCause(ErrDatasetSourceFailed, err))
	}
	if len(listings) == 0 {
		f.fail(ctx, imp, ErrDatasetEmpty)
		return nil, NewBusinessError("DATASET_EMPTY", "Dataset contains no rows", ErrDatasetEmpty)
	}

	completedAt := utils.UTCNow()
	imp.Status = models.DatasetImportStatusCompleted
	imp.RowCount = len(listings)
	imp.CompletedAt = &completedAt

	// the completed record and the new rows commit together
	err = f.inTransaction(ctx, func(txCtx context.Context) error {
		if err := f.importRepo.Update(txCtx, imp); err != nil {
			return NewBusinessError("DATASET_IMPORT_SAVE_FAILED", "Failed to record dataset import", err)
		}
		if err := f.listingRepo.ReplaceAll(txCtx, imp.ID, listings, f.cfg.BatchSize); err != nil {
			return NewBusinessError("DATASET_STORE_FAILED", "Failed to store dataset", err)
		}
		return nil
	})
	if err != nil {
		f.fail(ctx, imp, err)
		var be *BusinessError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, NewBusinessError("DATASET_STORE_FAILED", "Failed to store dataset", err)
	}

	datasetImportsTotal.WithLabelValues(string(models.DatasetImportStatusCompleted)).Inc()
	datasetRows.Set(float64(len(listings)))

	if f.rc != nil {
		genKey := redisKey(*f.cacheConfig, utils.DatasetGenerationKey)
		if err := f.rc.Set(ctx, genKey, imp.ID, 0).Err(); err != nil {
			f.logger.WarnContext(ctx, "failed to publish dataset generation", "error", err)
		}
	}

	f.logger.InfoContext(ctx, "dataset import completed",
		"import_id", imp.ID,
		"rows", len(listings))

	return &dto.ImportDatasetResponse{
		ImportID:    imp.ID,
		UUID:        imp.UUID.String(),
		Source:      source,
		RowCount:    len(listings),
		Generation:  imp.ID,
		CompletedAt: completedAt,
	}, nil
}

func (f *DatasetFlowImpl) fail(ctx context.Context, imp *models.DatasetImport, cause error) {
	datasetImportsTotal.WithLabelValues(string(models.DatasetImportStatusFailed)).Inc()
	f.logger.ErrorContext(ctx, "dataset import failed", "import_id", imp.ID, "error", cause)

	msg := cause.Error()
	completedAt := utils.UTCNow()
	imp.Status = models.DatasetImportStatusFailed
	imp.RowCount = 0
	imp.Error = &msg
	imp.CompletedAt = &completedAt
	// the request context may already be done
	if err := f.importRepo.Update(context.WithoutCancel(ctx), imp); err != nil {
		f.logger.ErrorContext(ctx, "failed to record dataset import failure", "import_id", imp.ID, "error", err)
	}
}

// inTransaction runs fn in one database transaction. Without a database handle the
// repositories write on their own.
func (f *DatasetFlowImpl) inTransaction(ctx context.Context, fn func(context.Context) error) error {
	if f.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, f.db, fn)
}

// requestedSource accepts an http(s) URL, or exactly the configured source. Local
// paths only come from configuration.
func (f *DatasetFlowImpl) requestedSource(raw string) (string, error) {
	if raw == f.cfg.Source {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", NewBusinessError("DATASET_SOURCE_INVALID", "Dataset source must be an http(s) URL", ErrDatasetSourceInvalid)
	}
	return raw, nil
}
