package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/amirphl/getaround-pricing/app/dto"
	"github.com/amirphl/getaround-pricing/config"
	"github.com/amirphl/getaround-pricing/dataset"
	"github.com/amirphl/getaround-pricing/models"
	"github.com/amirphl/getaround-pricing/repository"
	"github.com/amirphl/getaround-pricing/utils"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "listings"

// ExplorationFlow queries the imported rental pricing dataset
type ExplorationFlow interface {
	SearchByBrand(ctx context.Context, brand string) (*dto.SearchListingsResponse, error)
	SearchByMaxMileage(ctx context.Context, req *dto.MaxMileageRequest) (*dto.SearchListingsResponse, error)
	UniqueValues(ctx context.Context, req *dto.UniqueValuesRequest) (*dto.UniqueValuesResponse, error)
	Export(ctx context.Context, req *dto.ExportListingsRequest) (*dto.ExportListingsResponse, error)
}

type ExplorationFlowImpl struct {
	listingRepo repository.CarListingRepository
	importRepo  repository.DatasetImportRepository
	rc          *redis.Client
	cacheConfig *config.CacheConfig
	logger      *slog.Logger
}

// NewExplorationFlow creates an exploration flow. rc may be nil, in which case
// every query goes to the database.
func NewExplorationFlow(
	listingRepo repository.CarListingRepository,
	importRepo repository.DatasetImportRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	logger *slog.Logger,
) ExplorationFlow {
	if cacheConfig == nil {
		cacheConfig = &config.CacheConfig{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExplorationFlowImpl{
		listingRepo: listingRepo,
		importRepo:  importRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
		logger:      logger,
	}
}

// SearchByBrand returns every listing of a known brand, in dataset order.
func (f *ExplorationFlowImpl) SearchByBrand(ctx context.Context, brand string) (*dto.SearchListingsResponse, error) {
	if !utils.IsKnownBrand(brand) {
		return nil, NewBusinessErrorf("EXPLORATION_UNKNOWN_BRAND", "Unknown brand %q", ErrUnknownBrand, brand)
	}

	return cachedQuery(ctx, f, "brand:"+brand, func(ctx context.Context) (*dto.SearchListingsResponse, error) {
		rows, err := f.listingRepo.ByFilter(ctx, models.CarListingFilter{ModelKey: &brand}, "", 0, 0)
		if err != nil {
			return nil, NewBusinessError("EXPLORATION_SEARCH_FAILED", "Failed to search listings", err)
		}
		return toSearchListingsResponse(rows), nil
	})
}

// SearchByMaxMileage returns the listings whose mileage does not exceed the bound.
func (f *ExplorationFlowImpl) SearchByMaxMileage(ctx context.Context, req *dto.MaxMileageRequest) (*dto.SearchListingsResponse, error) {
	maxMileage := int64(utils.DefaultMaxMileage)
	if req != nil && req.MaxMileage != nil {
		maxMileage = *req.MaxMileage
	}
	if maxMileage < 0 {
		return nil, NewBusinessError("EXPLORATION_NEGATIVE_MILEAGE", "Mileage must be non-negative", ErrNegativeMileage)
	}

	query := "mileage:" + strconv.FormatInt(maxMileage, 10)
	return cachedQuery(ctx, f, query, func(ctx context.Context) (*dto.SearchListingsResponse, error) {
		rows, err := f.listingRepo.ByFilter(ctx, models.CarListingFilter{MaxMileage: &maxMileage}, "", 0, 0)
		if err != nil {
			return nil, NewBusinessError("EXPLORATION_SEARCH_FAILED", "Failed to search listings", err)
		}
		return toSearchListingsResponse(rows), nil
	})
}

// UniqueValues returns the distinct values of a column in order of first appearance.
// Continuous columns other than engine_power are rejected.
func (f *ExplorationFlowImpl) UniqueValues(ctx context.Context, req *dto.UniqueValuesRequest) (*dto.UniqueValuesResponse, error) {
	column := strings.TrimSpace(req.Column)
	kind, ok := uniqueValueColumns[column]
	if !ok {
		return nil, NewBusinessErrorf("EXPLORATION_UNSUPPORTED_COLUMN", "Column %q does not support unique values", ErrUnsupportedColumn, column)
	}

	return cachedQuery(ctx, f, "unique:"+column, func(ctx context.Context) (*dto.UniqueValuesResponse, error) {
		var values []any
		switch kind {
		case columnKindString:
			vs, err := f.listingRepo.DistinctStrings(ctx, column)
			if err != nil {
				return nil, NewBusinessError("EXPLORATION_UNIQUE_VALUES_FAILED", "Failed to list unique values", err)
			}
			values = toAnySlice(vs)
		case columnKindInt:
			vs, err := f.listingRepo.DistinctInts(ctx, column)
			if err != nil {
				return nil, NewBusinessError("EXPLORATION_UNIQUE_VALUES_FAILED", "Failed to list unique values", err)
			}
			values = toAnySlice(vs)
		case columnKindBool:
			vs, err := f.listingRepo.DistinctBools(ctx, column)
			if err != nil {
				return nil, NewBusinessError("EXPLORATION_UNIQUE_VALUES_FAILED", "Failed to list unique values", err)
			}
			values = toAnySlice(vs)
		}
		return &dto.UniqueValuesResponse{Column: column, Values: values}, nil
	})
}

// Export writes the listings matching the optional brand and mileage filters to a workbook.
func (f *ExplorationFlowImpl) Export(ctx context.Context, req *dto.ExportListingsRequest) (*dto.ExportListingsResponse, error) {
	filter := models.CarListingFilter{}
	nameParts := []string{"getaround_listings"}
	if req != nil && req.Brand != nil && *req.Brand != "" {
		if !utils.IsKnownBrand(*req.Brand) {
			return nil, NewBusinessErrorf("EXPLORATION_UNKNOWN_BRAND", "Unknown brand %q", ErrUnknownBrand, *req.Brand)
		}
		filter.ModelKey = req.Brand
		nameParts = append(nameParts, sanitizeFileName(*req.Brand))
	}
	if req != nil && req.MaxMileage != nil {
		if *req.MaxMileage < 0 {
			return nil, NewBusinessError("EXPLORATION_NEGATIVE_MILEAGE", "Mileage must be non-negative", ErrNegativeMileage)
		}
		filter.MaxMileage = req.MaxMileage
		nameParts = append(nameParts, "max"+strconv.FormatInt(*req.MaxMileage, 10))
	}

	if _, err := f.generation(ctx); err != nil {
		return nil, err
	}

	rows, err := f.listingRepo.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("EXPLORATION_SEARCH_FAILED", "Failed to search listings", err)
	}

	content, err := writeListingsWorkbook(rows)
	if err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	return &dto.ExportListingsResponse{
		FileName: strings.Join(nameParts, "_") + ".xlsx",
		Rows:     len(rows),
		Content:  content,
	}, nil
}

// generation returns the ID of the latest completed import. Results cached under an
// older generation are never read again.
func (f *ExplorationFlowImpl) generation(ctx context.Context) (uint, error) {
	genKey := redisKey(*f.cacheConfig, utils.DatasetGenerationKey)
	if f.rc != nil {
		if s, err := f.rc.Get(ctx, genKey).Result(); err == nil {
			if g, err := strconv.ParseUint(s, 10, 64); err == nil && g > 0 {
				return uint(g), nil
			}
		} else if !errors.Is(err, redis.Nil) {
			f.logger.DebugContext(ctx, "dataset generation cache unavailable", "error", err)
		}
	}

	imp, err := f.importRepo.LatestCompleted(ctx)
	if err != nil {
		return 0, NewBusinessError("DATASET_LOOKUP_FAILED", "Failed to look up the dataset", err)
	}
	if imp == nil {
		return 0, NewBusinessError("DATASET_NOT_IMPORTED", "The dataset has not been imported yet", ErrDatasetNotImported)
	}

	if f.rc != nil {
		_ = f.rc.Set(ctx, genKey, imp.ID, 0).Err()
	}
	return imp.ID, nil
}

// cachedQuery serves a query from redis when possible and falls back to load.
func cachedQuery[T any](ctx context.Context, f *ExplorationFlowImpl, query string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	gen, err := f.generation(ctx)
	if err != nil {
		return zero, err
	}

	if f.rc == nil {
		return load(ctx)
	}

	cacheKey := redisKey(*f.cacheConfig, utils.ExplorationCacheKey, strconv.FormatUint(uint64(gen), 10), query)
	if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
		var cached T
		if err := json.Unmarshal(bs, &cached); err == nil {
			explorationCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		explorationCacheTotal.WithLabelValues("error").Inc()
		f.logger.WarnContext(ctx, "exploration cache read failed", "request_id", utils.RequestIDFrom(ctx), "key", cacheKey, "error", err)
		return load(ctx)
	}
	explorationCacheTotal.WithLabelValues("miss").Inc()

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}
	if bs, err := json.Marshal(v); err == nil {
		if err := f.rc.Set(ctx, cacheKey, bs, f.cacheConfig.DefaultTTL).Err(); err != nil {
			f.logger.WarnContext(ctx, "exploration cache write failed", "request_id", utils.RequestIDFrom(ctx), "key", cacheKey, "error", err)
		}
	}
	return v, nil
}

type columnKind int

const (
	columnKindString columnKind = iota
	columnKindInt
	columnKindBool
)

var uniqueValueColumns = map[string]columnKind{
	dataset.ColumnModelKey:                columnKindString,
	dataset.ColumnFuel:                    columnKindString,
	dataset.ColumnPaintColor:              columnKindString,
	dataset.ColumnCarType:                 columnKindString,
	dataset.ColumnEnginePower:             columnKindInt,
	dataset.ColumnPrivateParkingAvailable: columnKindBool,
	dataset.ColumnHasGPS:                  columnKindBool,
	dataset.ColumnHasAirConditioning:      columnKindBool,
	dataset.ColumnAutomaticCar:            columnKindBool,
	dataset.ColumnHasGetaroundConnect:     columnKindBool,
	dataset.ColumnHasSpeedRegulator:       columnKindBool,
	dataset.ColumnWinterTires:             columnKindBool,
}

func toAnySlice[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func toCarListingItem(l *models.CarListing) dto.CarListingItem {
	return dto.CarListingItem{
		RowIndex:                l.RowIndex,
		ModelKey:                l.ModelKey,
		Mileage:                 l.Mileage,
		EnginePower:             l.EnginePower,
		Fuel:                    l.Fuel,
		PaintColor:              l.PaintColor,
		CarType:                 l.CarType,
		PrivateParkingAvailable: l.PrivateParkingAvailable,
		HasGPS:                  l.HasGPS,
		HasAirConditioning:      l.HasAirConditioning,
		AutomaticCar:            l.AutomaticCar,
		HasGetaroundConnect:     l.HasGetaroundConnect,
		HasSpeedRegulator:       l.HasSpeedRegulator,
		WinterTires:             l.WinterTires,
		RentalPricePerDay:       l.RentalPricePerDay,
	}
}

func toSearchListingsResponse(rows []*models.CarListing) *dto.SearchListingsResponse {
	items := make([]dto.CarListingItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, toCarListingItem(r))
	}
	return &dto.SearchListingsResponse{Count: len(items), Listings: items}
}

func writeListingsWorkbook(rows []*models.CarListing) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), exportSheetName); err != nil {
		return nil, err
	}

	header := make([]any, 0, len(dataset.Columns))
	for _, c := range dataset.Columns {
		header = append(header, c)
	}
	if err := xl.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range rows {
		record := []any{
			r.ModelKey, r.Mileage, r.EnginePower, r.Fuel, r.PaintColor, r.CarType,
			r.PrivateParkingAvailable, r.HasGPS, r.HasAirConditioning, r.AutomaticCar,
			r.HasGetaroundConnect, r.HasSpeedRegulator, r.WinterTires, r.RentalPricePerDay,
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(exportSheetName, cellRef, &record); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sanitizeFileName(name string) string {
	// Excel and most filesystems reject these
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_", " ", "_")
	return replacer.Replace(strings.TrimSpace(name))
}
