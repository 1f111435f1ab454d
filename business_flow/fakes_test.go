package businessflow

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/amirphl/getaround-pricing/models"
	"github.com/amirphl/getaround-pricing/pricing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type fakeEstimator struct {
	est    *pricing.PriceEstimate
	err    error
	loaded bool
	calls  int
}

func (f *fakeEstimator) Load() (*pricing.Pipeline, error) { return nil, f.err }
func (f *fakeEstimator) Loaded() bool                     { return f.loaded }
func (f *fakeEstimator) EstimatePrice(pricing.CarDescription) (*pricing.PriceEstimate, error) {
	f.calls++
	return f.est, f.err
}

type fakePredictionRepo struct {
	mu      sync.Mutex
	rows    []*models.PricePrediction
	saveErr error
}

func (r *fakePredictionRepo) ByID(_ context.Context, id uint) (*models.PricePrediction, error) {
	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, nil
}

func (r *fakePredictionRepo) ByFilter(_ context.Context, filter models.PricePredictionFilter, _ string, limit, offset int) ([]*models.PricePrediction, error) {
	var out []*models.PricePrediction
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if filter.ModelKey != nil && row.ModelKey != *filter.ModelKey {
			continue
		}
		out = append(out, row)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePredictionRepo) Save(_ context.Context, row *models.PricePrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	row.ID = uint(len(r.rows) + 1)
	row.UUID = uuid.New()
	row.CreatedAt = time.Now().UTC()
	r.rows = append(r.rows, row)
	return nil
}

func (r *fakePredictionRepo) SaveBatch(ctx context.Context, rows []*models.PricePrediction) error {
	for _, row := range rows {
		if err := r.Save(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakePredictionRepo) Count(ctx context.Context, filter models.PricePredictionFilter) (int64, error) {
	rows, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), nil
}

type fakeListingRepo struct {
	listings   []*models.CarListing
	importID   uint
	queries    int
	replaceErr error
}

func (r *fakeListingRepo) ByID(_ context.Context, id uint) (*models.CarListing, error) {
	for _, l := range r.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeListingRepo) ByFilter(_ context.Context, filter models.CarListingFilter, _ string, limit, _ int) ([]*models.CarListing, error) {
	r.queries++
	var out []*models.CarListing
	for _, l := range r.listings {
		if filter.ModelKey != nil && l.ModelKey != *filter.ModelKey {
			continue
		}
		if filter.MaxMileage != nil && l.Mileage > *filter.MaxMileage {
			continue
		}
		out = append(out, l)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeListingRepo) Save(_ context.Context, l *models.CarListing) error {
	r.listings = append(r.listings, l)
	return nil
}

func (r *fakeListingRepo) SaveBatch(ctx context.Context, ls []*models.CarListing) error {
	r.listings = append(r.listings, ls...)
	return nil
}

func (r *fakeListingRepo) Count(ctx context.Context, filter models.CarListingFilter) (int64, error) {
	rows, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), nil
}

func (r *fakeListingRepo) ReplaceAll(_ context.Context, importID uint, ls []*models.CarListing, _ int) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	for _, l := range ls {
		l.ImportID = importID
	}
	r.importID = importID
	r.listings = ls
	return nil
}

func (r *fakeListingRepo) DistinctStrings(_ context.Context, column string) ([]string, error) {
	r.queries++
	var out []string
	for _, l := range r.listings {
		var v string
		switch column {
		case "model_key":
			v = l.ModelKey
		case "fuel":
			v = l.Fuel
		case "paint_color":
			v = l.PaintColor
		case "car_type":
			v = l.CarType
		default:
			return nil, errors.New("unknown column")
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) DistinctInts(_ context.Context, column string) ([]int64, error) {
	r.queries++
	if column != "engine_power" {
		return nil, errors.New("unknown column")
	}
	var out []int64
	for _, l := range r.listings {
		v := int64(l.EnginePower)
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) DistinctBools(_ context.Context, column string) ([]bool, error) {
	r.queries++
	var out []bool
	for _, l := range r.listings {
		var v bool
		switch column {
		case "has_gps":
			v = l.HasGPS
		case "automatic_car":
			v = l.AutomaticCar
		default:
			v = l.WinterTires
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeImportRepo struct {
	imports   []*models.DatasetImport
	lookupErr error
	// failUpdates makes the next n Update calls fail
	failUpdates int
}

func (r *fakeImportRepo) ByID(_ context.Context, id uint) (*models.DatasetImport, error) {
	for _, imp := range r.imports {
		if imp.ID == id {
			return imp, nil
		}
	}
	return nil, nil
}

func (r *fakeImportRepo) Save(_ context.Context, imp *models.DatasetImport) error {
	imp.ID = uint(len(r.imports) + 1)
	imp.UUID = uuid.New()
	if imp.Status == "" {
		imp.Status = models.DatasetImportStatusRunning
	}
	r.imports = append(r.imports, imp)
	return nil
}

func (r *fakeImportRepo) Update(_ context.Context, imp *models.DatasetImport) error {
	if r.failUpdates > 0 {
		r.failUpdates--
		return errors.New("connection reset by peer")
	}
	for i, existing := range r.imports {
		if existing.ID == imp.ID {
			r.imports[i] = imp
			return nil
		}
	}
	return errors.New("import not found")
}

func (r *fakeImportRepo) LatestCompleted(context.Context) (*models.DatasetImport, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for i := len(r.imports) - 1; i >= 0; i-- {
		if r.imports[i].Status == models.DatasetImportStatusCompleted {
			return r.imports[i], nil
		}
	}
	return nil, nil
}

type fakeSource struct {
	listings []*models.CarListing
	err      error
	sources  []string
	block    chan struct{}
	entered  chan struct{}
}

func (s *fakeSource) Load(ctx context.Context, source string) ([]*models.CarListing, error) {
	s.sources = append(s.sources, source)
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	return s.listings, s.err
}

// unreachableRedis returns a client whose every command fails fast
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func sampleListings() []*models.CarListing {
	return []*models.CarListing{
		{ID: 1, RowIndex: 0, ModelKey: "Citroën", Mileage: 140411, EnginePower: 100, Fuel: "diesel", PaintColor: "black", CarType: "convertible", HasGPS: true, RentalPricePerDay: 106},
		{ID: 2, RowIndex: 1, ModelKey: "Citroën", Mileage: 13929, EnginePower: 317, Fuel: "petrol", PaintColor: "grey", CarType: "convertible", HasGPS: true, RentalPricePerDay: 264},
		{ID: 3, RowIndex: 2, ModelKey: "Renault", Mileage: 183297, EnginePower: 120, Fuel: "diesel", PaintColor: "white", CarType: "convertible", RentalPricePerDay: 101},
		{ID: 4, RowIndex: 3, ModelKey: "BMW", Mileage: 49000, EnginePower: 135, Fuel: "diesel", PaintColor: "black", CarType: "sedan", AutomaticCar: true, RentalPricePerDay: 158},
	}
}

func completedImports() *fakeImportRepo {
	return &fakeImportRepo{imports: []*models.DatasetImport{
		{ID: 1, UUID: uuid.New(), Source: "fixtures", Status: models.DatasetImportStatusCompleted, RowCount: 4},
	}}
}
