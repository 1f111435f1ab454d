package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amirphl/getaround-pricing/models"
	"github.com/xuri/excelize/v2"
)

// Column names of the pricing dataset
const (
	ColumnModelKey                = "model_key"
	ColumnMileage                 = "mileage"
	ColumnEnginePower             = "engine_power"
	ColumnFuel                    = "fuel"
	ColumnPaintColor              = "paint_color"
	ColumnCarType                 = "car_type"
	ColumnPrivateParkingAvailable = "private_parking_available"
	ColumnHasGPS                  = "has_gps"
	ColumnHasAirConditioning      = "has_air_conditioning"
	ColumnAutomaticCar            = "automatic_car"
	ColumnHasGetaroundConnect     = "has_getaround_connect"
	ColumnHasSpeedRegulator       = "has_speed_regulator"
	ColumnWinterTires             = "winter_tires"
	ColumnRentalPricePerDay       = "rental_price_per_day"
)

// Columns lists every required column in dataset order.
var Columns = []string{
	ColumnModelKey, ColumnMileage, ColumnEnginePower, ColumnFuel, ColumnPaintColor, ColumnCarType,
	ColumnPrivateParkingAvailable, ColumnHasGPS, ColumnHasAirConditioning, ColumnAutomaticCar,
	ColumnHasGetaroundConnect, ColumnHasSpeedRegulator, ColumnWinterTires, ColumnRentalPricePerDay,
}

// ParseError reports a malformed dataset row. Line is 1-based and counts the header.
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseCSV parses a CSV dataset. A leading unnamed index column is ignored.
func ParseCSV(r io.Reader) ([]*models.CarListing, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Line: 1, Err: errors.New("missing header")}
		}
		return nil, &ParseError{Line: 1, Err: err}
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var listings []*models.CarListing
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		l, err := parseRecord(record, idx, line, len(listings))
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// ParseXLSX parses an Excel dataset from the named sheet, or the first sheet when sheet is empty.
func ParseXLSX(r io.Reader, sheet string) ([]*models.CarListing, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, &ParseError{Line: 1, Err: errors.New("missing header")}
	}

	idx, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	listings := make([]*models.CarListing, 0, len(rows)-1)
	for i, record := range rows[1:] {
		if isBlank(record) {
			continue
		}
		l, err := parseRecord(record, idx, i+2, len(listings))
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" || strings.HasPrefix(name, "Unnamed") {
			continue
		}
		if _, dup := idx[name]; dup {
			return nil, &ParseError{Line: 1, Column: name, Err: errors.New("duplicate column")}
		}
		idx[name] = i
	}
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			return nil, &ParseError{Line: 1, Column: c, Err: errors.New("missing column")}
		}
	}
	return idx, nil
}

func parseRecord(record []string, idx map[string]int, line, rowIndex int) (*models.CarListing, error) {
	p := recordParser{record: record, idx: idx, line: line}
	l := &models.CarListing{
		RowIndex:                rowIndex,
		ModelKey:                p.text(ColumnModelKey),
		Mileage:                 p.integer(ColumnMileage),
		EnginePower:             int(p.integer(ColumnEnginePower)),
		Fuel:                    p.text(ColumnFuel),
		PaintColor:              p.text(ColumnPaintColor),
		CarType:                 p.text(ColumnCarType),
		PrivateParkingAvailable: p.boolean(ColumnPrivateParkingAvailable),
		HasGPS:                  p.boolean(ColumnHasGPS),
		HasAirConditioning:      p.boolean(ColumnHasAirConditioning),
		AutomaticCar:            p.boolean(ColumnAutomaticCar),
		HasGetaroundConnect:     p.boolean(ColumnHasGetaroundConnect),
		HasSpeedRegulator:       p.boolean(ColumnHasSpeedRegulator),
		WinterTires:             p.boolean(ColumnWinterTires),
		RentalPricePerDay:       int(p.integer(ColumnRentalPricePerDay)),
	}
	if p.err != nil {
		return nil, p.err
	}
	return l, nil
}

// recordParser keeps the first error so a row can be decoded field by field
type recordParser struct {
	record []string
	idx    map[string]int
	line   int
	err    error
}

func (p *recordParser) field(column string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	i := p.idx[column]
	if i >= len(p.record) {
		p.err = &ParseError{Line: p.line, Column: column, Err: errors.New("missing value")}
		return "", false
	}
	v := strings.TrimSpace(p.record[i])
	if v == "" {
		p.err = &ParseError{Line: p.line, Column: column, Err: errors.New("empty value")}
		return "", false
	}
	return v, true
}

func (p *recordParser) text(column string) string {
	v, _ := p.field(column)
	return v
}

func (p *recordParser) integer(column string) int64 {
	v, ok := p.field(column)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// spreadsheets sometimes store whole numbers as floats
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int64(f)) {
			p.err = &ParseError{Line: p.line, Column: column, Err: fmt.Errorf("invalid integer %q", v)}
			return 0
		}
		n = int64(f)
	}
	if n < 0 {
		p.err = &ParseError{Line: p.line, Column: column, Err: fmt.Errorf("negative value %d", n)}
		return 0
	}
	return n
}

func (p *recordParser) boolean(column string) bool {
	v, ok := p.field(column)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = &ParseError{Line: p.line, Column: column, Err: fmt.Errorf("invalid boolean %q", v)}
		return false
	}
	return b
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
