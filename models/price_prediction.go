package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/getaround-pricing/pricing"
	"github.com/amirphl/getaround-pricing/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PredictionInputs is the car description a prediction was computed from, stored as jsonb
type PredictionInputs pricing.CarDescription

// Value implements the driver.Valuer interface for PredictionInputs
func (p PredictionInputs) Value() (driver.Value, error) {
	return json.Marshal(pricing.CarDescription(p))
}

// Scan implements the sql.Scanner interface for PredictionInputs
func (p *PredictionInputs) Scan(value any) error {
	if value == nil {
		*p = PredictionInputs{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PredictionInputs", value)
	}

	var car pricing.CarDescription
	if err := json.Unmarshal(bytes, &car); err != nil {
		return err
	}
	*p = PredictionInputs(car)
	return nil
}

// PricePrediction is an audit record of one served price estimate.
// Table: price_predictions
type PricePrediction struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	UUID              uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_price_predictions_uuid" json:"uuid"`
	RequestID         string           `gorm:"size:64;index:idx_price_predictions_request_id" json:"request_id,omitempty"`
	ModelKey          string           `gorm:"size:64;not null;index:idx_price_predictions_model_key" json:"model_key"`
	Inputs            PredictionInputs `gorm:"type:jsonb;not null" json:"inputs"`
	Price             float64          `gorm:"type:numeric(12,2);not null" json:"price"`
	Currency          string           `gorm:"size:8;not null" json:"currency"`
	UnknownCategories pq.StringArray   `gorm:"type:text[];not null;default:'{}'" json:"unknown_categories"`
	EncoderVersion    string           `gorm:"size:64;not null" json:"encoder_version"`
	RegressorVersion  string           `gorm:"size:64;not null" json:"regressor_version"`
	CreatedAt         time.Time        `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_price_predictions_created_at" json:"created_at"`
}

func (PricePrediction) TableName() string { return "price_predictions" }

// BeforeCreate is called before creating a new record
func (p *PricePrediction) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.UnknownCategories == nil {
		p.UnknownCategories = pq.StringArray{}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// PricePredictionFilter represents filter criteria for prediction queries
type PricePredictionFilter struct {
	ModelKey      *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
