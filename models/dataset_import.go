package models

import (
	"fmt"
	"time"

	"github.com/amirphl/getaround-pricing/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DatasetImportStatus represents the state of a dataset import
type DatasetImportStatus string

const (
	DatasetImportStatusRunning   DatasetImportStatus = "running"
	DatasetImportStatusCompleted DatasetImportStatus = "completed"
	DatasetImportStatusFailed    DatasetImportStatus = "failed"
)

// Valid checks if the status is valid
func (s DatasetImportStatus) Valid() bool {
	switch s {
	case DatasetImportStatusRunning, DatasetImportStatusCompleted, DatasetImportStatusFailed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for DatasetImportStatus
func (s *DatasetImportStatus) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*s = ""
	case string:
		*s = DatasetImportStatus(v)
	case []byte:
		*s = DatasetImportStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DatasetImportStatus", value)
	}
	return nil
}

// DatasetImport records one load of the pricing dataset. The ID of the latest
// completed import is the dataset generation used to scope cached exploration results.
type DatasetImport struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:uk_dataset_imports_uuid" json:"uuid"`
	Source      string              `gorm:"type:text;not null" json:"source"`
	Status      DatasetImportStatus `gorm:"size:16;not null;index:idx_dataset_imports_status" json:"status"`
	RowCount    int                 `gorm:"not null;default:0" json:"row_count"`
	Error       *string             `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time           `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_dataset_imports_created_at" json:"created_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

func (DatasetImport) TableName() string { return "dataset_imports" }

// BeforeCreate is called before creating a new record
func (d *DatasetImport) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DatasetImportStatusRunning
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = utils.UTCNow()
	}
	return nil
}
