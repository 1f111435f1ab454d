package dto

import "time"

// ImportDatasetRequest triggers a dataset import. The configured source is used when Source is empty;
// otherwise Source must be an http(s) URL.
type ImportDatasetRequest struct {
	Source string `json:"source,omitempty" validate:"omitempty,max=2048"`
}

// ImportDatasetResponse summarizes a completed import
type ImportDatasetResponse struct {
	ImportID    uint      `json:"import_id"`
	UUID        string    `json:"uuid"`
	Source      string    `json:"source"`
	RowCount    int       `json:"row_count"`
	Generation  uint      `json:"generation"`
	CompletedAt time.Time `json:"completed_at"`
}

// HealthResponse reports service liveness and pricing readiness
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	Environment string    `json:"environment"`
	CommitHash  string    `json:"commit_hash"`
	BuildTime   string    `json:"build_time"`
	ModelLoaded bool      `json:"model_loaded"`
}
