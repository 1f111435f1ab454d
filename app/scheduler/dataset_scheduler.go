// Package scheduler runs the periodic background jobs of the service
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	businessflow "github.com/amirphl/getaround-pricing/business_flow"
)

const schedulerUserAgent = "dataset-scheduler"

// DatasetScheduler imports the configured dataset source at startup and then on a fixed interval
type DatasetScheduler struct {
	datasetFlow businessflow.DatasetFlow
	logger      *slog.Logger
	interval    time.Duration
	timeout     time.Duration
	runAtStart  bool
}

// NewDatasetScheduler creates a scheduler. A non-positive interval disables the periodic
// refresh; runAtStart still triggers one import when Start is called.
func NewDatasetScheduler(datasetFlow businessflow.DatasetFlow, interval, timeout time.Duration, runAtStart bool, logger *slog.Logger) *DatasetScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &DatasetScheduler{
		datasetFlow: datasetFlow,
		logger:      logger,
		interval:    interval,
		timeout:     timeout,
		runAtStart:  runAtStart,
	}
}

// Enabled reports whether Start would do any work.
func (s *DatasetScheduler) Enabled() bool {
	return s.runAtStart || s.interval > 0
}

// Start launches the scheduler loop. The returned function stops it and waits for a
// running import to return.
func (s *DatasetScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)

		if s.runAtStart {
			s.runOnce(ctx)
		}
		if s.interval <= 0 {
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (s *DatasetScheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	metadata := businessflow.NewClientMetadata("", schedulerUserAgent)
	res, err := s.datasetFlow.Import(ctx, &dto.ImportDatasetRequest{}, metadata)
	if err != nil {
		if businessflow.IsImportInProgress(err) {
			s.logger.Info("scheduler: dataset import skipped, another import is running")
			return
		}
		s.logger.Error("scheduler: dataset import failed", "error", err)
		return
	}
	s.logger.Info("scheduler: dataset imported",
		"import_id", res.ImportID,
		"rows", res.RowCount,
		"source", res.Source)
}
