package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirphl/getaround-pricing/app/dto"
	businessflow "github.com/amirphl/getaround-pricing/business_flow"
	"github.com/stretchr/testify/assert"
)

type countingDatasetFlow struct {
	calls atomic.Int32
	err   error
	agent atomic.Value
}

func (f *countingDatasetFlow) Import(ctx context.Context, req *dto.ImportDatasetRequest, metadata *businessflow.ClientMetadata) (*dto.ImportDatasetResponse, error) {
	f.calls.Add(1)
	f.agent.Store(metadata.UserAgent)
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ImportDatasetResponse{ImportID: uint(f.calls.Load()), RowCount: 2}, nil
}

func TestDatasetScheduler_RunAtStartOnly(t *testing.T) {
	flow := &countingDatasetFlow{}
	s := NewDatasetScheduler(flow, 0, time.Second, true, nil)
	assert.True(t, s.Enabled())

	stop := s.Start(context.Background())
	assert.Eventually(t, func() bool { return flow.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	stop()

	assert.Equal(t, int32(1), flow.calls.Load())
	assert.Equal(t, schedulerUserAgent, flow.agent.Load())
}

func TestDatasetScheduler_Periodic(t *testing.T) {
	flow := &countingDatasetFlow{}
	s := NewDatasetScheduler(flow, 10*time.Millisecond, time.Second, false, nil)

	stop := s.Start(context.Background())
	assert.Eventually(t, func() bool { return flow.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	stop()

	// no import runs once stopped
	calls := flow.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, flow.calls.Load())
}

func TestDatasetScheduler_FailuresKeepRunning(t *testing.T) {
	flow := &countingDatasetFlow{err: businessflow.NewBusinessError("DATASET_SOURCE_FAILED", "Failed to load dataset source", errors.Join(businessflow.ErrDatasetSourceFailed, errors.New("timeout")))}
	s := NewDatasetScheduler(flow, 10*time.Millisecond, time.Second, true, nil)

	stop := s.Start(context.Background())
	assert.Eventually(t, func() bool { return flow.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	stop()
}

func TestDatasetScheduler_Disabled(t *testing.T) {
	flow := &countingDatasetFlow{}
	s := NewDatasetScheduler(flow, 0, 0, false, nil)
	assert.False(t, s.Enabled())

	stop := s.Start(context.Background())
	stop()
	assert.Equal(t, int32(0), flow.calls.Load())
}
