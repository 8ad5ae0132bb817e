package drawkeeper

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/openalpha/prize-savings/pkg/grpcclient"
)

// TxSubmitter defines the interface for submitting draw transactions to the
// chain.
type TxSubmitter interface {
	// SyncPool settles the pool against its yield source
	SyncPool(ctx context.Context, poolID uint64) error

	// StartDraw freezes the ended round and opens draw processing
	StartDraw(ctx context.Context, poolID uint64) error

	// DriveDraw walks the snapshot batch and attempts completion
	DriveDraw(ctx context.Context, poolID, batchLimit uint64) error

	// StartNextRound closes the intermission
	StartNextRound(ctx context.Context, poolID uint64) error

	// GetStatus returns the submitter status
	GetStatus() SubmitterStatus
}

// SubmitterStatus represents the status of a submitter
type SubmitterStatus struct {
	Connected         bool
	LastSubmitTime    time.Time
	LastError         string
	TotalSubmissions  int64
	FailedSubmissions int64
}

// MockSubmitter is a mock implementation for testing
type MockSubmitter struct {
	mu              sync.Mutex
	actions         []string
	status          SubmitterStatus
	simulateFailure bool

	// driveFailures makes DriveDraw fail this many times before succeeding,
	// mimicking incomplete batches and pending randomness
	driveFailures int
}

// NewMockSubmitter creates a new mock submitter
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{
		actions: make([]string, 0),
		status: SubmitterStatus{
			Connected: true,
		},
	}
}

func (s *MockSubmitter) record(action string, poolID uint64, fail bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fail {
		s.status.FailedSubmissions++
		s.status.LastError = "simulated failure"
		return fmt.Errorf("simulated failure")
	}

	s.actions = append(s.actions, fmt.Sprintf("%s:%d", action, poolID))
	s.status.TotalSubmissions++
	s.status.LastSubmitTime = time.Now()
	return nil
}

// SyncPool records a sync submission
func (s *MockSubmitter) SyncPool(ctx context.Context, poolID uint64) error {
	return s.record("sync", poolID, s.failing())
}

// StartDraw records a draw start submission
func (s *MockSubmitter) StartDraw(ctx context.Context, poolID uint64) error {
	return s.record("start_draw", poolID, s.failing())
}

// DriveDraw records a batch-and-complete submission
func (s *MockSubmitter) DriveDraw(ctx context.Context, poolID, batchLimit uint64) error {
	s.mu.Lock()
	retry := s.driveFailures > 0
	if retry {
		s.driveFailures--
	}
	s.mu.Unlock()

	return s.record("drive_draw", poolID, s.failing() || retry)
}

// StartNextRound records an intermission close submission
func (s *MockSubmitter) StartNextRound(ctx context.Context, poolID uint64) error {
	return s.record("start_next_round", poolID, s.failing())
}

// GetStatus returns the mock submitter status
func (s *MockSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Actions returns all recorded submissions (for testing)
func (s *MockSubmitter) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]string, len(s.actions))
	copy(result, s.actions)
	return result
}

// SetSimulateFailure enables or disables failure simulation
func (s *MockSubmitter) SetSimulateFailure(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailure = fail
}

// SetDriveFailures makes the next n DriveDraw calls fail
func (s *MockSubmitter) SetDriveFailures(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.driveFailures = n
}

func (s *MockSubmitter) failing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simulateFailure
}

// GRPCSubmitter submits draw transactions through the pooled gRPC client
type GRPCSubmitter struct {
	client *grpcclient.Client

	mu     sync.Mutex
	status SubmitterStatus
}

// NewGRPCSubmitter creates a submitter backed by a signing gRPC client
func NewGRPCSubmitter(client *grpcclient.Client) *GRPCSubmitter {
	return &GRPCSubmitter{
		client: client,
		status: SubmitterStatus{
			Connected: true,
		},
	}
}

func (s *GRPCSubmitter) track(res *grpcclient.TxResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.Error != nil {
		s.status.FailedSubmissions++
		s.status.LastError = res.Error.Error()
		return res.Error
	}
	s.status.TotalSubmissions++
	s.status.LastSubmitTime = time.Now()
	return nil
}

// SyncPool settles the pool against its yield source
func (s *GRPCSubmitter) SyncPool(ctx context.Context, poolID uint64) error {
	return s.track(s.client.ProcessRewards(ctx, poolID))
}

// StartDraw freezes the ended round
func (s *GRPCSubmitter) StartDraw(ctx context.Context, poolID uint64) error {
	return s.track(s.client.StartDraw(ctx, poolID))
}

// DriveDraw walks the snapshot batch and attempts completion
func (s *GRPCSubmitter) DriveDraw(ctx context.Context, poolID, batchLimit uint64) error {
	return s.track(s.client.DriveDraw(ctx, poolID, batchLimit))
}

// StartNextRound closes the intermission
func (s *GRPCSubmitter) StartNextRound(ctx context.Context, poolID uint64) error {
	return s.track(s.client.StartNextRound(ctx, poolID))
}

// GetStatus returns the submitter status
func (s *GRPCSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// NewSubmitter creates a submitter based on the type. Unknown types fall back
// to the mock.
func NewSubmitter(submitterType string, client *grpcclient.Client) TxSubmitter {
	switch submitterType {
	case "grpc":
		if client == nil {
			log.Println("grpc submitter requested without a client, using mock")
			return NewMockSubmitter()
		}
		return NewGRPCSubmitter(client)
	default:
		return NewMockSubmitter()
	}
}
