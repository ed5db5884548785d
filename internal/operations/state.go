package operations

import (
	"sync"
	"time"

	"csvhealth/internal/cleaning"
	"csvhealth/internal/dataset"
	"csvhealth/internal/profile"
	"csvhealth/internal/report"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunState carries the artifacts of one cleansing run between steps.
// The run id is supplied by the caller; the pipeline keeps no global
// counters of its own.
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Filename  string     `json:"filename"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Step states keyed by step ID
	Steps map[string]*StepState `json:"steps"`

	// Inputs
	Raw         []byte            `json:"-"`
	Strategy    cleaning.Strategy `json:"strategy"`
	Placeholder string            `json:"placeholder,omitempty"`

	// Artifacts produced by the steps, in pipeline order. Earlier
	// artifacts are never overwritten: the pre-clean table stays
	// available for before/after comparison.
	Table       *dataset.Table         `json:"-"`
	Report      *profile.QualityReport `json:"-"`
	Cleaned     *dataset.Table         `json:"-"`
	CleanResult *cleaning.Result       `json:"-"`
	Summary     report.Summary         `json:"-"`
	Narrative   string                 `json:"-"`

	Err error `json:"-"`
}

// NewRunState creates the state for one run
func NewRunState(id, filename string, raw []byte, strategy cleaning.Strategy, placeholder string) *RunState {
	return &RunState{
		ID:          id,
		Filename:    filename,
		Status:      RunStatusPending,
		StartTime:   time.Now(),
		Steps:       make(map[string]*StepState),
		Raw:         raw,
		Strategy:    strategy,
		Placeholder: placeholder,
	}
}

// Start marks the run as running
func (s *RunState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed
func (s *RunState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusFailed
	s.Err = err
}

// StepState returns the tracked state for a step, creating it on first use
func (s *RunState) StepState(id, name string) *StepState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.Steps[id]; ok {
		return state
	}
	state := NewStepState(id, name)
	s.Steps[id] = state
	return state
}

// CurrentStatus returns the run status under the read lock
func (s *RunState) CurrentStatus() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns how long the run has been executing
func (s *RunState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}
