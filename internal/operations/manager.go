package operations

import (
	"context"
	"log/slog"
	"time"
)

// EventSink receives run lifecycle notifications. The WebSocket hub
// implements this; tests use a recording stub.
type EventSink interface {
	RunStatusChanged(runID string, status RunStatus)
	StepStatusChanged(runID string, step *StepState)
}

// Metrics records run and step timings. Implemented by
// infrastructure.PipelineMetrics; nil disables recording.
type Metrics interface {
	RecordRun(ctx context.Context, status RunStatus, d time.Duration)
	RecordStep(ctx context.Context, stepID string, status StepStatus, d time.Duration)
}

// Manager executes cleansing runs step by step
type Manager struct {
	steps   []Step
	logger  *slog.Logger
	sink    EventSink
	metrics Metrics
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithEventSink attaches a lifecycle event sink
func WithEventSink(sink EventSink) ManagerOption {
	return func(m *Manager) { m.sink = sink }
}

// WithMetrics attaches run/step metric recording
func WithMetrics(metrics Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// WithSteps replaces the default step sequence
func WithSteps(steps []Step) ManagerOption {
	return func(m *Manager) { m.steps = steps }
}

// NewManager creates a manager with the default load/profile/clean/report
// sequence
func NewManager(logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		steps:  DefaultSteps(logger),
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute runs all steps against the state in order. The first failing
// step aborts the run; later steps never start. The returned state is
// the same pointer that was passed in, populated with step statuses and
// artifacts up to the point of failure.
func (m *Manager) Execute(ctx context.Context, state *RunState) (*RunState, error) {
	state.Start()
	m.notifyRun(state)
	m.logger.InfoContext(ctx, "run started",
		slog.String("run_id", state.ID),
		slog.String("filename", state.Filename),
		slog.String("strategy", string(state.Strategy)))

	for _, step := range m.steps {
		if err := m.executeStep(ctx, step, state); err != nil {
			state.Fail(err)
			m.notifyRun(state)
			m.recordRun(ctx, state)
			m.logger.ErrorContext(ctx, "run failed",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			return state, err
		}
	}

	state.Complete()
	m.notifyRun(state)
	m.recordRun(ctx, state)
	m.logger.InfoContext(ctx, "run completed",
		slog.String("run_id", state.ID),
		slog.Duration("duration", state.Duration()))
	return state, nil
}

func (m *Manager) executeStep(ctx context.Context, step Step, state *RunState) error {
	stepState := state.StepState(step.ID(), step.Name())

	if err := ctx.Err(); err != nil {
		cancelErr := NewCancelledError(step.ID())
		stepState.Fail(cancelErr)
		m.notifyStep(state.ID, stepState)
		return cancelErr
	}

	if err := step.Validate(state); err != nil {
		stepState.Fail(err)
		m.notifyStep(state.ID, stepState)
		m.recordStep(ctx, stepState)
		return err
	}

	stepState.Start()
	m.notifyStep(state.ID, stepState)

	if err := step.Execute(ctx, state); err != nil {
		runErr := err
		if _, ok := err.(*RunError); !ok {
			runErr = NewExecutionError(step.ID(), err)
		}
		stepState.Fail(runErr)
		m.notifyStep(state.ID, stepState)
		m.recordStep(ctx, stepState)
		return runErr
	}

	stepState.Complete(step.Name() + " finished")
	m.notifyStep(state.ID, stepState)
	m.recordStep(ctx, stepState)
	return nil
}

func (m *Manager) notifyRun(state *RunState) {
	if m.sink != nil {
		m.sink.RunStatusChanged(state.ID, state.CurrentStatus())
	}
}

func (m *Manager) notifyStep(runID string, step *StepState) {
	if m.sink != nil {
		m.sink.StepStatusChanged(runID, step)
	}
}

func (m *Manager) recordRun(ctx context.Context, state *RunState) {
	if m.metrics != nil {
		m.metrics.RecordRun(ctx, state.CurrentStatus(), state.Duration())
	}
}

func (m *Manager) recordStep(ctx context.Context, step *StepState) {
	if m.metrics != nil {
		m.metrics.RecordStep(ctx, step.ID, step.CurrentStatus(), step.Duration())
	}
}
