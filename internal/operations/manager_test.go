package operations

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvhealth/internal/cleaning"
	"csvhealth/internal/shared/testutil"
)

const sampleCSV = "id,score\n1,10\n2,\n3,30\n1,10\n"

type recordingSink struct {
	mu         sync.Mutex
	runEvents  []RunStatus
	stepEvents []string
}

func (r *recordingSink) RunStatusChanged(runID string, status RunStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runEvents = append(r.runEvents, status)
}

func (r *recordingSink) StepStatusChanged(runID string, step *StepState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stepEvents = append(r.stepEvents, step.ID+":"+string(step.CurrentStatus()))
}

type recordingMetrics struct {
	mu    sync.Mutex
	runs  []RunStatus
	steps []string
}

func (r *recordingMetrics) RecordRun(ctx context.Context, status RunStatus, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, status)
}

func (r *recordingMetrics) RecordStep(ctx context.Context, stepID string, status StepStatus, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, stepID+":"+string(status))
}

func TestManagerExecute_Success(t *testing.T) {
	m := NewManager(nil)
	state := NewRunState("run-1", "sample.csv", []byte(sampleCSV), cleaning.StrategyMean, "")

	got, err := m.Execute(context.Background(), state)
	require.NoError(t, err)
	require.Same(t, state, got)

	assert.Equal(t, RunStatusCompleted, state.CurrentStatus())
	require.NotNil(t, state.EndTime)

	// all four artifacts populated
	require.NotNil(t, state.Table)
	require.NotNil(t, state.Report)
	require.NotNil(t, state.Cleaned)
	require.NotNil(t, state.CleanResult)
	require.NotNil(t, state.Summary)
	assert.NotEmpty(t, state.Narrative)

	// duplicate of row 1 dropped, missing score filled with mean
	assert.Equal(t, 4, state.Table.RowCount())
	assert.Equal(t, 3, state.Cleaned.RowCount())
	assert.Equal(t, 1, state.CleanResult.DuplicatesRemoved)

	for _, id := range []string{StepIDLoad, StepIDProfile, StepIDClean, StepIDReport} {
		step, ok := state.Steps[id]
		require.True(t, ok, "missing step state %s", id)
		assert.Equal(t, StepStatusCompleted, step.CurrentStatus(), "step %s", id)
	}
}

func TestManagerExecute_MalformedInputFailsLoad(t *testing.T) {
	m := NewManager(nil)
	state := NewRunState("run-2", "ragged.csv", []byte("a,b\n1,2,3\n"), cleaning.StrategyMean, "")

	_, err := m.Execute(context.Background(), state)
	require.Error(t, err)

	assert.Equal(t, RunStatusFailed, state.CurrentStatus())
	assert.Equal(t, StepStatusFailed, state.Steps[StepIDLoad].CurrentStatus())

	// later steps never started
	_, profiled := state.Steps[StepIDProfile]
	assert.False(t, profiled)
	assert.Nil(t, state.Table)
}

func TestManagerExecute_InvalidStrategyFailsBeforeClean(t *testing.T) {
	m := NewManager(nil)
	state := NewRunState("run-3", "sample.csv", []byte(sampleCSV), cleaning.Strategy("zero-fill"), "")

	_, err := m.Execute(context.Background(), state)
	require.Error(t, err)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, ErrorTypeValidation, runErr.Type)
	assert.Equal(t, StepIDClean, runErr.Step)

	// load and profile completed, clean failed during validation
	assert.Equal(t, StepStatusCompleted, state.Steps[StepIDLoad].CurrentStatus())
	assert.Equal(t, StepStatusCompleted, state.Steps[StepIDProfile].CurrentStatus())
	assert.Equal(t, StepStatusFailed, state.Steps[StepIDClean].CurrentStatus())
	assert.Nil(t, state.Cleaned)
}

func TestManagerExecute_EmptyInputFailsValidation(t *testing.T) {
	m := NewManager(nil)
	state := NewRunState("run-4", "empty.csv", nil, cleaning.StrategyMean, "")

	_, err := m.Execute(context.Background(), state)
	require.Error(t, err)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, ErrorTypeValidation, runErr.Type)
	assert.Equal(t, StepIDLoad, runErr.Step)
}

func TestManagerExecute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewManager(nil)
	state := NewRunState("run-5", "sample.csv", []byte(sampleCSV), cleaning.StrategyMean, "")

	_, err := m.Execute(ctx, state)
	require.Error(t, err)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, ErrorTypeCancelled, runErr.Type)
	assert.Equal(t, RunStatusFailed, state.CurrentStatus())
}

func TestManagerExecute_NotifiesSinkAndMetrics(t *testing.T) {
	sink := &recordingSink{}
	metrics := &recordingMetrics{}
	m := NewManager(nil, WithEventSink(sink), WithMetrics(metrics))
	state := NewRunState("run-6", "sample.csv", []byte(sampleCSV), cleaning.StrategyMedian, "")

	_, err := m.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, []RunStatus{RunStatusRunning, RunStatusCompleted}, sink.runEvents)
	assert.Equal(t, []string{
		"load:active", "load:completed",
		"profile:active", "profile:completed",
		"clean:active", "clean:completed",
		"report:active", "report:completed",
	}, sink.stepEvents)

	assert.Equal(t, []RunStatus{RunStatusCompleted}, metrics.runs)
	assert.Equal(t, []string{
		"load:completed", "profile:completed", "clean:completed", "report:completed",
	}, metrics.steps)
}

func TestManagerExecute_WarnsOnUnfillableColumn(t *testing.T) {
	logger, recorder := testutil.NewTestLogger()
	m := NewManager(logger)

	// every "tag" cell is missing, so most-frequent has nothing to fill from
	state := NewRunState("run-8", "tags.csv", []byte("name,tag\nalice,\nbob,\n"), cleaning.StrategyMostFrequent, "")

	_, err := m.Execute(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, []string{"tag"}, state.CleanResult.EmptyColumns)
	assert.True(t, recorder.ContainsMessage(slog.LevelWarn, "no values to fill from"))
}

func TestManagerExecute_ConstantStrategyUsesPlaceholder(t *testing.T) {
	m := NewManager(nil)
	state := NewRunState("run-7", "sample.csv", []byte(sampleCSV), cleaning.StrategyConstant, "42")

	_, err := m.Execute(context.Background(), state)
	require.NoError(t, err)

	fill, ok := state.CleanResult.FilledByColumn["score"]
	require.True(t, ok)
	assert.Equal(t, "42", fill.FilledWith)
	assert.Equal(t, 1, fill.Count)
}
