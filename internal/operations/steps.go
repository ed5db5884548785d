package operations

import (
	"context"
	"log/slog"

	"csvhealth/internal/cleaning"
	"csvhealth/internal/dataset"
	"csvhealth/internal/profile"
	"csvhealth/internal/report"
)

// Step IDs in pipeline order
const (
	StepIDLoad    = "load"
	StepIDProfile = "profile"
	StepIDClean   = "clean"
	StepIDReport  = "report"
)

// DefaultSteps returns the four pipeline steps in execution order
func DefaultSteps(logger *slog.Logger) []Step {
	if logger == nil {
		logger = slog.Default()
	}
	return []Step{
		&LoadStep{logger: logger},
		&ProfileStep{logger: logger},
		&CleanStep{logger: logger},
		&ReportStep{logger: logger},
	}
}

// LoadStep parses the raw CSV bytes into the run's table
type LoadStep struct {
	logger *slog.Logger
}

func (s *LoadStep) ID() string   { return StepIDLoad }
func (s *LoadStep) Name() string { return "Load dataset" }

func (s *LoadStep) Validate(state *RunState) error {
	if len(state.Raw) == 0 {
		return NewValidationError(s.ID(), "no input bytes to load")
	}
	return nil
}

func (s *LoadStep) Execute(ctx context.Context, state *RunState) error {
	table, err := dataset.Parse(state.Raw)
	if err != nil {
		return err
	}
	state.Table = table

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("run_id", state.ID),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", len(table.Columns)))
	return nil
}

// ProfileStep computes the pre-clean quality report
type ProfileStep struct {
	logger *slog.Logger
}

func (s *ProfileStep) ID() string   { return StepIDProfile }
func (s *ProfileStep) Name() string { return "Profile quality" }

func (s *ProfileStep) Validate(state *RunState) error {
	if state.Table == nil {
		return NewValidationError(s.ID(), "no table loaded")
	}
	return nil
}

func (s *ProfileStep) Execute(ctx context.Context, state *RunState) error {
	state.Report = profile.Profile(state.Table)

	s.logger.InfoContext(ctx, "dataset profiled",
		slog.String("run_id", state.ID),
		slog.Int("missing_cells", state.Report.MissingTotal),
		slog.Int("duplicate_rows", state.Report.DuplicateRows),
		slog.Int("outliers", state.Report.OutlierTotal))
	return nil
}

// CleanStep removes duplicates and fills missing cells
type CleanStep struct {
	logger *slog.Logger
}

func (s *CleanStep) ID() string   { return StepIDClean }
func (s *CleanStep) Name() string { return "Clean dataset" }

func (s *CleanStep) Validate(state *RunState) error {
	if state.Table == nil || state.Report == nil {
		return NewValidationError(s.ID(), "profile step has not run")
	}
	if !state.Strategy.Valid() {
		return NewValidationError(s.ID(), "unrecognized fill strategy "+string(state.Strategy))
	}
	return nil
}

func (s *CleanStep) Execute(ctx context.Context, state *RunState) error {
	cleaned, result, err := cleaning.Clean(state.Table, state.Report, state.Strategy,
		cleaning.Options{Placeholder: state.Placeholder})
	if err != nil {
		return err
	}
	state.Cleaned = cleaned
	state.CleanResult = result

	s.logger.InfoContext(ctx, "dataset cleaned",
		slog.String("run_id", state.ID),
		slog.String("strategy", string(state.Strategy)),
		slog.Int("rows_before", state.Table.RowCount()),
		slog.Int("rows_after", cleaned.RowCount()),
		slog.Int("duplicates_removed", result.DuplicatesRemoved))

	for _, col := range result.EmptyColumns {
		s.logger.WarnContext(ctx, "column has no values to fill from",
			slog.String("run_id", state.ID),
			slog.String("column", col))
	}
	return nil
}

// ReportStep renders the summary and narrative artifacts
type ReportStep struct {
	logger *slog.Logger
}

func (s *ReportStep) ID() string   { return StepIDReport }
func (s *ReportStep) Name() string { return "Build report" }

func (s *ReportStep) Validate(state *RunState) error {
	if state.Cleaned == nil || state.CleanResult == nil {
		return NewValidationError(s.ID(), "clean step has not run")
	}
	return nil
}

func (s *ReportStep) Execute(ctx context.Context, state *RunState) error {
	summary, narrative := report.Build(state.Report, state.Cleaned, state.CleanResult,
		state.Table.RowCount(), state.Cleaned.RowCount())
	state.Summary = summary
	state.Narrative = narrative

	s.logger.InfoContext(ctx, "report built",
		slog.String("run_id", state.ID),
		slog.Int("health_score", report.HealthScore(state.Report)))
	return nil
}
