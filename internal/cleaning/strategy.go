package cleaning

import (
	apperrors "csvhealth/internal/errors"
)

// Strategy selects how missing cells are resolved during cleaning.
// It is immutable for the duration of one cleaning run.
type Strategy string

const (
	// StrategyDropRows removes every row that still has a missing cell
	// after duplicates are removed.
	StrategyDropRows Strategy = "drop-rows"

	// StrategyMean fills missing cells of numeric columns with the
	// column mean computed over the deduplicated table.
	StrategyMean Strategy = "mean"

	// StrategyMedian fills missing cells of numeric columns with the
	// column median computed over the deduplicated table.
	StrategyMedian Strategy = "median"

	// StrategyConstant fills every missing cell with a fixed placeholder,
	// cast to the column's inferred type.
	StrategyConstant Strategy = "constant"

	// StrategyMostFrequent fills categorical columns with the modal
	// value; numeric columns fall back to the mean.
	StrategyMostFrequent Strategy = "most-frequent"
)

// Strategies returns all recognized strategies in a stable order
func Strategies() []Strategy {
	return []Strategy{
		StrategyDropRows,
		StrategyMean,
		StrategyMedian,
		StrategyConstant,
		StrategyMostFrequent,
	}
}

// ParseStrategy validates a strategy identifier supplied by the caller
func ParseStrategy(s string) (Strategy, error) {
	for _, known := range Strategies() {
		if Strategy(s) == known {
			return known, nil
		}
	}
	return "", apperrors.NewInvalidStrategyError(s)
}

// Valid reports whether the strategy is one of the recognized values
func (s Strategy) Valid() bool {
	_, err := ParseStrategy(string(s))
	return err == nil
}

// String implements fmt.Stringer
func (s Strategy) String() string {
	return string(s)
}
