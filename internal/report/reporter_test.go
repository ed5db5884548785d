package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvhealth/internal/cleaning"
	"csvhealth/internal/dataset"
	"csvhealth/internal/profile"
)

func runPipeline(t *testing.T, csv string, strategy cleaning.Strategy) (*profile.QualityReport, *dataset.Table, *cleaning.Result) {
	t.Helper()
	table, err := dataset.Parse([]byte(csv))
	require.NoError(t, err)
	qr := profile.Profile(table)
	cleaned, result, err := cleaning.Clean(table, qr, strategy, cleaning.Options{Placeholder: "0"})
	require.NoError(t, err)
	return qr, cleaned, result
}

func TestBuild_SummaryFacts(t *testing.T) {
	qr, cleaned, result := runPipeline(t, "a,b\n1,2\n1,2\n,4\n", cleaning.StrategyConstant)

	summary, _ := Build(qr, cleaned, result, qr.TotalRows, cleaned.RowCount())

	assert.Equal(t, 3, summary["rows_before"])
	assert.Equal(t, 2, summary["rows_after"])
	assert.Equal(t, 1, summary["duplicates_removed"])
	assert.Equal(t, "constant", summary["strategy"])

	missingFound := summary["missing_found"].(map[string]int)
	assert.Equal(t, 1, missingFound["a"])
	assert.Equal(t, 0, missingFound["b"])

	missingRemaining := summary["missing_remaining"].(map[string]int)
	assert.Equal(t, 0, missingRemaining["a"])
	assert.Equal(t, 0, missingRemaining["b"])

	filledCount := summary["filled_count"].(map[string]int)
	assert.Equal(t, 1, filledCount["a"])
}

func TestBuild_SummaryIsJSONCompatible(t *testing.T) {
	qr, cleaned, result := runPipeline(t, "a,b\n1,x\n,y\n3,\n", cleaning.StrategyMean)

	summary, _ := Build(qr, cleaned, result, qr.TotalRows, cleaned.RowCount())

	raw, err := json.Marshal(summary)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "health_score")
	assert.Contains(t, decoded, "column_types")
}

func TestBuild_NarrativeSectionOrder(t *testing.T) {
	qr, cleaned, result := runPipeline(t, "a,b\n1,2\n1,2\n,4\n", cleaning.StrategyConstant)

	_, narrative := Build(qr, cleaned, result, qr.TotalRows, cleaned.RowCount())

	sections := []string{
		"Overview",
		"Duplicates",
		"Missing values by column",
		"Outliers by column",
		"Strategy applied",
		"Final row count",
	}

	last := -1
	for _, section := range sections {
		idx := strings.Index(narrative, section)
		require.GreaterOrEqual(t, idx, 0, "narrative missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}

	assert.Contains(t, narrative, "Duplicate rows removed: 1")
	assert.Contains(t, narrative, "Rows after: 2")
}

func TestBuild_NarrativeReportsSkippedOutliers(t *testing.T) {
	qr, cleaned, result := runPipeline(t, "v\n1\n2\n1000\n", cleaning.StrategyMean)

	_, narrative := Build(qr, cleaned, result, qr.TotalRows, cleaned.RowCount())

	assert.Contains(t, narrative, "not computed")
}

func TestBuild_NarrativeWarnsOnEmptyColumns(t *testing.T) {
	qr, cleaned, result := runPipeline(t, "v,s\n,a\n,b\n", cleaning.StrategyMean)

	summary, narrative := Build(qr, cleaned, result, qr.TotalRows, cleaned.RowCount())

	assert.Contains(t, narrative, "warning: column v has no values to fill from")
	assert.Equal(t, []string{"v"}, summary["empty_columns"])
}

func TestBuild_Deterministic(t *testing.T) {
	qr, cleaned, result := runPipeline(t, "a,b\n1,x\n2,y\n1,x\n,z\n", cleaning.StrategyMostFrequent)

	s1, n1 := Build(qr, cleaned, result, qr.TotalRows, cleaned.RowCount())
	s2, n2 := Build(qr, cleaned, result, qr.TotalRows, cleaned.RowCount())

	assert.Equal(t, s1, s2)
	assert.Equal(t, n1, n2)
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		expected int
	}{
		{
			name:     "clean dataset scores 100",
			csv:      "a,b\n1,x\n2,y\n",
			expected: 100,
		},
		{
			// 1 missing cell of 6 -> 16.67% * 0.6 = 10; 1 dup of 3 rows
			// -> 33.33% * 0.25 = 8.33; no outliers. 100-18.33 rounds to 82.
			name:     "missing and duplicates penalized",
			csv:      "a,b\n1,2\n1,2\n,4\n",
			expected: 82,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := dataset.Parse([]byte(tt.csv))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, HealthScore(profile.Profile(table)))
		})
	}
}

func TestHealthScore_EmptyTable(t *testing.T) {
	table, err := dataset.Parse([]byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 100, HealthScore(profile.Profile(table)))
}
