package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvhealth/internal/dataset"
)

func mustParse(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	table, err := dataset.Parse([]byte(csv))
	require.NoError(t, err)
	return table
}

func TestProfile_MissingCounts(t *testing.T) {
	table := mustParse(t, "a,b\n1,x\n,y\nNA,\n")
	qr := Profile(table)

	require.Equal(t, 3, qr.TotalRows)
	require.Equal(t, 2, qr.TotalColumns)

	colA := qr.Column("a")
	require.NotNil(t, colA)
	assert.Equal(t, 2, colA.MissingCount)
	assert.Equal(t, 1, colA.NonMissingCount)

	colB := qr.Column("b")
	require.NotNil(t, colB)
	assert.Equal(t, 1, colB.MissingCount)
	assert.Equal(t, 3, qr.MissingTotal)
}

func TestProfile_Duplicates(t *testing.T) {
	tests := []struct {
		name            string
		csv             string
		expectedCount   int
		expectedIndices []int
	}{
		{
			name:          "no duplicates",
			csv:           "a,b\n1,2\n3,4\n",
			expectedCount: 0,
		},
		{
			name:            "one duplicate of earlier row",
			csv:             "a,b\n1,2\n1,2\n3,4\n",
			expectedCount:   1,
			expectedIndices: []int{1},
		},
		{
			name:            "triplicate counts twice",
			csv:             "a\nx\nx\nx\n",
			expectedCount:   2,
			expectedIndices: []int{1, 2},
		},
		{
			name:            "missing equals missing",
			csv:             "a,b\n,2\n,2\n",
			expectedCount:   1,
			expectedIndices: []int{1},
		},
		{
			name:          "missing differs from empty-like value",
			csv:           "a,b\n0,2\n,2\n",
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qr := Profile(mustParse(t, tt.csv))
			assert.Equal(t, tt.expectedCount, qr.DuplicateRows)
			assert.Equal(t, tt.expectedIndices, qr.DuplicateIndices)
		})
	}
}

func TestProfile_Outliers(t *testing.T) {
	// Q1=2, Q3=4, IQR=2, fences [-1, 7]: only 100 is outside.
	qr := Profile(mustParse(t, "v\n1\n2\n3\n4\n100\n"))

	col := qr.Column("v")
	require.NotNil(t, col)
	require.True(t, col.Outliers.Computed)
	assert.InDelta(t, -1.0, col.Outliers.LowerBound, 1e-9)
	assert.InDelta(t, 7.0, col.Outliers.UpperBound, 1e-9)
	assert.Equal(t, 1, col.Outliers.Count)
	assert.Equal(t, []int{4}, col.Outliers.Indices)
	assert.Equal(t, 1, qr.OutlierTotal)
}

func TestProfile_OutliersSkippedForSmallSample(t *testing.T) {
	qr := Profile(mustParse(t, "v\n1\n2\n1000\n"))

	col := qr.Column("v")
	require.NotNil(t, col)
	assert.False(t, col.Outliers.Computed)
	assert.Zero(t, col.Outliers.Count)
}

func TestProfile_OutliersIgnoreMissing(t *testing.T) {
	qr := Profile(mustParse(t, "v\n1\nNA\n2\n3\n4\n100\n"))

	col := qr.Column("v")
	require.NotNil(t, col)
	require.True(t, col.Outliers.Computed)
	assert.Equal(t, 1, col.Outliers.Count)
	assert.Equal(t, []int{5}, col.Outliers.Indices, "indices refer to table rows")
}

func TestProfile_NonNumericColumnsSkipOutliers(t *testing.T) {
	qr := Profile(mustParse(t, "s\na\nb\nc\nd\ne\n"))

	col := qr.Column("s")
	require.NotNil(t, col)
	assert.False(t, col.Outliers.Computed)
	assert.Nil(t, col.Stats)
}

func TestProfile_NumericStats(t *testing.T) {
	qr := Profile(mustParse(t, "v\n2\n4\nNA\n"))

	col := qr.Column("v")
	require.NotNil(t, col)
	require.NotNil(t, col.Stats)
	assert.InDelta(t, 3.0, col.Stats.Mean, 1e-9)
	assert.InDelta(t, 3.0, col.Stats.Median, 1e-9)
	assert.InDelta(t, 2.0, col.Stats.Min, 1e-9)
	assert.InDelta(t, 4.0, col.Stats.Max, 1e-9)
	assert.Equal(t, 2, col.DistinctCount)
}

func TestProfile_DoesNotMutateTable(t *testing.T) {
	table := mustParse(t, "a,b\n1,2\n1,2\n,4\n")
	before := table.Clone()

	Profile(table)

	assert.True(t, before.Equal(table))
}

func TestProfile_Deterministic(t *testing.T) {
	table := mustParse(t, "a,b\n1,x\n2,y\n1,x\n,z\n")

	first := Profile(table)
	second := Profile(table)

	assert.Equal(t, first, second)
}
