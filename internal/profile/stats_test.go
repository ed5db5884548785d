package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuartiles(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		expectedQ1 float64
		expectedQ3 float64
	}{
		{
			// The canonical outlier sample: IQR=2, upper fence 7.
			name:       "five values with extreme",
			values:     []float64{1, 2, 3, 4, 100},
			expectedQ1: 2,
			expectedQ3: 4,
		},
		{
			name:       "four values interpolate",
			values:     []float64{1, 2, 3, 4},
			expectedQ1: 1.75,
			expectedQ3: 3.25,
		},
		{
			name:       "unsorted input",
			values:     []float64{100, 1, 4, 2, 3},
			expectedQ1: 2,
			expectedQ3: 4,
		},
		{
			name:       "single value",
			values:     []float64{5},
			expectedQ1: 5,
			expectedQ3: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q1, q3 := Quartiles(tt.values)
			assert.InDelta(t, tt.expectedQ1, q1, 1e-9)
			assert.InDelta(t, tt.expectedQ3, q3, 1e-9)
		})
	}
}

func TestMeanMedianStdDev(t *testing.T) {
	assert.InDelta(t, 3.0, Mean([]float64{2, 4}), 1e-9)
	assert.InDelta(t, 2.0, Median([]float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 2.5, Median([]float64{1, 2, 3, 4}), 1e-9)
	assert.InDelta(t, 2.0, StdDev([]float64{1, 5}), 1e-9)

	assert.Zero(t, Mean(nil))
	assert.Zero(t, Median(nil))
	assert.Zero(t, StdDev([]float64{7}))
}
