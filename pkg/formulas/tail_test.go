package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormPPF(t *testing.T) {
	assert.InDelta(t, -1.6449, NormPPF(0.05), 0.0005)
	assert.InDelta(t, 1.6449, NormPPF(0.95), 0.0005)
	assert.InDelta(t, -2.3263, NormPPF(0.01), 0.0005)
	assert.InDelta(t, 0.0, NormPPF(0.5), 1e-9)
}

func TestParametricVaR_FlatReturns(t *testing.T) {
	returns := make([]float64, 252)
	assert.Equal(t, 0.0, ParametricVaR(returns, 0.95))
}

func TestParametricVaR_KnownDistribution(t *testing.T) {
	// Symmetric ±1% returns: mean 0, stddev ≈ 0.01002
	returns := make([]float64, 252)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.01
		} else {
			returns[i] = -0.01
		}
	}

	v := ParametricVaR(returns, 0.95)
	// -(0 + (-1.645)(0.01002)) ≈ 0.0165
	assert.InDelta(t, 0.0165, v, 0.001)
}

func TestHistoricalCVaR(t *testing.T) {
	// 19 zero returns plus one -10% crash: the 5th percentile tail is the crash
	returns := make([]float64, 20)
	returns[7] = -0.10

	cvar := HistoricalCVaR(returns, 0.95)
	assert.InDelta(t, 0.10, cvar, 1e-9)
}

func TestHistoricalCVaR_TooShort(t *testing.T) {
	assert.Equal(t, 0.0, HistoricalCVaR([]float64{0.01}, 0.95))
}

func TestPercentile(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	require.InDelta(t, 5.5, Percentile(data, 50), 0.01)
	assert.InDelta(t, 1.0, Percentile(data, 0), 0.01)
	assert.InDelta(t, 10.0, Percentile(data, 100), 0.01)
}
