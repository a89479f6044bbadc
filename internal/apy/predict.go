package apy

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoTrainingData is returned by Fit when the sample set is empty.
var ErrNoTrainingData = errors.New("no training data available")

// Predictor is an ordinary least squares fit of yield components to total
// APY. It is a peripheral helper for rough forecasts, not part of the
// ingestion or projection contracts.
type Predictor struct {
	intercept float64
	coeffs    []float64
}

// Fit solves the least squares problem for features -> targets via the
// normal equations. Every feature row must have the same width.
func Fit(features [][]float64, targets []float64) (*Predictor, error) {
	if len(features) == 0 || len(features) != len(targets) {
		return nil, ErrNoTrainingData
	}
	width := len(features[0])
	for _, row := range features {
		if len(row) != width {
			return nil, fmt.Errorf("ragged feature row: got %d columns, want %d", len(row), width)
		}
	}

	// Augment with a leading 1 for the intercept term.
	n := width + 1
	xtx := make([][]float64, n)
	for i := range xtx {
		xtx[i] = make([]float64, n)
	}
	xty := make([]float64, n)

	for i, row := range features {
		aug := append([]float64{1}, row...)
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				xtx[j][k] += aug[j] * aug[k]
			}
			xty[j] += aug[j] * targets[i]
		}
	}

	beta, err := solve(xtx, xty)
	if err != nil {
		return nil, err
	}
	return &Predictor{intercept: beta[0], coeffs: beta[1:]}, nil
}

// Predict returns the estimated APY for one feature vector.
func (p *Predictor) Predict(features []float64) (float64, error) {
	if len(features) != len(p.coeffs) {
		return 0, fmt.Errorf("feature width %d does not match model width %d", len(features), len(p.coeffs))
	}
	out := p.intercept
	for i, f := range features {
		out += p.coeffs[i] * f
	}
	return out, nil
}

// solve runs Gaussian elimination with partial pivoting on a square system.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64{}, a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, errors.New("singular design matrix")
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := m[row][col] / m[col][col]
			for k := col; k <= n; k++ {
				m[row][k] -= factor * m[col][k]
			}
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = m[i][n] / m[i][i]
	}
	return out, nil
}
