package model

import (
	"fmt"

	"github.com/sajari/regression"

	"github.com/transitlab/railcast/internal/feature"
)

// LinearModel is an ordinary least squares fit. Coefficients are retained
// so prediction and persistence work without the fitting library.
type LinearModel struct {
	schema feature.Schema

	// Coeffs holds the intercept followed by one weight per feature.
	Coeffs []float64

	// R2 is the coefficient of determination on the training set.
	R2 float64
}

func fitLinear(schema feature.Schema, xs [][]float64, ys []float64) (*LinearModel, error) {
	r := new(regression.Regression)
	r.SetObserved("cancel_percentage")
	for i, name := range schema {
		r.SetVar(i, name)
	}
	for i, x := range xs {
		r.Train(regression.DataPoint(ys[i], x))
	}
	if err := r.Run(); err != nil {
		return nil, fmt.Errorf("linear fit failed: %w", err)
	}

	coeffs := r.GetCoeffs()
	if len(coeffs) != len(schema)+1 {
		return nil, fmt.Errorf("linear fit returned %d coefficients for %d features",
			len(coeffs), len(schema))
	}

	return &LinearModel{schema: schema, Coeffs: coeffs, R2: r.R2}, nil
}

// NewLinear wraps coefficients fitted elsewhere (intercept first) as a
// predictor, used to build artifacts for models trained outside this
// process.
func NewLinear(schema feature.Schema, coeffs []float64) (*LinearModel, error) {
	if len(coeffs) != len(schema)+1 {
		return nil, fmt.Errorf("%w: %d coefficients for %d features",
			ErrSchemaMismatch, len(coeffs), len(schema))
	}
	return &LinearModel{schema: schema, Coeffs: coeffs}, nil
}

func (m *LinearModel) Kind() Kind { return KindLinear }

func (m *LinearModel) Schema() feature.Schema { return m.schema }

func (m *LinearModel) Coefficients() []float64 { return m.Coeffs }

func (m *LinearModel) Predict(features []float64) (float64, error) {
	if err := checkVector(m.schema, features); err != nil {
		return 0, err
	}
	y := m.Coeffs[0]
	for i, x := range features {
		y += m.Coeffs[i+1] * x
	}
	return y, nil
}
