// Package explain ranks a fitted model's features by contribution.
package explain

import (
	"errors"
	"math"
	"sort"

	"github.com/transitlab/railcast/internal/model"
)

// ErrUnsupportedModel reports a model that exposes no importance signal.
var ErrUnsupportedModel = errors.New("explain: model does not support importances")

// Entry is one feature's share of the model's predictive signal.
type Entry struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Report lists features by descending weight.
type Report struct {
	ModelKind string  `json:"model_kind"`
	Entries   []Entry `json:"entries"`
}

// Option adjusts how a report is derived.
type Option func(*options)

type options struct {
	coefficients bool
}

// WithCoefficients lets models without native importances fall back to
// normalized absolute coefficients.
func WithCoefficients() Option {
	return func(o *options) { o.coefficients = true }
}

// Explain derives an importance report from the model. Models with native
// importances use them directly; with WithCoefficients, linear models are
// ranked by normalized absolute weights instead.
func Explain(m model.Regressor, opts ...Option) (*Report, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	schema := m.Schema()

	if prov, ok := m.(model.ImportanceProvider); ok {
		weights, err := prov.Importances()
		if err != nil {
			return nil, err
		}
		return build(string(m.Kind()), schema, weights), nil
	}

	if prov, ok := m.(model.CoefficientProvider); ok && o.coefficients {
		coeffs := prov.Coefficients()
		weights := make([]float64, len(schema))
		var total float64
		for i := range schema {
			weights[i] = math.Abs(coeffs[i+1])
			total += weights[i]
		}
		if total > 0 {
			for i := range weights {
				weights[i] /= total
			}
		}
		return build(string(m.Kind()), schema, weights), nil
	}

	return nil, ErrUnsupportedModel
}

func build(kind string, schema []string, weights []float64) *Report {
	entries := make([]Entry, len(schema))
	for i, name := range schema {
		entries[i] = Entry{Name: name, Weight: weights[i]}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Weight > entries[b].Weight
	})
	return &Report{ModelKind: kind, Entries: entries}
}
