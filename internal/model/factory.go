package model

import (
	"fmt"

	"github.com/transitlab/railcast/internal/dataset"
	"github.com/transitlab/railcast/internal/feature"
)

// Fit trains a regressor of the configured kind on the table, targeting
// the cancellation percentage.
func Fit(t *dataset.Table, schema feature.Schema, opts Options) (Regressor, error) {
	return fitTarget(t, schema, opts, func(o *dataset.Observation) float64 {
		return o.CancelPercent
	})
}

// FitDelay trains against the delay percentage instead.
func FitDelay(t *dataset.Table, schema feature.Schema, opts Options) (Regressor, error) {
	return fitTarget(t, schema, opts, func(o *dataset.Observation) float64 {
		return o.DelayPercent
	})
}

func fitTarget(t *dataset.Table, schema feature.Schema, opts Options, target func(*dataset.Observation) float64) (Regressor, error) {
	if t.Len() < opts.MinObservations {
		return nil, fmt.Errorf("%w: %d rows, need at least %d",
			ErrInsufficientData, t.Len(), opts.MinObservations)
	}

	xs := make([][]float64, 0, t.Len())
	ys := make([]float64, 0, t.Len())
	for i := range t.Rows {
		row := &t.Rows[i]
		vec, err := feature.Build(schema, row)
		if err != nil {
			// Rows missing a covariate are dropped rather than failing the
			// whole fit; the table may mix joined and unjoined periods.
			continue
		}
		xs = append(xs, vec)
		ys = append(ys, target(row))
	}

	if len(xs) < opts.MinObservations {
		return nil, fmt.Errorf("%w: %d usable rows after feature assembly, need at least %d",
			ErrInsufficientData, len(xs), opts.MinObservations)
	}

	switch opts.Kind {
	case KindLinear:
		return fitLinear(schema, xs, ys)
	case KindRandomForest:
		return fitForest(schema, xs, ys, opts)
	}
	return nil, fmt.Errorf("unknown model kind: %s", opts.Kind)
}
