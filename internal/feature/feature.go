package feature

import (
	"errors"
	"fmt"

	"github.com/transitlab/railcast/internal/dataset"
)

var (
	// ErrMissingFeature reports a source that cannot supply a schema column.
	ErrMissingFeature = errors.New("feature: missing feature")

	// ErrEmptyInput reports an aggregate over zero rows.
	ErrEmptyInput = errors.New("feature: empty input")
)

// Canonical feature names. The first four match the Observation lookup
// keys; the rest belong to the trip-delay schema.
const (
	Year          = "year"
	Month         = "month"
	MeanDistance  = "mean_distance_before_failure"
	OnTimePercent = "on_time_percentage"

	Hour        = "hour"
	DayOfWeek   = "day_of_week"
	FromStation = "from_station"
	ToStation   = "to_station"
)

// Schema is an ordered list of feature names. Order defines vector layout.
type Schema []string

// BaseSchema covers the calendar features alone.
func BaseSchema() Schema {
	return Schema{Year, Month}
}

// FullSchema adds the fleet performance features.
func FullSchema() Schema {
	return Schema{Year, Month, MeanDistance, OnTimePercent}
}

// DelaySchema is the trip-delay predictor layout. Models for this schema
// are always loaded from a pre-trained artifact; exactly one schema is
// active per model instance.
func DelaySchema() Schema {
	return Schema{Hour, DayOfWeek, FromStation, ToStation}
}

// SchemaFor picks the schema matching the loaded table.
func SchemaFor(t *dataset.Table) Schema {
	if t.HasPerformance {
		return FullSchema()
	}
	return BaseSchema()
}

// Equal reports whether two schemas have the same names in the same order.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Source supplies named covariate values. *dataset.Observation satisfies it.
type Source interface {
	Feature(name string) (float64, bool)
}

// Build assembles a feature vector in schema order from the source.
func Build(schema Schema, src Source) ([]float64, error) {
	vec := make([]float64, len(schema))
	for i, name := range schema {
		v, ok := src.Feature(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}
		vec[i] = v
	}
	return vec, nil
}

// Mean averages the named feature over every row of the table. Rows that
// cannot supply the feature are skipped; if no row can, the result is
// ErrMissingFeature.
func Mean(t *dataset.Table, name string) (float64, error) {
	if t.Len() == 0 {
		return 0, fmt.Errorf("%w: cannot average %s", ErrEmptyInput, name)
	}

	var sum float64
	var n int
	for i := range t.Rows {
		if v, ok := t.Rows[i].Feature(name); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingFeature, name)
	}
	return sum / float64(n), nil
}

// Means computes per-feature table means for every schema column.
func Means(t *dataset.Table, schema Schema) (map[string]float64, error) {
	out := make(map[string]float64, len(schema))
	for _, name := range schema {
		m, err := Mean(t, name)
		if err != nil {
			return nil, err
		}
		out[name] = m
	}
	return out, nil
}
