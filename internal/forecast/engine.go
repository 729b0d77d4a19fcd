package forecast

import (
	"fmt"

	"github.com/transitlab/railcast/internal/dataset"
	"github.com/transitlab/railcast/internal/feature"
	"github.com/transitlab/railcast/internal/model"
)

// meanSource answers feature lookups with fixed values, overriding year
// and month per period. It fills non-calendar covariates with their
// historical table means.
type meanSource struct {
	period Period
	means  map[string]float64
}

func (s meanSource) Feature(name string) (float64, bool) {
	switch name {
	case feature.Year:
		return float64(s.period.Year), true
	case feature.Month:
		return float64(s.period.Month), true
	}
	v, ok := s.means[name]
	return v, ok
}

// PredictPoint runs the model on a single explicit feature source.
func PredictPoint(m model.Regressor, src feature.Source) (float64, error) {
	vec, err := feature.Build(m.Schema(), src)
	if err != nil {
		return 0, err
	}
	return m.Predict(vec)
}

// PredictHorizon forecasts the n months following the table's latest
// period. Non-calendar covariates are pinned at their historical means.
func PredictHorizon(m model.Regressor, t *dataset.Table, n int) (Series, error) {
	if n < 1 {
		return nil, fmt.Errorf("horizon must be at least 1, got %d", n)
	}

	year, month, err := t.LatestPeriod()
	if err != nil {
		return nil, err
	}

	means, err := covariateMeans(m.Schema(), t)
	if err != nil {
		return nil, err
	}

	series := make(Series, 0, n)
	p := Period{Year: year, Month: month}
	for i := 0; i < n; i++ {
		p = p.Next()
		v, err := PredictPoint(m, meanSource{period: p, means: means})
		if err != nil {
			return nil, err
		}
		series = append(series, Point{Period: p, Value: v})
	}
	return series, nil
}

// PredictMonthAcrossYears forecasts one calendar month for every year
// from the earliest observed through one year past the latest.
func PredictMonthAcrossYears(m model.Regressor, t *dataset.Table, month int) (Series, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month out of range: %d", month)
	}

	minYear, err := t.MinYear()
	if err != nil {
		return nil, err
	}
	maxYear, err := t.MaxYear()
	if err != nil {
		return nil, err
	}

	means, err := covariateMeans(m.Schema(), t)
	if err != nil {
		return nil, err
	}

	var series Series
	for year := minYear; year <= maxYear+1; year++ {
		p := Period{Year: year, Month: month}
		v, err := PredictPoint(m, meanSource{period: p, means: means})
		if err != nil {
			return nil, err
		}
		series = append(series, Point{Period: p, Value: v})
	}
	return series, nil
}

// covariateMeans averages every non-calendar schema feature over the table.
func covariateMeans(schema feature.Schema, t *dataset.Table) (map[string]float64, error) {
	means := make(map[string]float64)
	for _, name := range schema {
		if name == feature.Year || name == feature.Month {
			continue
		}
		m, err := feature.Mean(t, name)
		if err != nil {
			return nil, err
		}
		means[name] = m
	}
	return means, nil
}
