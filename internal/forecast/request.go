package forecast

import (
	"fmt"

	"github.com/transitlab/railcast/internal/dataset"
	"github.com/transitlab/railcast/internal/feature"
)

// Request is a single-point prediction request. Features are supplied by
// name; when FillMeans is set, covariates absent from the map fall back
// to historical table means.
type Request struct {
	Features  map[string]float64 `json:"features"`
	FillMeans bool               `json:"fill_means"`
}

func (r *Request) Validate() error {
	if len(r.Features) == 0 {
		return fmt.Errorf("features cannot be empty")
	}
	if _, ok := r.Features[feature.Year]; !ok {
		return fmt.Errorf("missing required feature: %s", feature.Year)
	}
	month, ok := r.Features[feature.Month]
	if !ok {
		return fmt.Errorf("missing required feature: %s", feature.Month)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("month out of range: %v", month)
	}
	return nil
}

// Source turns the request into a feature source backed by the given
// means when FillMeans is set.
func (r *Request) Source(means map[string]float64) feature.Source {
	return requestSource{req: r, means: means}
}

type requestSource struct {
	req   *Request
	means map[string]float64
}

func (s requestSource) Feature(name string) (float64, bool) {
	if v, ok := s.req.Features[name]; ok {
		return v, true
	}
	if s.req.FillMeans {
		v, ok := s.means[name]
		return v, ok
	}
	return 0, false
}

// DelayRequest is a trip-delay prediction request against the
// pre-trained station model. Stations are given by name and resolved
// through the catalogue.
type DelayRequest struct {
	Hour        int    `json:"hour"`
	DayOfWeek   int    `json:"day_of_week"`
	FromStation string `json:"from_station"`
	ToStation   string `json:"to_station"`
}

func (r *DelayRequest) Validate() error {
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("hour out of range: %d", r.Hour)
	}
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week out of range: %d", r.DayOfWeek)
	}
	if _, err := dataset.StationCode(r.FromStation); err != nil {
		return err
	}
	if _, err := dataset.StationCode(r.ToStation); err != nil {
		return err
	}
	return nil
}

// Source resolves stations to codes and exposes the delay schema
// features. Validate must pass first.
func (r *DelayRequest) Source() (feature.Source, error) {
	from, err := dataset.StationCode(r.FromStation)
	if err != nil {
		return nil, err
	}
	to, err := dataset.StationCode(r.ToStation)
	if err != nil {
		return nil, err
	}
	return delaySource{
		values: map[string]float64{
			feature.Hour:        float64(r.Hour),
			feature.DayOfWeek:   float64(r.DayOfWeek),
			feature.FromStation: float64(from),
			feature.ToStation:   float64(to),
		},
	}, nil
}

type delaySource struct {
	values map[string]float64
}

func (s delaySource) Feature(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// HorizonRequest selects how many months ahead to forecast. Zero means
// the configured default.
type HorizonRequest struct {
	Months int `json:"months"`
}

func (r *HorizonRequest) Validate() error {
	if r.Months < 0 {
		return fmt.Errorf("months must be non-negative")
	}
	if r.Months > 60 {
		return fmt.Errorf("months cannot exceed 60")
	}
	return nil
}
