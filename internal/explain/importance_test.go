package explain

import (
	"errors"
	"math"
	"testing"

	"github.com/transitlab/railcast/internal/dataset"
	"github.com/transitlab/railcast/internal/feature"
	"github.com/transitlab/railcast/internal/model"
)

func fitKind(t *testing.T, kind model.Kind) model.Regressor {
	t.Helper()
	tbl := &dataset.Table{Rows: []dataset.Observation{
		{Year: 2020, Month: 1, CancelPercent: 10},
		{Year: 2020, Month: 7, CancelPercent: 10},
		{Year: 2021, Month: 1, CancelPercent: 12},
		{Year: 2021, Month: 7, CancelPercent: 12},
		{Year: 2022, Month: 1, CancelPercent: 14},
		{Year: 2022, Month: 7, CancelPercent: 14},
	}}
	opts := model.DefaultOptions()
	opts.Kind = kind
	opts.NEstimators = 10
	m, err := model.Fit(tbl, feature.BaseSchema(), opts)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	return m
}

func TestExplainForestSortedDescending(t *testing.T) {
	m := fitKind(t, model.KindRandomForest)

	report, err := Explain(m)
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	if report.ModelKind != "random_forest" {
		t.Errorf("unexpected model kind: %s", report.ModelKind)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(report.Entries))
	}
	for i := 1; i < len(report.Entries); i++ {
		if report.Entries[i-1].Weight < report.Entries[i].Weight {
			t.Error("entries must be sorted by descending weight")
		}
	}
	// Only year drives the target in the training table.
	if report.Entries[0].Name != feature.Year {
		t.Errorf("expected year on top, got %s", report.Entries[0].Name)
	}
}

func TestExplainLinearRequiresOption(t *testing.T) {
	m := fitKind(t, model.KindLinear)

	_, err := Explain(m)
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Errorf("expected ErrUnsupportedModel without option, got %v", err)
	}
}

func TestExplainLinearWithCoefficients(t *testing.T) {
	m := fitKind(t, model.KindLinear)

	report, err := Explain(m, WithCoefficients())
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(report.Entries))
	}

	var sum float64
	for _, e := range report.Entries {
		if e.Weight < 0 {
			t.Errorf("weights must be non-negative, got %f for %s", e.Weight, e.Name)
		}
		sum += e.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights must sum to 1, got %f", sum)
	}
}
