package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrSchema reports source data that does not match the expected layout:
// missing columns, unparseable months, non-numeric measures.
var ErrSchema = errors.New("dataset: schema error")

// Feature name literals shared with the feature builder. An Observation
// answers Feature() lookups for these names.
const (
	colYear          = "year"
	colMonth         = "month"
	colMeanDistance  = "mean_distance_before_failure"
	colOnTimePercent = "on_time_percentage"
)

// Observation is one (year, month) row of the joined history.
type Observation struct {
	Year          int
	Month         int
	Category      string
	CancelPercent float64
	DelayPercent  float64

	// Fleet performance measures, present only after a performance join.
	MeanDistance  float64
	OnTimePercent float64
	HasPerf       bool
}

// Feature returns the named covariate value for this observation.
func (o *Observation) Feature(name string) (float64, bool) {
	switch name {
	case colYear:
		return float64(o.Year), true
	case colMonth:
		return float64(o.Month), true
	case colMeanDistance:
		if !o.HasPerf {
			return 0, false
		}
		return o.MeanDistance, true
	case colOnTimePercent:
		if !o.HasPerf {
			return 0, false
		}
		return o.OnTimePercent, true
	}
	return 0, false
}

// Table holds the loaded history in row order.
type Table struct {
	Rows []Observation

	// HasPerformance is true when fleet metrics were joined in.
	HasPerformance bool
}

// Len reports the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// FilterCategory returns a new table containing only rows whose category
// contains the given substring (case-insensitive). An empty filter keeps
// everything.
func (t *Table) FilterCategory(category string) *Table {
	if category == "" {
		return t
	}
	needle := strings.ToLower(category)
	out := &Table{HasPerformance: t.HasPerformance}
	for _, row := range t.Rows {
		if strings.Contains(strings.ToLower(row.Category), needle) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// JoinPerformance left-merges fleet metrics keyed on (year, month). Rows
// without a matching performance entry keep zero metrics and are flagged
// accordingly.
func (t *Table) JoinPerformance(perf []PerformanceRow) *Table {
	type key struct{ y, m int }
	idx := make(map[key]PerformanceRow, len(perf))
	for _, p := range perf {
		idx[key{p.Year, p.Month}] = p
	}

	out := &Table{HasPerformance: true}
	for _, row := range t.Rows {
		if p, ok := idx[key{row.Year, row.Month}]; ok {
			row.MeanDistance = p.MeanDistance
			row.OnTimePercent = p.OnTimePercent
			row.HasPerf = true
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// PerformanceRow is one (year, month) entry of the fleet metrics table.
type PerformanceRow struct {
	Year          int
	Month         int
	MeanDistance  float64
	OnTimePercent float64
}

// MinYear returns the earliest year present, or an error on an empty table.
func (t *Table) MinYear() (int, error) {
	if len(t.Rows) == 0 {
		return 0, fmt.Errorf("empty table")
	}
	min := t.Rows[0].Year
	for _, row := range t.Rows[1:] {
		if row.Year < min {
			min = row.Year
		}
	}
	return min, nil
}

// MaxYear returns the latest year present, or an error on an empty table.
func (t *Table) MaxYear() (int, error) {
	if len(t.Rows) == 0 {
		return 0, fmt.Errorf("empty table")
	}
	max := t.Rows[0].Year
	for _, row := range t.Rows[1:] {
		if row.Year > max {
			max = row.Year
		}
	}
	return max, nil
}

// LatestPeriod returns the most recent (year, month) in the table.
func (t *Table) LatestPeriod() (year, month int, err error) {
	if len(t.Rows) == 0 {
		return 0, 0, fmt.Errorf("empty table")
	}
	year, month = t.Rows[0].Year, t.Rows[0].Month
	for _, row := range t.Rows[1:] {
		if row.Year > year || (row.Year == year && row.Month > month) {
			year, month = row.Year, row.Month
		}
	}
	return year, month, nil
}

// Summary describes the loaded history for the stats endpoint.
type Summary struct {
	Rows           int      `json:"rows"`
	MinYear        int      `json:"min_year,omitempty"`
	MaxYear        int      `json:"max_year,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	MeanCancel     float64  `json:"mean_cancel_percentage"`
	MeanDelay      float64  `json:"mean_delay_percentage"`
	LatestYearMean float64  `json:"latest_year_mean_cancel"`
	WorstMonth     int      `json:"worst_month,omitempty"`
	WorstMonthMean float64  `json:"worst_month_mean_cancel,omitempty"`
	HasPerformance bool     `json:"has_performance"`
}

// Summarize computes descriptive figures for the table.
func (t *Table) Summarize() Summary {
	s := Summary{Rows: len(t.Rows), HasPerformance: t.HasPerformance}
	if len(t.Rows) == 0 {
		return s
	}

	s.MinYear, _ = t.MinYear()
	s.MaxYear, _ = t.MaxYear()

	cats := make(map[string]bool)
	var cancelSum, delaySum float64
	var latestSum float64
	var latestN int
	monthSums := make(map[int]float64)
	monthCounts := make(map[int]int)
	for _, row := range t.Rows {
		if row.Category != "" {
			cats[row.Category] = true
		}
		cancelSum += row.CancelPercent
		delaySum += row.DelayPercent
		if row.Year == s.MaxYear {
			latestSum += row.CancelPercent
			latestN++
		}
		monthSums[row.Month] += row.CancelPercent
		monthCounts[row.Month]++
	}
	s.MeanCancel = cancelSum / float64(len(t.Rows))
	s.MeanDelay = delaySum / float64(len(t.Rows))
	if latestN > 0 {
		s.LatestYearMean = latestSum / float64(latestN)
	}

	// worst month = highest mean cancellation rate; ties go to the
	// earliest month for stable output
	for month := 1; month <= 12; month++ {
		n := monthCounts[month]
		if n == 0 {
			continue
		}
		mean := monthSums[month] / float64(n)
		if s.WorstMonth == 0 || mean > s.WorstMonthMean {
			s.WorstMonth = month
			s.WorstMonthMean = mean
		}
	}

	for c := range cats {
		s.Categories = append(s.Categories, c)
	}
	sort.Strings(s.Categories)
	return s
}
