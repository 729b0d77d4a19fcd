package forecast

import (
	"fmt"
	"time"
)

// Period is a calendar (year, month) pair.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Next returns the following month, rolling December into January.
func (p Period) Next() Period {
	if p.Month >= 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports chronological order.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// Date is the first day of the period, for ordering and plotting only.
func (p Period) Date() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Point is one forecast value at a period.
type Point struct {
	Period
	Value float64 `json:"value"`
}

// Series is an ordered forecast.
type Series []Point
