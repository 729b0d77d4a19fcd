package dataset

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/go-gota/gota/dataframe"
)

// Load reads the cancellations history from a CSV or Excel file and
// returns it as a Table. Required columns: YEAR, MONTH, CANCEL_PERCENTAGE.
// CATEGORY and DELAY_PERCENTAGE are picked up when present. Header names
// are matched case-insensitively.
func Load(path string) (*Table, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	return parseCancellations(records)
}

// LoadPerformance reads the fleet performance table. Required columns:
// YEAR, MONTH, MEAN_DISTANCE_BEFORE_FAILURE, ON_TIME_PERCENTAGE.
func LoadPerformance(path string) ([]PerformanceRow, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	return parsePerformance(records)
}

// Fingerprint identifies a file's content cheaply by path, size, and
// modification time. Used as a cache key for fitted models.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), nil
}

func readRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readExcel(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrSchema, path, df.Err)
	}
	return df.Records(), nil
}

func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %s: %v", ErrSchema, sheet, err)
	}
	return rows, nil
}

// columnIndex maps normalized header names to their position.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	return idx
}

func requireColumns(idx map[string]int, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrSchema, strings.Join(missing, ", "))
	}
	return nil
}

func cell(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// numericCell parses a required numeric value. Blank cells fail rather
// than coerce to zero: gota also renders empty float cells as "NaN",
// which ParseFloat accepts, so non-finite values are rejected too.
func numericCell(record []string, idx map[string]int, name string) (float64, error) {
	raw := cell(record, idx, name)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty %s value", ErrSchema, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric %s value %q", ErrSchema, name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite %s value %q", ErrSchema, name, raw)
	}
	return v, nil
}

func parseCancellations(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrSchema)
	}

	idx := columnIndex(records[0])
	if err := requireColumns(idx, "YEAR", "MONTH", "CANCEL_PERCENTAGE"); err != nil {
		return nil, err
	}
	_, hasCategory := idx["CATEGORY"]
	_, hasDelay := idx["DELAY_PERCENTAGE"]

	tbl := &Table{}
	for _, record := range records[1:] {
		year, err := numericCell(record, idx, "YEAR")
		if err != nil {
			return nil, err
		}

		month, err := NormalizeMonth(cell(record, idx, "MONTH"))
		if err != nil {
			return nil, err
		}

		cancel, err := numericCell(record, idx, "CANCEL_PERCENTAGE")
		if err != nil {
			return nil, err
		}

		row := Observation{
			Year:          int(year),
			Month:         month,
			CancelPercent: cancel,
		}
		if hasCategory {
			row.Category = cell(record, idx, "CATEGORY")
		}
		if hasDelay {
			row.DelayPercent, err = numericCell(record, idx, "DELAY_PERCENTAGE")
			if err != nil {
				return nil, err
			}
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

func parsePerformance(records [][]string) ([]PerformanceRow, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrSchema)
	}

	idx := columnIndex(records[0])
	err := requireColumns(idx, "YEAR", "MONTH", "MEAN_DISTANCE_BEFORE_FAILURE", "ON_TIME_PERCENTAGE")
	if err != nil {
		return nil, err
	}

	var rows []PerformanceRow
	for _, record := range records[1:] {
		year, err := numericCell(record, idx, "YEAR")
		if err != nil {
			return nil, err
		}

		month, err := NormalizeMonth(cell(record, idx, "MONTH"))
		if err != nil {
			return nil, err
		}

		dist, err := numericCell(record, idx, "MEAN_DISTANCE_BEFORE_FAILURE")
		if err != nil {
			return nil, err
		}

		onTime, err := numericCell(record, idx, "ON_TIME_PERCENTAGE")
		if err != nil {
			return nil, err
		}

		rows = append(rows, PerformanceRow{
			Year:          int(year),
			Month:         month,
			MeanDistance:  dist,
			OnTimePercent: onTime,
		})
	}
	return rows, nil
}
