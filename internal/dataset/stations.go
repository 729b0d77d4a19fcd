package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// stationCodes maps station names to the integer codes the delay model
// was trained on. The catalogue is fixed; unknown names are a caller
// error, never a silent zero.
var stationCodes = map[string]int{
	"Newark Penn Station":      1,
	"New York Penn Station":    2,
	"Secaucus Junction":        3,
	"Hoboken Terminal":         4,
	"Trenton":                  5,
	"Princeton Junction":       6,
	"Metropark":                7,
	"New Brunswick":            8,
	"Edison":                   9,
	"Rahway":                   10,
	"Elizabeth":                11,
	"Newark Airport":           12,
	"Summit":                   13,
	"Morristown":               14,
	"Dover":                    15,
	"Montclair State Univ":     16,
	"Ridgewood":                17,
	"Suffern":                  18,
	"Long Branch":              19,
	"Bay Head":                 20,
	"Atlantic City":            21,
	"Philadelphia 30th Street": 22,
}

// Stations returns the known station names, sorted.
func Stations() []string {
	names := make([]string, 0, len(stationCodes))
	for name := range stationCodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StationCode resolves a station name (case-insensitive) to its code.
func StationCode(name string) (int, error) {
	trimmed := strings.TrimSpace(name)
	if code, ok := stationCodes[trimmed]; ok {
		return code, nil
	}
	for known, code := range stationCodes {
		if strings.EqualFold(known, trimmed) {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown station: %s", name)
}
