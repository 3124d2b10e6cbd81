// Package seek fetches job listings and job details from SEEK's public
// search and job APIs.
package seek

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidOption is returned for unknown work types or sort modes.
var ErrInvalidOption = errors.New("invalid option")

// PageSize is the number of listings SEEK returns per search page.
const PageSize = 20

// workTypeIDs maps work type names to SEEK's worktype filter ids.
var workTypeIDs = map[string]int{
	"full_time": 242,
	"part_time": 243,
	"contract":  244,
	"casual":    245,
}

// sortModes maps sort mode names to SEEK's sortmode parameter.
var sortModes = map[string]string{
	"relevance": "KeywordRelevance",
	"date":      "ListedDate",
}

// WorkTypes returns the known work type names in id order.
func WorkTypes() []string {
	return []string{"full_time", "part_time", "contract", "casual"}
}

// SearchParams describes one search run: every keyword is searched in every
// location.
type SearchParams struct {
	Keywords  []string
	Locations []string
	WorkTypes []string // empty = all
	DateRange int      // days
	SortMode  string   // "relevance" or "date"
}

// workTypeParam returns the comma-joined worktype ids for names.
func workTypeParam(names []string) (string, error) {
	if len(names) == 0 {
		names = WorkTypes()
	}
	ids := make([]string, 0, len(names))
	for _, n := range names {
		id, ok := workTypeIDs[n]
		if !ok {
			return "", fmt.Errorf("%w: work type %q (want one of %s)", ErrInvalidOption, n, strings.Join(WorkTypes(), ", "))
		}
		s := strconv.Itoa(id)
		if !slices.Contains(ids, s) {
			ids = append(ids, s)
		}
	}
	return strings.Join(ids, ","), nil
}

// sortModeParam returns SEEK's sortmode value for mode.
func sortModeParam(mode string) (string, error) {
	v, ok := sortModes[mode]
	if !ok {
		return "", fmt.Errorf("%w: sort mode %q (want relevance or date)", ErrInvalidOption, mode)
	}
	return v, nil
}
