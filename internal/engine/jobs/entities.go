package jobs

import (
	"fmt"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

// Dimensions are the lookup tables derived from the listing frame, in output order.
var Dimensions = []string{"classification", "sub_classification", "location", "area", "advertiser"}

// locationHelperColumns are search-only location fields that no table keeps.
var locationHelperColumns = []string{"location_where_value", "area_where_value", "suburb_where_value"}

// DimensionTable returns the distinct (<dim>, <dim>_id) pairs of listings,
// one row per non-null id, first occurrence wins.
func DimensionTable(listings *frame.Frame, dim string) (*frame.Frame, error) {
	f, err := listings.Select(dim, dim+"_id")
	if err != nil {
		return nil, fmt.Errorf("dimension %s: %w", dim, err)
	}
	return f.DropNull(dim + "_id").DropDuplicates(dim + "_id"), nil
}

// DimensionTables builds every dimension table.
func DimensionTables(listings *frame.Frame) (map[string]*frame.Frame, error) {
	out := make(map[string]*frame.Frame, len(Dimensions))
	for _, dim := range Dimensions {
		f, err := DimensionTable(listings, dim)
		if err != nil {
			return nil, err
		}
		out[dim] = f
	}
	return out, nil
}

// ListingTable drops the dimension titles and location helper columns from
// listings, then drops rows that are entirely null.
func ListingTable(listings *frame.Frame) *frame.Frame {
	drop := append(append([]string{}, Dimensions...), locationHelperColumns...)
	return listings.Drop(drop...).DropEmptyRows()
}

// CompanyReviewTable returns one review row per non-null company id.
func CompanyReviewTable(details *frame.Frame) (*frame.Frame, error) {
	f, err := details.Select("company_id", "company_overall_rating", "company_profile_url", "company_name_review")
	if err != nil {
		return nil, fmt.Errorf("company review: %w", err)
	}
	return f.DropNull("company_id").DropDuplicates("company_id"), nil
}
