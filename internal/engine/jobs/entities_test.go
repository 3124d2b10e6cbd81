package jobs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

func normalizedFixture(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := Normalize(decodeRecords(t,
		listingJSON(1, "Data Analyst", "a", "", 6304, 5),
		listingJSON(2, "BI Analyst", "b", "", 6304, 0),
		listingJSON(3, "Data Engineer", "c", "", 6281, 7),
		listingJSON(4, "Analyst", "d", "", 6281, 7),
	))
	require.NoError(t, err)
	return f
}

func TestDimensionTableRoundTrip(t *testing.T) {
	listings := normalizedFixture(t)
	dims, err := DimensionTables(listings)
	require.NoError(t, err)

	for _, dim := range Dimensions {
		t.Run(dim, func(t *testing.T) {
			table := dims[dim]
			assert.Equal(t, []string{dim, dim + "_id"}, table.Columns)

			counts := map[string]int{}
			for _, r := range table.Rows {
				require.False(t, frame.IsNull(r[dim+"_id"]))
				counts[frame.Key(r[dim+"_id"])]++
			}
			for _, r := range listings.Rows {
				if id := r[dim+"_id"]; !frame.IsNull(id) {
					assert.Equal(t, 1, counts[frame.Key(id)], "id %v", id)
				}
			}
		})
	}
	assert.Equal(t, 2, dims["classification"].Len())
	assert.Equal(t, 2, dims["area"].Len(), "null area id dropped")
	assert.Equal(t, 1, dims["location"].Len())
}

func TestDimensionTableMissingColumns(t *testing.T) {
	_, err := DimensionTable(frame.New("id", "area"), "area")
	require.Error(t, err)
	assert.True(t, errors.Is(err, frame.ErrMissingColumns))
	assert.Contains(t, err.Error(), "dimension area")
}

func TestListingTable(t *testing.T) {
	jobs := ListingTable(normalizedFixture(t))
	for _, col := range append(Dimensions, locationHelperColumns...) {
		assert.False(t, jobs.Has(col), "column %s kept", col)
	}
	assert.True(t, jobs.Has("classification_id"))
	assert.Equal(t, 4, jobs.Len())
}

func TestCompanyReviewTable(t *testing.T) {
	details := &frame.Frame{
		Columns: []string{"id", "company_id", "company_overall_rating", "company_profile_url", "company_name_review"},
		Rows: []frame.Row{
			{"id": "1", "company_id": "10", "company_overall_rating": 4.0, "company_name_review": "A"},
			{"id": "2", "company_id": "10", "company_overall_rating": 4.0, "company_name_review": "A"},
			{"id": "3", "company_id": nil},
			{"id": "4", "company_id": "11", "company_name_review": "B"},
		},
	}
	review, err := CompanyReviewTable(details)
	require.NoError(t, err)
	require.Equal(t, 2, review.Len())
	assert.Equal(t, "A", review.Rows[0]["company_name_review"])
	assert.False(t, review.Has("id"))
}
