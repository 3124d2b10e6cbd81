package jobs

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_seek/internal/engine"
	"github.com/anatolykoptev/go_seek/internal/engine/seek"
)

// listingJSON renders one search record shaped like SEEK's chalice-search data.
func listingJSON(id int, title, teaser, salary string, classID, areaID int) string {
	area := `null`
	if areaID > 0 {
		area = fmt.Sprintf(`%d`, areaID)
	}
	return fmt.Sprintf(`{
		"id": %d,
		"title": %q,
		"teaser": %q,
		"salary": %q,
		"listingDate": "2024-05-0%dT01:02:03Z",
		"advertiser": {"id": "2024%d", "description": "Advertiser %d"},
		"classification": {"id": "%d", "description": "Class %d"},
		"subClassification": {"id": "%d", "description": "Sub %d"},
		"location": "Sydney",
		"locationId": 1000,
		"locationWhereValue": "All Sydney NSW",
		"area": "CBD",
		"areaId": %s,
		"areaWhereValue": "CBD",
		"suburbWhereValue": "",
		"workType": "Full Time",
		"logo": {"id": "x"},
		"isStandOut": true,
		"branding": {"id": "y"},
		"tracking": "abc",
		"123": "numeric column"
	}`, id, title, teaser, salary, 1+id%9, id, id, classID, classID, classID*10, classID*10, area)
}

func decodeRecords(t *testing.T, docs ...string) []map[string]any {
	t.Helper()
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		m, err := engine.DecodeObject([]byte(d))
		if err != nil {
			t.Fatalf("decode fixture %d: %v", i, err)
		}
		out[i] = m
	}
	return out
}

// fakeSource serves canned search records and details.
type fakeSource struct {
	records   []map[string]any
	details   map[string]string
	searchErr error
	detailIDs []string
}

func (f *fakeSource) Search(_ context.Context, _ seek.SearchParams) ([]map[string]any, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.records, nil
}

func (f *fakeSource) Detail(_ context.Context, id string) (seek.Detail, error) {
	f.detailIDs = append(f.detailIDs, id)
	payload := map[string]any{}
	if doc, ok := f.details[id]; ok {
		m, err := engine.DecodeObject([]byte(doc))
		if err != nil {
			return seek.Detail{}, err
		}
		payload = m
	}
	return seek.ParseDetail(id, payload), nil
}

func detailJSON(companyID int, salaryType string, emails ...string) string {
	contacts := make([]string, len(emails))
	for i, e := range emails {
		contacts[i] = fmt.Sprintf(`{"type": "Email", "value": %q}`, e)
	}
	return fmt.Sprintf(`{
		"expiryDate": "2024-06-30T00:00:00Z",
		"salaryType": %q,
		"hasRoleRequirements": false,
		"jobAdDetails": "<p>Ad body</p>",
		"contactMatches": [%s],
		"companyReview": {"companyOverallRating": 3.9, "companyProfileUrl": "https://example.test/c/%d", "companyName": "Co %d", "companyId": %d}
	}`, salaryType, strings.Join(contacts, ", "), companyID, companyID, companyID)
}
