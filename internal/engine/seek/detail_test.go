package seek

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_seek/internal/engine"
)

const detailPayload = `{
  "expiryDate": "2024-06-01T00:00:00Z",
  "salaryType": "AnnualPackage",
  "hasRoleRequirements": true,
  "roleRequirements": ["Which of the following statements best describes your right to work in Australia?"],
  "jobAdDetails": "<p>Join our <strong>data</strong> team.</p>",
  "contactMatches": [
    {"type": "Email", "value": "careers@acme.com.au"},
    {"type": "Phone", "value": "02 9999 0000"}
  ],
  "companyReview": {
    "companyOverallRating": 4.2,
    "companyProfileUrl": "https://www.seek.com.au/companies/acme-123",
    "companyName": "Acme",
    "companyId": 432306
  }
}`

func TestParseDetail(t *testing.T) {
	payload, err := engine.DecodeObject([]byte(detailPayload))
	require.NoError(t, err)

	d := ParseDetail("123", payload)
	assert.Equal(t, "123", d.ID)
	assert.Equal(t, Some("AnnualPackage"), d.SalaryType)
	assert.Equal(t, Some(true), d.HasRoleRequirements)
	assert.Len(t, d.RoleRequirements.Value, 1)
	assert.Equal(t, []string{"careers@acme.com.au"}, d.Emails)
	assert.Equal(t, []string{"0299990000"}, d.Phones)
	assert.Equal(t, Some(4.2), d.Company.OverallRating)
	assert.Equal(t, Some("432306"), d.Company.ID)

	row := d.Row()
	assert.Equal(t, "Acme", row["company_name_review"])
	assert.Contains(t, row["job_ad_text"], "data")
}

func TestParseDetailMissingFields(t *testing.T) {
	d := ParseDetail("7", map[string]any{"salaryType": "HourlyRate"})

	assert.False(t, d.ExpiryDate.Present)
	assert.False(t, d.HasRoleRequirements.Present)
	assert.False(t, d.Company.ID.Present)
	assert.Nil(t, d.Emails)

	row := d.Row()
	for _, col := range DetailColumns {
		if col == "id" || col == "salary_type" {
			continue
		}
		assert.Nil(t, row[col], col)
	}
	assert.Equal(t, "HourlyRate", row["salary_type"])
}

func TestClientDetail(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/job/123" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(detailPayload))
	}))
	defer srv.Close()

	engine.Init(engine.Config{DetailURL: srv.URL + "/job", HTTPClient: srv.Client()})
	engine.InitCache("", time.Minute, 10, time.Minute)
	t.Cleanup(engine.CloseCache)

	c := NewClient()
	d, err := c.Detail(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, Some("2024-06-01T00:00:00Z"), d.ExpiryDate)

	// second call is served from cache
	_, err = c.Detail(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.Detail(context.Background(), "999")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, engine.StatusCode(err))
}

func TestClientDetailLogsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	engine.Init(engine.Config{DetailURL: srv.URL + "/job", HTTPClient: srv.Client()})
	engine.InitCache("", time.Minute, 10, time.Minute)
	t.Cleanup(engine.CloseCache)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, err := NewClient().Detail(context.Background(), "77")
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"msg":"seek: detail fetch failed"`)
	assert.Contains(t, buf.String(), `"status":410`)
}
