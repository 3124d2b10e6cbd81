package seek

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_seek/internal/engine"
)

// fakeSearch serves totals[keyword|where] results in pages of PageSize and
// records every request.
type fakeSearch struct {
	mu       sync.Mutex
	totals   map[string]int
	requests []string
}

func (f *fakeSearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := q.Get("keywords") + "|" + q.Get("where")
	page, _ := strconv.Atoi(q.Get("page"))

	f.mu.Lock()
	f.requests = append(f.requests, fmt.Sprintf("%s#%d", key, page))
	total := f.totals[key]
	f.mu.Unlock()

	var items []string
	for i := (page - 1) * PageSize; i < min(page*PageSize, total); i++ {
		items = append(items, fmt.Sprintf(`{"id": %d, "title": "%s %d"}`, i+1, q.Get("keywords"), i))
	}
	fmt.Fprintf(w, `{"totalCount": %d, "data": [%s]}`, total, joinJSON(items))
}

func joinJSON(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}

func newFakeSearch(t *testing.T, totals map[string]int) *fakeSearch {
	t.Helper()
	f := &fakeSearch{totals: totals}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	engine.Init(engine.Config{SearchURL: srv.URL, HTTPClient: srv.Client()})
	return f
}

func TestSearchPagination(t *testing.T) {
	f := newFakeSearch(t, map[string]int{
		"data analyst|Sydney":   41,
		"data analyst|Auckland": 0,
		"data engineer|Sydney":  20,
	})

	recs, err := NewClient().Search(context.Background(), SearchParams{
		Keywords:  []string{"data analyst", "data engineer"},
		Locations: []string{"Sydney", "Auckland"},
	})
	require.NoError(t, err)
	assert.Len(t, recs, 61)

	want := []string{
		"data analyst|Sydney#1", "data analyst|Sydney#1", "data analyst|Sydney#2", "data analyst|Sydney#3",
		"data analyst|Auckland#1",
		"data engineer|Sydney#1", "data engineer|Sydney#1",
		"data engineer|Auckland#1",
	}
	assert.Equal(t, want, f.requests)
	assert.Equal(t, "data analyst 0", recs[0]["title"])
	assert.Equal(t, "data engineer 0", recs[41]["title"])
}

func TestSearchParams(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`{"totalCount": 0, "data": []}`))
	}))
	defer srv.Close()
	engine.Init(engine.Config{SearchURL: srv.URL, HTTPClient: srv.Client(), SiteKey: "NZ-Main"})

	_, err := NewClient().Search(context.Background(), SearchParams{
		Keywords:  []string{"analyst"},
		Locations: []string{"All New Zealand"},
		WorkTypes: []string{"full_time", "contract"},
		DateRange: 3,
		SortMode:  "relevance",
	})
	require.NoError(t, err)
	assert.Equal(t, "NZ-Main", got["siteKey"])
	assert.Equal(t, "houston", got["sourcesystem"])
	assert.Equal(t, "242,244", got["worktype"])
	assert.Equal(t, "KeywordRelevance", got["sortmode"])
	assert.Equal(t, "3", got["dateRange"])
	assert.Equal(t, "true", got["seekSelectAllPages"])
	assert.Equal(t, "All New Zealand", got["where"])
}

func TestSearchInvalidOptionsMakeNoRequests(t *testing.T) {
	tests := []struct {
		name string
		p    SearchParams
	}{
		{"work type", SearchParams{Keywords: []string{"a"}, Locations: []string{"b"}, WorkTypes: []string{"freelance"}}},
		{"sort mode", SearchParams{Keywords: []string{"a"}, Locations: []string{"b"}, SortMode: "salary"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeSearch(t, nil)
			_, err := NewClient().Search(context.Background(), tt.p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOption))
			assert.Empty(t, f.requests)
		})
	}
}

func TestSearchServerErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	engine.Init(engine.Config{SearchURL: srv.URL, HTTPClient: srv.Client()})

	_, err := NewClient().Search(context.Background(), SearchParams{Keywords: []string{"a"}, Locations: []string{"b"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, engine.StatusCode(err))
}

func TestSearchMalformedPageIsFatal(t *testing.T) {
	tests := map[string]string{
		"missing data":  `{"totalCount": 25, "error": "upstream shape changed"}`,
		"data not list": `{"totalCount": 25, "data": {"id": 1}}`,
		"item not obj":  `{"totalCount": 25, "data": [{"id": 1}, "oops"]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer srv.Close()
			engine.Init(engine.Config{SearchURL: srv.URL, HTTPClient: srv.Client()})

			records, err := NewClient().Search(context.Background(), SearchParams{Keywords: []string{"data"}, Locations: []string{"All New Zealand"}})
			require.Error(t, err)
			assert.Nil(t, records)
			assert.Contains(t, err.Error(), `"data" in "All New Zealand" page 1`)
		})
	}
}

func TestWorkTypeParamDefaultsToAll(t *testing.T) {
	got, err := workTypeParam(nil)
	require.NoError(t, err)
	assert.Equal(t, "242,243,244,245", got)
}
