package seek

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_seek/internal/engine"
)

// Client fetches from the SEEK endpoints configured in engine.Cfg.
type Client struct{}

// NewClient returns a Client bound to the engine configuration.
func NewClient() *Client {
	return &Client{}
}

// Search fetches every listing for every (keyword, location) pair of p.
// Records are returned in keyword-major order, then location, then page.
// Invalid work types or sort modes fail with ErrInvalidOption before any
// request is made.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]map[string]any, error) {
	base, err := baseParams(p)
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	for _, kw := range p.Keywords {
		for _, loc := range p.Locations {
			start := time.Now()
			recs, err := c.searchPair(ctx, base, kw, loc)
			if err != nil {
				return nil, err
			}
			slog.Info("seek: search done",
				slog.String("keyword", kw),
				slog.String("location", loc),
				slog.Int("records", len(recs)),
				slog.Duration("elapsed", time.Since(start)),
			)
			records = append(records, recs...)
		}
	}
	return records, nil
}

// baseParams builds the query parameters shared by every page request.
func baseParams(p SearchParams) (url.Values, error) {
	wt, err := workTypeParam(p.WorkTypes)
	if err != nil {
		return nil, err
	}
	mode := p.SortMode
	if mode == "" {
		mode = "date"
	}
	sm, err := sortModeParam(mode)
	if err != nil {
		return nil, err
	}
	dateRange := p.DateRange
	if dateRange <= 0 {
		dateRange = 31
	}

	v := url.Values{}
	v.Set("siteKey", engine.Cfg.SiteKey)
	v.Set("sourcesystem", engine.Cfg.SourceSystem)
	v.Set("seekSelectAllPages", "true")
	v.Set("sortmode", sm)
	v.Set("dateRange", strconv.Itoa(dateRange))
	v.Set("worktype", wt)
	return v, nil
}

// searchPair fetches all pages for one keyword and location. The first
// request only learns totalCount; pages 1..N are then fetched in order.
func (c *Client) searchPair(ctx context.Context, base url.Values, keyword, location string) ([]map[string]any, error) {
	first, err := c.searchPage(ctx, base, keyword, location, 1)
	if err != nil {
		return nil, err
	}
	total, err := totalCount(first)
	if err != nil {
		return nil, fmt.Errorf("seek: search %q in %q: %w", keyword, location, err)
	}
	if total == 0 {
		slog.Info("seek: no jobs found",
			slog.String("keyword", keyword),
			slog.String("location", location),
			slog.String("hint", "try a longer date range or different keywords"),
		)
		return nil, nil
	}

	pages := (total + PageSize - 1) / PageSize
	var records []map[string]any
	for page := 1; page <= pages; page++ {
		resp, err := c.searchPage(ctx, base, keyword, location, page)
		if err != nil {
			return nil, err
		}
		data, err := pageData(resp)
		if err != nil {
			return nil, fmt.Errorf("seek: search %q in %q page %d: %w", keyword, location, page, err)
		}
		records = append(records, data...)
	}
	return records, nil
}

func (c *Client) searchPage(ctx context.Context, base url.Values, keyword, location string, page int) (map[string]any, error) {
	params := url.Values{}
	for k, v := range base {
		params[k] = v
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("keywords", keyword)
	params.Set("where", location)

	engine.IncrSearchRequests()
	resp, err := engine.GetJSON(ctx, engine.Cfg.SearchURL, params)
	if err != nil {
		return nil, fmt.Errorf("seek: search page %d: %w", page, err)
	}
	return resp, nil
}

// totalCount reads the totalCount field of a search response.
func totalCount(resp map[string]any) (int, error) {
	switch v := resp["totalCount"].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("bad totalCount %q: %w", v, err)
		}
		return int(n), nil
	case float64:
		return int(v), nil
	case nil:
		return 0, errors.New("response has no totalCount")
	default:
		return 0, fmt.Errorf("bad totalCount type %T", v)
	}
}

// pageData returns the listing objects of a search response.
func pageData(resp map[string]any) ([]map[string]any, error) {
	raw, ok := resp["data"]
	if !ok || raw == nil {
		return nil, errors.New("response has no data")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("bad data type %T", raw)
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("data[%d]: bad listing type %T", i, item)
		}
		out = append(out, m)
	}
	return out, nil
}
