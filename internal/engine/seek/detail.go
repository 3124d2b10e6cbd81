package seek

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_seek/internal/engine"
	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

// Optional is a payload field that may be absent.
type Optional[T any] struct {
	Value   T
	Present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

// Any returns the value, or nil when absent.
func (o Optional[T]) Any() any {
	if !o.Present {
		return nil
	}
	return o.Value
}

// CompanyReview is the companyReview block of a job payload.
type CompanyReview struct {
	OverallRating Optional[float64]
	ProfileURL    Optional[string]
	Name          Optional[string]
	ID            Optional[string]
}

// Detail is the extended record of one job ad.
type Detail struct {
	ID                  string
	ExpiryDate          Optional[string]
	SalaryType          Optional[string]
	HasRoleRequirements Optional[bool]
	RoleRequirements    Optional[[]string]
	JobAdDetails        Optional[string]
	Emails              []string // nil when the ad lists none
	Phones              []string // nil when the ad lists none
	Company             CompanyReview
}

// DetailColumns is the column order of a detail row.
var DetailColumns = []string{
	"id", "expiry_date", "salary_type", "has_role_requirements", "role_requirements",
	"job_ad_details", "job_ad_text", "email", "phone",
	"company_overall_rating", "company_profile_url", "company_name_review", "company_id",
}

// Row converts d to a frame row; absent fields become null.
func (d Detail) Row() frame.Row {
	row := frame.Row{
		"id":                     d.ID,
		"expiry_date":            d.ExpiryDate.Any(),
		"salary_type":            d.SalaryType.Any(),
		"has_role_requirements":  d.HasRoleRequirements.Any(),
		"role_requirements":      d.RoleRequirements.Any(),
		"job_ad_details":         d.JobAdDetails.Any(),
		"job_ad_text":            nil,
		"email":                  nil,
		"phone":                  nil,
		"company_overall_rating": d.Company.OverallRating.Any(),
		"company_profile_url":    d.Company.ProfileURL.Any(),
		"company_name_review":    d.Company.Name.Any(),
		"company_id":             d.Company.ID.Any(),
	}
	if d.JobAdDetails.Present {
		if text := engine.HTMLToText(d.JobAdDetails.Value); text != "" {
			row["job_ad_text"] = text
		}
	}
	if d.Emails != nil {
		row["email"] = d.Emails
	}
	if d.Phones != nil {
		row["phone"] = d.Phones
	}
	return row
}

// Detail fetches the job ad for id. Payloads are cached by id.
func (c *Client) Detail(ctx context.Context, id string) (Detail, error) {
	key := engine.CacheKey("detail", engine.Cfg.DetailURL, id)
	if data, ok := engine.CacheGet(ctx, key); ok {
		payload, err := engine.DecodeObject(data)
		if err == nil {
			return ParseDetail(id, payload), nil
		}
		slog.Debug("seek: cached detail unreadable", slog.String("id", id), slog.Any("error", err))
	}

	engine.IncrDetailRequests()
	endpoint := strings.TrimRight(engine.Cfg.DetailURL, "/") + "/" + url.PathEscape(id)
	body, err := engine.GetRaw(ctx, endpoint, nil)
	if err != nil {
		slog.Warn("seek: detail fetch failed",
			slog.String("id", id),
			slog.Int("status", engine.StatusCode(err)),
			slog.Any("error", err),
		)
		return Detail{}, fmt.Errorf("seek: detail %s: %w", id, err)
	}
	payload, err := engine.DecodeObject(body)
	if err != nil {
		return Detail{}, fmt.Errorf("seek: detail %s: %w", id, err)
	}
	engine.CacheSet(ctx, key, body)
	return ParseDetail(id, payload), nil
}

// ParseDetail extracts a Detail from a decoded job payload. Missing or
// mistyped fields are absent.
func ParseDetail(id string, payload map[string]any) Detail {
	d := Detail{
		ID:                  id,
		ExpiryDate:          optString(payload, "expiryDate"),
		SalaryType:          optString(payload, "salaryType"),
		HasRoleRequirements: optBool(payload, "hasRoleRequirements"),
		RoleRequirements:    optStrings(payload, "roleRequirements"),
		JobAdDetails:        optString(payload, "jobAdDetails"),
	}
	d.Emails, d.Phones = ExtractContacts(contactsFromPayload(payload["contactMatches"]))

	if review, ok := payload["companyReview"].(map[string]any); ok {
		d.Company = CompanyReview{
			OverallRating: optFloat(review, "companyOverallRating"),
			ProfileURL:    optString(review, "companyProfileUrl"),
			Name:          optString(review, "companyName"),
			ID:            optID(review, "companyId"),
		}
	}
	return d
}

func optString(m map[string]any, key string) Optional[string] {
	if s, ok := m[key].(string); ok {
		return Some(s)
	}
	return Optional[string]{}
}

func optBool(m map[string]any, key string) Optional[bool] {
	switch v := m[key].(type) {
	case bool:
		return Some(v)
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return Some(b)
		}
	}
	return Optional[bool]{}
}

func optFloat(m map[string]any, key string) Optional[float64] {
	switch v := m[key].(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return Some(f)
		}
	case float64:
		return Some(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return Some(f)
		}
	}
	return Optional[float64]{}
}

// optID reads an id that SEEK sends as either a number or a string.
func optID(m map[string]any, key string) Optional[string] {
	switch v := m[key].(type) {
	case string:
		if v != "" {
			return Some(v)
		}
	case json.Number:
		return Some(v.String())
	case float64:
		return Some(frame.Key(v))
	}
	return Optional[string]{}
}

// optStrings reads a list of strings; a bare string is a one-item list and
// non-string items are rendered as JSON.
func optStrings(m map[string]any, key string) Optional[[]string] {
	switch v := m[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			b, err := json.Marshal(item)
			if err != nil {
				continue
			}
			out = append(out, string(b))
		}
		return Some(out)
	case string:
		return Some([]string{v})
	}
	return Optional[[]string]{}
}
