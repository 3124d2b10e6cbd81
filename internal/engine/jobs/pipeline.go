package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_seek/internal/engine"
	"github.com/anatolykoptev/go_seek/internal/engine/frame"
	"github.com/anatolykoptev/go_seek/internal/engine/seek"
)

// ErrMissingInput is returned when a stage runs before the stage that
// produces its input.
var ErrMissingInput = errors.New("missing stage input")

// Output table names.
const (
	TableJobs          = "jobs"
	TableCompanyReview = "company_review"
	TableJobsWide      = "jobs_wide"
)

// TableNames lists every output table in write order.
var TableNames = append(append([]string{}, Dimensions...), TableJobs, TableCompanyReview, TableJobsWide)

// Tables maps table name to its frame.
type Tables map[string]*frame.Frame

// Source is where the pipeline reads listings and job details from.
type Source interface {
	Search(ctx context.Context, p seek.SearchParams) ([]map[string]any, error)
	Detail(ctx context.Context, id string) (seek.Detail, error)
}

// State carries one run's intermediate results from stage to stage.
type State struct {
	RunID   string
	Options Options

	Raw           []map[string]any
	Listings      *frame.Frame // normalized search results
	Dimensions    map[string]*frame.Frame
	Jobs          *frame.Frame // listing table, detail columns once fetched
	CheckedIDs    []any
	Details       *frame.Frame
	CompanyReview *frame.Frame
	Tables        Tables

	fetched        bool
	detailsFetched bool
}

// NewState starts a run with a fresh run id.
func NewState(opts Options) *State {
	return &State{RunID: uuid.NewString(), Options: opts}
}

// Empty reports whether the search returned no listings.
func (s *State) Empty() bool {
	return s.fetched && s.Listings.Len() == 0
}

// Fetch runs the search for every keyword and location.
func (s *State) Fetch(ctx context.Context, src Source) error {
	raw, err := src.Search(ctx, s.Options.SearchParams())
	if err != nil {
		return fmt.Errorf("pipeline: search: %w", err)
	}
	s.Raw = raw
	s.fetched = true
	slog.Info("pipeline: search done", slog.String("run", s.RunID), slog.Int("records", len(raw)))
	return nil
}

// Normalize flattens the raw search records.
func (s *State) Normalize() error {
	if !s.fetched {
		return fmt.Errorf("pipeline: normalize: %w: search results", ErrMissingInput)
	}
	f, err := Normalize(s.Raw)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	s.Listings = f
	return nil
}

// BuildEntities derives the dimension tables and the listing table.
func (s *State) BuildEntities() error {
	if s.Listings == nil {
		return fmt.Errorf("pipeline: entities: %w: normalized listings", ErrMissingInput)
	}
	dims, err := DimensionTables(s.Listings)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	s.Dimensions = dims
	s.Jobs = ListingTable(s.Listings)
	return nil
}

// SelectForDetails applies the keyword filter and records which listings
// qualify for a detail download.
func (s *State) SelectForDetails() error {
	if s.Jobs == nil {
		return fmt.Errorf("pipeline: check words: %w: listing table", ErrMissingInput)
	}
	jobs, err := CheckWords(s.Jobs, s.Options.CheckWords)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	s.Jobs = jobs
	s.CheckedIDs = CheckedIDs(jobs)
	slog.Info("pipeline: listings selected",
		slog.Int("listings", jobs.Len()),
		slog.Int("selected", len(s.CheckedIDs)),
	)
	return nil
}

// FetchDetails downloads the job ad of every selected listing.
func (s *State) FetchDetails(ctx context.Context, src Source) error {
	if s.Jobs == nil {
		return fmt.Errorf("pipeline: details: %w: listing table", ErrMissingInput)
	}
	details := frame.New(seek.DetailColumns...)
	for i, id := range s.CheckedIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := src.Detail(ctx, frame.Key(id))
		if err != nil {
			return fmt.Errorf("pipeline: details: %w", err)
		}
		details.Rows = append(details.Rows, d.Row())
		if (i+1)%50 == 0 {
			slog.Info("pipeline: details progress", slog.Int("done", i+1), slog.Int("total", len(s.CheckedIDs)))
		}
	}
	review, err := CompanyReviewTable(details)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	s.Details = details
	s.CompanyReview = review
	s.detailsFetched = true
	return nil
}

// reviewDisplayColumns live only in company_review once details are joined.
var reviewDisplayColumns = []string{"company_overall_rating", "company_profile_url", "company_name_review"}

var jobsIntColumns = []string{
	"advertiser_id", "classification_id", "sub_classification_id",
	"location_id", "area_id", "suburb_id",
}

// Assemble joins details onto the listing table, cleans types and nulls,
// applies the optional salary and similarity passes and builds every table.
func (s *State) Assemble() error {
	if s.Jobs == nil || s.Dimensions == nil {
		return fmt.Errorf("pipeline: assemble: %w: listing and dimension tables", ErrMissingInput)
	}

	jobs := s.Jobs
	review := frame.New("company_id", "company_overall_rating", "company_profile_url", "company_name_review")
	if s.detailsFetched {
		jobs = jobs.LeftJoin(s.Details, "id")
		review = s.CompanyReview.Clone()
	}
	jobs = jobs.Drop(reviewDisplayColumns...)

	for _, col := range []string{"listing_date", "expiry_date"} {
		if err := coerceColumn(jobs, col, toTime); err != nil {
			return fmt.Errorf("pipeline: assemble: %w", err)
		}
	}
	if err := coerceColumn(jobs, "has_role_requirements", toBool); err != nil {
		return fmt.Errorf("pipeline: assemble: %w", err)
	}
	for _, col := range jobsIntColumns {
		if err := coerceColumn(jobs, col, toInt64); err != nil {
			return fmt.Errorf("pipeline: assemble: %w", err)
		}
	}
	jobs = jobs.Rename(map[string]string{"id": "job_id", "company_id": "review_company_id"})
	review = review.Rename(map[string]string{"company_id": "review_company_id"})

	tables := Tables{}
	for _, dim := range Dimensions {
		d := s.Dimensions[dim].Clone()
		if err := coerceColumn(d, dim+"_id", toInt64); err != nil {
			return fmt.Errorf("pipeline: assemble %s: %w", dim, err)
		}
		normalizeNulls(d)
		tables[dim] = d
	}
	normalizeNulls(jobs)
	normalizeNulls(review)

	var err error
	if s.Options.ExtractSalary {
		if jobs, err = ExtractSalary(jobs); err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
	}
	if s.Options.CheckSimilarity {
		if jobs, err = CheckSimilarity(jobs); err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
	}

	wide := jobs
	for _, dim := range Dimensions {
		wide = wide.LeftJoin(tables[dim], dim+"_id")
	}
	if review.Len() > 0 {
		wide = wide.LeftJoin(review, "review_company_id")
	}

	tables[TableJobs] = jobs
	tables[TableCompanyReview] = review
	tables[TableJobsWide] = wide
	s.Tables = tables
	return nil
}

// BuildTables runs every stage for opts against src. Zero search results
// yield a state with empty Tables and no error.
func BuildTables(ctx context.Context, src Source, opts Options) (*State, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	engine.IncrPipelineRuns()
	s := NewState(opts)
	start := time.Now()

	err := engine.TrackOperation(ctx, "search", time.Minute, func(ctx context.Context) error {
		return s.Fetch(ctx, src)
	})
	if err != nil {
		return nil, err
	}
	if err := s.Normalize(); err != nil {
		return nil, err
	}
	if s.Empty() {
		slog.Info("pipeline: no listings found", slog.String("run", s.RunID))
		s.Tables = Tables{}
		return s, nil
	}
	if err := s.BuildEntities(); err != nil {
		return nil, err
	}
	if err := s.SelectForDetails(); err != nil {
		return nil, err
	}
	if opts.DownloadDetails {
		err := engine.TrackOperation(ctx, "details", 5*time.Minute, func(ctx context.Context) error {
			return s.FetchDetails(ctx, src)
		})
		if err != nil {
			return nil, err
		}
	}
	if err := s.Assemble(); err != nil {
		return nil, err
	}

	slog.Info("pipeline: tables built",
		slog.String("run", s.RunID),
		slog.Int("jobs", s.Tables[TableJobs].Len()),
		slog.Int("company_reviews", s.Tables[TableCompanyReview].Len()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return s, nil
}
