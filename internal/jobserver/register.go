package jobserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_seek/internal/engine"
	"github.com/anatolykoptev/go_seek/internal/engine/jobs"
	"github.com/anatolykoptev/go_seek/internal/store"
	"github.com/anatolykoptev/go_seek/internal/toolutil"
)

// SnapshotInput is the input for seek_snapshot.
type SnapshotInput struct {
	Keywords        []string `json:"keywords" jsonschema:"Search keywords, each searched separately (e.g. 'data analyst')"`
	Locations       []string `json:"locations" jsonschema:"Locations as SEEK where values (e.g. 'All Sydney NSW', 'All New Zealand')"`
	WorkTypes       []string `json:"work_types,omitempty" jsonschema:"Filter: full_time, part_time, contract, casual (default: all)"`
	DateRange       int      `json:"date_range,omitempty" jsonschema:"Listed within this many days (default: 31)"`
	SortMode        string   `json:"sort_mode,omitempty" jsonschema:"Sort by: date (default), relevance"`
	CheckWords      []string `json:"check_words,omitempty" jsonschema:"Only download details for listings whose title or teaser contains one of these words"`
	SkipDetails     bool     `json:"skip_details,omitempty" jsonschema:"Do not download job ad details"`
	ExtractSalary   bool     `json:"extract_salary,omitempty" jsonschema:"Add annual salary bounds parsed from the salary text"`
	CheckSimilarity bool     `json:"check_similarity,omitempty" jsonschema:"Flag near-duplicate listings"`
	Format          string   `json:"format,omitempty" jsonschema:"Output: csv, excel, sqlite, postgres (default: server setting)"`
	SingleTable     bool     `json:"single_table,omitempty" jsonschema:"Write only the denormalized jobs_wide table"`
}

// SnapshotOutput reports what a snapshot run wrote.
type SnapshotOutput struct {
	RunID        string         `json:"run_id"`
	Tables       map[string]int `json:"tables"`
	Output       string         `json:"output"`
	SampleTitles []string       `json:"sample_titles,omitempty"`
	Elapsed      string         `json:"elapsed"`
}

// RegisterTools registers seek_snapshot on server. Runs read listings from
// src and write with out, overridden per call by the input.
func RegisterTools(server *mcp.Server, src jobs.Source, out store.Options) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "seek_snapshot",
		Description: "Scrape SEEK job listings for every keyword and location, normalize them into jobs, company_review and dimension tables (classification, sub_classification, location, area, advertiser), and write the snapshot to CSV, Excel, SQLite or PostgreSQL. Returns the run id, row count per table and output location.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SnapshotInput) (*mcp.CallToolResult, *SnapshotOutput, error) {
		return runSnapshot(ctx, src, input.options(), input.sinkOptions(out))
	})
}

func (in SnapshotInput) options() jobs.Options {
	o := jobs.DefaultOptions()
	o.Keywords = in.Keywords
	o.Locations = in.Locations
	o.WorkTypes = in.WorkTypes
	if in.DateRange > 0 {
		o.DateRange = in.DateRange
	}
	if in.SortMode != "" {
		o.SortMode = in.SortMode
	}
	o.CheckWords = in.CheckWords
	o.DownloadDetails = !in.SkipDetails
	o.ExtractSalary = in.ExtractSalary
	o.CheckSimilarity = in.CheckSimilarity
	return o
}

func (in SnapshotInput) sinkOptions(base store.Options) store.Options {
	if in.Format != "" {
		base.Format = in.Format
	}
	base.SingleTable = base.SingleTable || in.SingleTable
	return base
}

func runSnapshot(ctx context.Context, src jobs.Source, opts jobs.Options, out store.Options) (*mcp.CallToolResult, *SnapshotOutput, error) {
	start := time.Now()
	state, err := jobs.BuildTables(ctx, src, opts)
	if err != nil {
		return nil, nil, err
	}

	if len(state.Tables) > 0 {
		sink, err := store.Open(ctx, out)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Save(ctx, sink, state.Tables, out.SingleTable); err != nil {
			sink.Close()
			return nil, nil, err
		}
		if err := sink.Close(); err != nil {
			return nil, nil, err
		}
	}

	result := &SnapshotOutput{
		RunID:        state.RunID,
		Tables:       toolutil.TableCounts(state.Tables),
		Output:       out.Location(),
		SampleTitles: toolutil.SampleTitles(state.Tables, 5, 80),
		Elapsed:      time.Since(start).Round(time.Millisecond).String(),
	}
	slog.Info("seek_snapshot: done",
		slog.String("run", result.RunID),
		slog.Int("jobs", result.Tables[jobs.TableJobs]),
		slog.String("output", result.Output),
		slog.String("metrics", engine.FormatMetrics()),
	)
	return nil, result, nil
}
