package main

import (
	"flag"

	"github.com/anatolykoptev/go-kit/env"

	"github.com/anatolykoptev/go_seek/internal/engine/jobs"
	"github.com/anatolykoptev/go_seek/internal/store"
	"github.com/anatolykoptev/go_seek/internal/toolutil"
)

// cliFlags holds the raw command-line values. Only flags that were set
// override the run file.
type cliFlags struct {
	config      string
	keywords    string
	locations   string
	workTypes   string
	dateRange   int
	sortMode    string
	checkWords  string
	details     bool
	salary      bool
	similarity  bool
	format      string
	outDir      string
	singleTable bool
	databaseURL string
	serve       bool
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	c := &cliFlags{}
	fs.StringVar(&c.config, "config", "", "YAML run file with search options and an output section")
	fs.StringVar(&c.keywords, "keywords", "", "comma-separated search keywords")
	fs.StringVar(&c.locations, "locations", "", "comma-separated SEEK locations")
	fs.StringVar(&c.workTypes, "work-types", "", "comma-separated work types: full_time, part_time, contract, casual")
	fs.IntVar(&c.dateRange, "date-range", 31, "listed within this many days")
	fs.StringVar(&c.sortMode, "sort", "date", "sort mode: date or relevance")
	fs.StringVar(&c.checkWords, "check-words", "", "comma-separated words a listing must mention to get its details downloaded")
	fs.BoolVar(&c.details, "details", true, "download job ad details")
	fs.BoolVar(&c.salary, "salary", false, "extract annual salary bounds")
	fs.BoolVar(&c.similarity, "similarity", false, "flag near-duplicate listings")
	fs.StringVar(&c.format, "format", store.FormatCSV, "output format: csv, excel, sqlite, postgres")
	fs.StringVar(&c.outDir, "out", "data", "output directory for file and sqlite output")
	fs.BoolVar(&c.singleTable, "single-table", false, "write only the denormalized jobs_wide table")
	fs.StringVar(&c.databaseURL, "database-url", "", "PostgreSQL URL (default: $DATABASE_URL)")
	fs.BoolVar(&c.serve, "serve", false, "run the MCP server instead of a single scrape")
	return c
}

// resolve merges defaults, the run file and the flags that were set.
func (c *cliFlags) resolve(fs *flag.FlagSet) (jobs.Options, store.Options, error) {
	opts := jobs.DefaultOptions()
	out := store.DefaultOptions()
	if c.config != "" {
		var err error
		if opts, err = jobs.LoadOptions(c.config); err != nil {
			return opts, out, err
		}
		if out, err = store.LoadOptions(c.config); err != nil {
			return opts, out, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "keywords":
			opts.Keywords = toolutil.SplitList(c.keywords)
		case "locations":
			opts.Locations = toolutil.SplitList(c.locations)
		case "work-types":
			opts.WorkTypes = toolutil.SplitList(c.workTypes)
		case "date-range":
			opts.DateRange = c.dateRange
		case "sort":
			opts.SortMode = c.sortMode
		case "check-words":
			opts.CheckWords = toolutil.SplitList(c.checkWords)
		case "details":
			opts.DownloadDetails = c.details
		case "salary":
			opts.ExtractSalary = c.salary
		case "similarity":
			opts.CheckSimilarity = c.similarity
		case "format":
			out.Format = c.format
		case "out":
			out.Dir = c.outDir
		case "single-table":
			out.SingleTable = c.singleTable
		case "database-url":
			out.DatabaseURL = c.databaseURL
		}
	})
	if out.DatabaseURL == "" {
		out.DatabaseURL = env.Str("DATABASE_URL", "")
	}

	if c.serve {
		return opts, out, nil
	}
	return opts, out, opts.Validate()
}
