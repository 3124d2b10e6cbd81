// go_seek scrapes SEEK job listings, normalizes them into relational tables
// and writes a snapshot to CSV, Excel, SQLite or PostgreSQL.
//
// Runs once from the command line, or as an MCP server (-serve) exposing the
// seek_snapshot tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_seek/internal/engine"
	"github.com/anatolykoptev/go_seek/internal/engine/jobs"
	"github.com/anatolykoptev/go_seek/internal/engine/seek"
	"github.com/anatolykoptev/go_seek/internal/jobserver"
	"github.com/anatolykoptev/go_seek/internal/store"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("load .env", slog.Any("error", err))
	}

	fs := flag.NewFlagSet("go_seek", flag.ExitOnError)
	cli := registerFlags(fs)
	_ = fs.Parse(os.Args[1:])

	opts, out, err := cli.resolve(fs)
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(2)
	}

	initEngine()
	defer engine.CloseCache()

	if cli.serve {
		serve(out)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, opts, out); err != nil {
		slog.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts jobs.Options, out store.Options) error {
	state, err := jobs.BuildTables(ctx, seek.NewClient(), opts)
	if err != nil {
		return err
	}
	if len(state.Tables) == 0 {
		slog.Info("nothing to write", slog.String("run", state.RunID))
		return nil
	}

	sink, err := store.Open(ctx, out)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, sink, state.Tables, out.SingleTable); err != nil {
		sink.Close()
		return err
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}

	hits, misses := engine.CacheStats()
	slog.Info("snapshot written",
		slog.String("run", state.RunID),
		slog.String("output", out.Location()),
		slog.Int64("cache_hits", hits),
		slog.Int64("cache_misses", misses),
		slog.String("metrics", engine.FormatMetrics()),
	)
	return nil
}

func serve(out store.Options) {
	port := env.Str("MCP_PORT", "8893")
	slog.Info("starting go_seek", slog.String("port", port))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_seek",
		Version: version,
	}, nil)
	jobserver.RegisterTools(server, seek.NewClient(), out)

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_seek",
		Version:      version,
		Port:         port,
		WriteTimeout: 30 * time.Minute,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		SearchURL:            env.Str("SEEK_SEARCH_URL", engine.DefaultSearchURL),
		DetailURL:            env.Str("SEEK_DETAIL_URL", engine.DefaultDetailURL),
		SiteKey:              env.Str("SEEK_SITE_KEY", engine.DefaultSiteKey),
		SourceSystem:         env.Str("SEEK_SOURCE_SYSTEM", engine.DefaultSourceSystem),
		UserAgent:            env.Str("SEEK_USER_AGENT", ""),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 30*time.Second),
		FetchRetries:         env.Int("SEEK_FETCH_RETRIES", 0),
		RequestsPerSecond:    env.Float("SEEK_RPS", 0),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 5000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	}

	if env.Str("SEEK_BROWSER_TLS", "") == "true" {
		bc, err := engine.NewBrowserClient(int(c.FetchTimeout / time.Second))
		if err != nil {
			slog.Warn("browser client init failed, using net/http", slog.Any("error", err))
		} else {
			c.BrowserClient = bc
			slog.Info("browser tls client initialized")
		}
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
