package engine

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Default SEEK endpoints and request constants.
const (
	DefaultSearchURL    = "https://www.seek.com.au/api/chalice-search/search"
	DefaultDetailURL    = "https://chalice-experience-api.cloud.seek.com.au/job"
	DefaultSiteKey      = "AU-Main"
	DefaultSourceSystem = "houston"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	SearchURL            string
	DetailURL            string
	SiteKey              string
	SourceSystem         string
	UserAgent            string
	FetchTimeout         time.Duration
	FetchRetries         int     // extra tries on 429/5xx; 0 = a failed request is fatal
	RequestsPerSecond    float64 // 0 = unlimited
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = plain net/http transport
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (seek, jobs).
// Always points to the current cfg value.
var Cfg = &cfg

var limiter = rate.NewLimiter(rate.Inf, 1)

// Init initializes the engine with the given configuration.
// Empty fields fall back to the public SEEK defaults.
func Init(c Config) {
	if c.SearchURL == "" {
		c.SearchURL = DefaultSearchURL
	}
	if c.DetailURL == "" {
		c.DetailURL = DefaultDetailURL
	}
	if c.SiteKey == "" {
		c.SiteKey = DefaultSiteKey
	}
	if c.SourceSystem == "" {
		c.SourceSystem = DefaultSourceSystem
	}
	if c.UserAgent == "" {
		c.UserAgent = UserAgentChrome
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = newFetchClient(c.FetchTimeout)
	}

	if c.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.RequestsPerSecond), 1)
	} else {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	cfg = c
	Cfg = &cfg
}
