package engine

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const maxBodyBytes = 16 << 20

// newFetchClient creates an HTTP client for the JSON APIs.
func newFetchClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// GetJSON issues one GET and decodes the body as a JSON object.
// Numbers are kept as json.Number so ids keep integer precision.
func GetJSON(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	body, err := GetRaw(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	out, err := DecodeObject(body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	return out, nil
}

// GetRaw issues one GET and returns the body of a 200 response.
func GetRaw(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	body, err := fetchWithRetry(ctx, reqURL)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	return body, nil
}

// DecodeObject decodes a JSON object, keeping numbers as json.Number.
func DecodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if out == nil {
		return nil, errors.New("decode json: not an object")
	}
	return out, nil
}

// fetchWithRetry performs a paced GET. Retryable statuses are retried with
// exponential backoff up to cfg.FetchRetries extra times; everything else is
// permanent.
func fetchWithRetry(ctx context.Context, fetchURL string) ([]byte, error) {
	operation := func() ([]byte, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		metrics.FetchRequests.Add(1)

		body, status, err := doGet(ctx, fetchURL)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if isRetryableStatus(status) {
			slog.Debug("fetch: retryable status", slog.String("url", fetchURL), slog.Int("status", status))
			return nil, &httpStatusError{StatusCode: status}
		}
		if status != http.StatusOK {
			return nil, backoff.Permanent(&httpStatusError{StatusCode: status})
		}
		return body, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	tries := uint(max(cfg.FetchRetries, 0)) + 1
	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(tries), backoff.WithMaxElapsedTime(2*time.Minute))
}

// doGet sends the request through the browser transport when configured,
// otherwise through the plain HTTP client.
func doGet(ctx context.Context, fetchURL string) ([]byte, int, error) {
	headers := jsonHeaders()
	if cfg.BrowserClient != nil {
		return cfg.BrowserClient.Do(ctx, http.MethodGet, fetchURL, headers, nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func jsonHeaders() map[string]string {
	ua := cfg.UserAgent
	if ua == "" {
		ua = UserAgentChrome
	}
	return map[string]string{
		"accept":          "application/json, text/plain, */*",
		"accept-language": "en-AU,en;q=0.9",
		"user-agent":      ua,
	}
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(io.LimitReader(gz, maxBodyBytes))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
