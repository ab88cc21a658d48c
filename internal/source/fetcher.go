package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/celestial/internal/util"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no candidate path exists on the storage host
	ErrNotFound = errors.New("not found on storage host")

	// ErrDisallowed is returned when robots.txt forbids a path
	ErrDisallowed = errors.New("disallowed by robots.txt")

	// ErrTooLarge is returned when a response body exceeds MaxBytes
	ErrTooLarge = errors.New("response body too large")
)

// Waiter throttles requests per host
type Waiter interface {
	WaitURL(ctx context.Context, rawURL string) error
}

// Options configures a Fetcher
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	UserAgent     string
	MaxBytes      int64
	RespectRobots bool
	HTTPProxy     string
	HTTPSProxy    string
	NoProxy       string
	Limiter       Waiter // optional
}

// Fetcher retrieves published batch files from the static storage host
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    Waiter
	robots     *util.RobotsChecker
	logger     *zap.Logger
}

// NewFetcher creates a Fetcher for opts
func NewFetcher(opts Options, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 2_000_000
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	f := &Fetcher{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: client,
		userAgent:  opts.UserAgent,
		maxBytes:   opts.MaxBytes,
		limiter:    opts.Limiter,
		logger:     logger,
	}
	if opts.RespectRobots {
		f.robots = util.NewRobotsChecker(client, opts.UserAgent)
	}
	return f
}

// BaseURL returns the storage root the fetcher reads from
func (f *Fetcher) BaseURL() string {
	return f.baseURL
}

// FetchResult is a successful GET of one storage path
type FetchResult struct {
	Body         string
	URL          string
	StatusCode   int
	ContentType  string
	LastModified string
	ETag         string
}

// statusError carries a non-2xx response status
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.code, e.status)
}

func (e *statusError) Is(target error) bool {
	return target == ErrNotFound && (e.code == http.StatusNotFound || e.code == http.StatusGone)
}

// fetchSleepFunc is replaced in tests
var fetchSleepFunc = time.Sleep

const (
	maxFetchAttempts = 3
	fetchBackoff     = 500 * time.Millisecond
)

// FetchWithRetry calls Fetch, retrying transient failures (network errors,
// 429 and 5xx) with linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt < maxFetchAttempts {
			f.logger.Debug("retrying fetch",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Error(err))
			fetchSleepFunc(time.Duration(attempt) * fetchBackoff)
		}
	}
	return nil, lastErr
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrDisallowed) || errors.Is(err, ErrTooLarge) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return true
}

// Fetch performs one GET of rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	resp, err := f.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", rawURL, ErrTooLarge, f.maxBytes)
	}

	return &FetchResult{
		Body:         string(body),
		URL:          resp.Request.URL.String(),
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
	}, nil
}

// Exists reports whether a HEAD of rawURL succeeds
func (f *Fetcher) Exists(ctx context.Context, rawURL string) (bool, error) {
	resp, err := f.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return false, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

func (f *Fetcher) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	if f.robots != nil {
		allowed, _, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, withCacheBuster(rawURL), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/plain, application/json;q=0.9, */*;q=0.5")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return resp, nil
}

// withCacheBuster appends a timestamp query so CDN copies of a batch that
// was republished during the day are bypassed
func withCacheBuster(rawURL string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "t=" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
