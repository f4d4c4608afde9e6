package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/docs-qa/internal/core/domain"
	"github.com/kirillkom/docs-qa/internal/infrastructure/resilience"
)

const defaultUserAgent = "docs-qa-crawler/1.0"

// HTTPFetcher retrieves documentation pages over HTTP with a shared rate
// limit, so batch crawls stay polite toward the documentation host.
type HTTPFetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	userAgent  string
	maxBody    int64
}

type Options struct {
	// RequestTimeout bounds a single page download. Defaults to 30s.
	RequestTimeout time.Duration
	// RequestsPerSecond throttles outbound requests. Zero disables throttling.
	RequestsPerSecond float64
	// Burst allows short request bursts above the sustained rate.
	Burst int
	// MaxBodyBytes caps how much markup is read per page. Defaults to 8 MiB.
	MaxBodyBytes       int64
	UserAgent          string
	ResilienceExecutor *resilience.Executor
}

func New(options Options) *HTTPFetcher {
	timeout := options.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBody := options.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 8 << 20
	}
	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	var limiter *rate.Limiter
	if options.RequestsPerSecond > 0 {
		burst := options.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)
	}

	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		executor:   options.ResilienceExecutor,
		userAgent:  userAgent,
		maxBody:    maxBody,
	}
}

// Fetch downloads one page and returns its raw markup. Non-2xx responses and
// transport failures come back as typed fetch errors so ingestion can record
// the page as failed without aborting the batch.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "fetch page", errors.New("empty url"))
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", domain.WrapError(domain.ErrFetch, "fetch page", err)
		}
	}

	var raw string
	do := func(ctx context.Context) error {
		body, err := f.download(ctx, url)
		if err != nil {
			return err
		}
		raw = body
		return nil
	}

	var err error
	if f.executor != nil {
		err = f.executor.Execute(ctx, "page_fetch", do, classifyFetchError)
	} else {
		err = do(ctx)
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrFetch, "fetch page", err)
	}
	return raw, nil
}

func (f *HTTPFetcher) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little for connection reuse, then report the status.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return "", &HTTPStatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	return string(body), nil
}

type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetch %s status: %s", e.URL, e.Status)
}

func classifyFetchError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			// 404s and friends are page-level facts, not service failures.
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
