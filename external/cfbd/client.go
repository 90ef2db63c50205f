package cfbd

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cfb-predictor/internal/domain/source"
	"github.com/riskibarqy/cfb-predictor/internal/platform/cache"
	"github.com/riskibarqy/cfb-predictor/internal/platform/logging"
	"github.com/riskibarqy/cfb-predictor/internal/platform/resilience"
	"github.com/riskibarqy/cfb-predictor/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL      = "https://api.collegefootballdata.com"
	maxResponseBytes    = 32 << 20
	defaultRetryBackoff = time.Second
)

var (
	errTransient  = crerr.New("cfbd transient failure")
	errConnection = crerr.New("cfbd connection failure")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// Cache keeps successful response bodies; nil disables caching.
	Cache *cache.Store
}

// Client fetches raw endpoint records from the college football data API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker[[]byte]
	cache        *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      resilience.NewCircuitBreaker[[]byte]("cfbd", cfg.CircuitBreaker, isTransient, logger),
		cache:        cfg.Cache,
	}
}

// Fetch returns the records of one endpoint unit. Provider-side failures
// come back as plain errors; an open breaker, a refused connection or a
// rejected API key wrap usecase.ErrDependencyUnavailable.
func (c *Client) Fetch(ctx context.Context, endpoint source.Endpoint, year int, filters map[string]string) ([]json.RawMessage, error) {
	values := url.Values{}
	values.Set("year", strconv.Itoa(year))
	for key, value := range filters {
		values.Set(key, value)
	}
	fullURL := c.baseURL + endpoint.Path + "?" + values.Encode()

	raw, err := c.cache.GetOrLoad(ctx, endpoint.Path+"?"+values.Encode(), func(ctx context.Context) ([]byte, error) {
		return c.breaker.Execute(func() ([]byte, error) {
			return c.executeRequest(ctx, fullURL)
		})
	})
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case resilience.IsOpen(err):
			c.logger.WarnContext(ctx, "cfbd circuit breaker rejected request", "state", c.breaker.State(), "path", endpoint.Path)
			return nil, fmt.Errorf("%w: sports data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		case crerr.Is(err, errConnection):
			return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return nil, err
	}

	var items []json.RawMessage
	if err := sonic.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s year=%d: %w", endpoint.Path, year, err)
	}
	return items, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Mark(crerr.Wrap(err, "send request"), errTransient)
			if isConnectionError(err) {
				lastErr = crerr.Mark(lastErr, errConnection)
			}
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Mark(crerr.Wrap(readErr, "read response body"), errTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				return nil, fmt.Errorf("%w: provider rejected api key status=%d", usecase.ErrDependencyUnavailable, resp.StatusCode)
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Mark(crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), errTransient)
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "cfbd request failed", "url", fullURL, "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

func isTransient(err error) bool {
	return crerr.Is(err, errTransient)
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	if stderrors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return stderrors.As(err, &dnsErr)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func abbreviateBody(body []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
