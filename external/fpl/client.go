package fpl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/singleflight"

	"github.com/riskibarqy/fpl-stats/internal/platform/logging"
	"github.com/riskibarqy/fpl-stats/internal/platform/resilience"
	"github.com/riskibarqy/fpl-stats/internal/usecase"
)

const (
	DefaultBaseURL      = "https://fantasy.premierleague.com/api"
	defaultTimeout      = 20 * time.Second
	defaultMaxBodyBytes = 16 << 20
	errorBodyPreview    = 256
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	RateLimitRPS   int
	MaxBodyBytes   int64
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the public FPL API. One Client, and so one connection pool,
// is shared by every request of a run; Close releases it.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxBodyBytes int64
	logger       *logging.Logger
	limiter      ratelimit.Limiter
	breaker      *resilience.CircuitBreaker
	flight       singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport.(*http.Transport).Clone()),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	limiter := ratelimit.NewUnlimited()
	if cfg.RateLimitRPS > 0 {
		limiter = ratelimit.New(cfg.RateLimitRPS)
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		maxBodyBytes: maxBody,
		logger:       logger,
		limiter:      limiter,
		breaker:      resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) FetchGeneralInfo(ctx context.Context) (usecase.ExternalGeneralInfo, error) {
	var envelope bootstrapEnvelope
	raw, err := c.fetch(ctx, "/bootstrap-static/", &envelope)
	if err != nil {
		return usecase.ExternalGeneralInfo{}, err
	}
	return mapGeneralInfo(envelope, raw), nil
}

func (c *Client) FetchFixtures(ctx context.Context) (usecase.ExternalFixtureList, error) {
	var items []fixtureItem
	raw, err := c.fetch(ctx, "/fixtures/", &items)
	if err != nil {
		return usecase.ExternalFixtureList{}, err
	}
	return mapFixtureList(items, raw), nil
}

func (c *Client) FetchPlayerDetail(ctx context.Context, playerID int64) (usecase.ExternalPlayerDetail, error) {
	if playerID <= 0 {
		return usecase.ExternalPlayerDetail{}, fmt.Errorf("%w: player id must be greater than zero", usecase.ErrInvalidInput)
	}

	var envelope elementSummaryEnvelope
	raw, err := c.fetch(ctx, fmt.Sprintf("/element-summary/%d/", playerID), &envelope)
	if err != nil {
		return usecase.ExternalPlayerDetail{PlayerExternalID: playerID}, err
	}
	return mapPlayerDetail(playerID, envelope, raw), nil
}

// fetch GETs path, decodes the body into target and returns the body as
// received. Every failure is logged once here and returned as *FetchError.
func (c *Client) fetch(ctx context.Context, path string, target any) ([]byte, error) {
	fullURL := c.baseURL + path

	raw, err := c.fetchRaw(ctx, fullURL)
	if err == nil {
		if decodeErr := sonic.Unmarshal(raw, target); decodeErr != nil {
			err = &FetchError{Kind: KindDecode, URL: fullURL, Err: crerr.Wrap(decodeErr, "decode payload")}
		}
	}
	if err != nil {
		kind, _ := KindOf(err)
		fields := []any{"url", fullURL, "kind", string(kind), "error", err}
		var fetchErr *FetchError
		if crerr.As(err, &fetchErr) && fetchErr.StatusCode > 0 {
			fields = append(fields, "status", fetchErr.StatusCode)
		}
		c.logger.ErrorContext(ctx, "error fetching fpl endpoint", fields...)
		return nil, err
	}
	return raw, nil
}

// fetchRaw coalesces identical in-flight GETs. The breaker is consulted once
// per real request, so coalesced callers share the leader's admission and
// outcome.
func (c *Client) fetchRaw(ctx context.Context, fullURL string) ([]byte, error) {
	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		if err := c.breaker.Allow(); err != nil {
			return nil, &FetchError{
				Kind: KindUnavailable,
				URL:  fullURL,
				Err:  fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err),
			}
		}

		c.limiter.Take()
		raw, reqErr := c.executeRequest(ctx, fullURL)
		c.breaker.Record(reqErr != nil && isCircuitFailure(reqErr))
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, &FetchError{Kind: KindDecode, URL: fullURL, Err: crerr.Newf("unexpected payload type %T", out)}
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, URL: fullURL, Err: crerr.Wrap(err, "build request")}
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, URL: fullURL, Err: crerr.Wrap(err, "send request")}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, c.maxBodyBytes+1)); err != nil {
		return nil, &FetchError{Kind: KindNetwork, URL: fullURL, Err: crerr.Wrap(err, "read response body")}
	}
	oversized := int64(buf.Len()) > c.maxBodyBytes

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			Kind:       KindStatus,
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Err:        crerr.Newf("unexpected status body=%s", abbreviateBody(buf.B)),
		}
	}
	if oversized {
		return nil, &FetchError{
			Kind: KindDecode,
			URL:  fullURL,
			Err:  crerr.Wrapf(ErrBodyTooLarge, "limit %d bytes", c.maxBodyBytes),
		}
	}

	// buf goes back to the pool; callers keep their own copy.
	return append([]byte(nil), buf.B...), nil
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) <= errorBodyPreview {
		return text
	}
	return text[:errorBodyPreview] + "..."
}
