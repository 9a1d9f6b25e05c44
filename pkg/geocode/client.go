// Package geocode 封装 Geoapify 地理编码 REST 接口：带超时、有限次重试与结果缓存
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/metrics"
	"github.com/foodmap/pkg/geo"
	"github.com/foodmap/pkg/utils"
)

const (
	DefaultBaseURL     = "https://api.geoapify.com/v1/geocode/search"
	DefaultTimeout     = 5 * time.Second
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
	DefaultCacheTTL    = 24 * time.Hour
)

var (
	// ErrNotConfigured 未配置 API Key
	ErrNotConfigured = errors.New("geocoding is not configured")
	// ErrNoResults 重试后仍无候选结果
	ErrNoResults = errors.New("no geocoding results")
	// ErrInvalidKey API Key 被上游拒绝（401/403）
	ErrInvalidKey = errors.New("geocoding api key is invalid or expired")
)

// UpstreamError 上游请求失败（网络错误或非 2xx 状态）
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("geocoding upstream returned HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("geocoding upstream failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Candidate 一条地理编码候选结果
type Candidate struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Confidence float64 `json:"confidence"`
	Formatted  string  `json:"formatted"`
	ResultType string  `json:"resultType,omitempty"`
}

// Point 转换为 geo.Point
func (c Candidate) Point() geo.Point {
	return geo.Point{Lat: c.Lat, Lng: c.Lon}
}

// searchResponse 只解析需要的字段
type searchResponse struct {
	Features []struct {
		Properties struct {
			Lat        float64 `json:"lat"`
			Lon        float64 `json:"lon"`
			Formatted  string  `json:"formatted"`
			ResultType string  `json:"result_type"`
			Rank       *struct {
				Confidence float64 `json:"confidence"`
			} `json:"rank"`
		} `json:"properties"`
	} `json:"features"`
}

// Options 客户端参数，零值字段使用默认值
type Options struct {
	APIKey      string
	BaseURL     string
	HTTPClient  *http.Client
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	Cache       Cache
	CacheTTL    time.Duration
}

// Client Geoapify 客户端，可并发使用
type Client struct {
	apiKey      string
	baseURL     string
	http        *http.Client
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	cache       Cache
	cacheTTL    time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// New 创建客户端
func New(opts Options) *Client {
	c := &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     opts.BaseURL,
		http:        opts.HTTPClient,
		timeout:     opts.Timeout,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		sleep:       sleepContext,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.retryDelay < 0 {
		c.retryDelay = 0
	} else if c.retryDelay == 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = DefaultCacheTTL
	}
	return c
}

// Configured 是否配置了 API Key
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Search 按自由文本（通常是地址）查询，返回第一条候选
func (c *Client) Search(ctx context.Context, text string) (*Candidate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoResults
	}
	q := url.Values{}
	q.Set("text", text)
	return c.lookup(ctx, "text:"+strings.ToLower(text), q)
}

// Postcode 按美国 5 位邮编查询中心点
func (c *Client) Postcode(ctx context.Context, zip string) (*Candidate, error) {
	zip = strings.TrimSpace(zip)
	if err := utils.ValidateZipCode(zip); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("postcode", zip)
	q.Set("country", "US")
	return c.lookup(ctx, "zip:"+zip, q)
}

// ValidateKey 用一次简单查询验证 API Key，401/403 返回 ErrInvalidKey
func (c *Client) ValidateKey(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	q := url.Values{}
	q.Set("text", "Dallas")
	_, status, err := c.do(ctx, q)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrInvalidKey
	case err != nil && !errors.Is(err, ErrNoResults):
		return err
	}
	return nil
}

func (c *Client) lookup(ctx context.Context, cacheKey string, q url.Values) (*Candidate, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if c.cache != nil {
		if cand, ok := c.cache.Get(ctx, cacheKey); ok {
			metrics.GeocodeCacheHitsTotal.Inc()
			return &cand, nil
		}
		metrics.GeocodeCacheMissesTotal.Inc()
	}

	cand, err := c.withRetry(ctx, q)
	if err != nil {
		metrics.GeocodeFailTotal.Inc()
		return nil, err
	}
	metrics.GeocodeSuccessTotal.Inc()
	if c.cache != nil {
		c.cache.Set(ctx, cacheKey, *cand, c.cacheTTL)
	}
	return cand, nil
}

// withRetry 429 时等待 retryDelay*attempt，5xx、网络错误与空结果等待 retryDelay；
// 其他 4xx 不重试
func (c *Client) withRetry(ctx context.Context, q url.Values) (*Candidate, error) {
	l := logger.L()
	var lastErr error = ErrNoResults
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		cand, status, err := c.do(ctx, q)
		if err == nil {
			return cand, nil
		}
		lastErr = err

		delay := c.retryDelay
		switch {
		case status == http.StatusTooManyRequests:
			delay = c.retryDelay * time.Duration(attempt)
			l.Warn("geocode_rate_limited", "attempt", attempt, "wait_ms", delay.Milliseconds())
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		case status >= 400 && status < 500:
			return nil, err
		case errors.Is(err, ErrNoResults):
			l.Warn("geocode_no_results", "attempt", attempt, "max_attempts", c.maxAttempts)
		default:
			l.Warn("geocode_attempt_failed", "attempt", attempt, "max_attempts", c.maxAttempts, "err", err)
		}

		if ctx.Err() != nil {
			return nil, &UpstreamError{Err: ctx.Err()}
		}
		if attempt < c.maxAttempts {
			if err := c.sleep(ctx, delay); err != nil {
				return nil, &UpstreamError{Err: err}
			}
		}
	}
	return nil, lastErr
}

// do 执行一次请求，返回候选、HTTP 状态码（网络错误时为 0）与错误
func (c *Client) do(ctx context.Context, q url.Values) (*Candidate, int, error) {
	q.Set("apiKey", c.apiKey)
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, stripURL(err)
	}
	t0 := time.Now()
	metrics.GeocodeRequestsTotal.Inc()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &UpstreamError{Err: stripURL(err)}
	}
	defer resp.Body.Close()
	metrics.GeocodeDurationMs.Observe(float64(time.Since(t0).Milliseconds()))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &UpstreamError{StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	var r searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, resp.StatusCode, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(r.Features) == 0 {
		return nil, resp.StatusCode, ErrNoResults
	}
	p := r.Features[0].Properties
	cand := &Candidate{Lat: p.Lat, Lon: p.Lon, Formatted: p.Formatted, ResultType: p.ResultType}
	if p.Rank != nil {
		cand.Confidence = p.Rank.Confidence
	}
	logger.L().Debug("geocode_resp", "lat", cand.Lat, "lon", cand.Lon, "confidence", cand.Confidence, "duration_ms", time.Since(t0).Milliseconds())
	return cand, resp.StatusCode, nil
}

// stripURL 去掉 *url.Error 中带 apiKey 的完整地址，只保留操作与底层错误
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request: %w", uerr.Op, uerr.Err)
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
