// Package nse provides the NSE India announcement API binding
package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/models"
)

const (
	DefaultBaseURL   = "https://www.nseindia.com/api"
	DefaultSiteURL   = "https://www.nseindia.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second

	announcePath = "/corporate-announcements"

	// Cookies from the session bootstrap are reused until this age.
	sessionTTL = 5 * time.Minute
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client implements the AnnouncementSource interface for NSE India.
// The data endpoint rejects cookieless calls, so the client performs a
// session-establishing GET of the site root before the first data call and
// keeps the cookie jar warm afterwards.
type Client struct {
	baseURL    string
	siteURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter

	mu          sync.Mutex
	sessionTime time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithSiteURL sets the site URL used for session bootstrap and referer headers
func WithSiteURL(siteURL string) ClientOption {
	return func(c *Client) {
		c.siteURL = siteURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new NSE announcement client.
func NewClient(opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: DefaultBaseURL,
		siteURL: DefaultSiteURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Exchange returns the exchange identifier.
func (c *Client) Exchange() string {
	return "nse"
}

// ensureSession acquires site cookies when the jar is cold or stale.
func (c *Client) ensureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.sessionTime) < sessionTTL {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.siteURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create session request: %w", err)
	}
	c.setHeaders(req)

	c.logger.Debug().Msg("NSE session bootstrap")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("session bootstrap failed: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	c.sessionTime = time.Now()
	return nil
}

// buildQuery assembles the announcement query. Dates arrive in 8-digit
// yyyymmdd form and are reissued in the dd-mm-yyyy form this endpoint wants.
func (c *Client) buildQuery(req models.PageRequest) url.Values {
	defaults := [][2]string{
		{"index", "equities"},
		{"from_date", wireDate(req.FromDate)},
		{"to_date", wireDate(req.ToDate)},
		{"symbol", req.Scrip},
	}

	q := url.Values{}
	for _, kv := range defaults {
		if v := req.Override(kv[0], kv[1]); v != "" {
			q.Set(kv[0], v)
		}
	}
	return q
}

// wireDate converts yyyymmdd to dd-mm-yyyy.
func wireDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[6:] + "-" + d[4:6] + "-" + d[:4]
}

// FetchPage performs one attempt against the announcement endpoint. The NSE
// feed is not paginated: a well-formed response is a flat JSON array treated
// as a single page (total pages 1 when rows exist, 0 otherwise).
func (c *Client) FetchPage(ctx context.Context, req models.PageRequest) (*models.PageResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, announcePath, c.buildQuery(req).Encode())

	if err := c.ensureSession(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// A failed bootstrap still lets the data call proceed; the endpoint
		// will answer with a non-2xx the reducer reports as a transport error.
		c.logger.Warn().Err(err).Msg("NSE session bootstrap failed")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Referer", c.siteURL+"/companies-listing/corporate-filings-announcements")
	httpReq.Header.Set("X-Requested-With", "XMLHttpRequest")

	c.logger.Debug().Str("symbol", req.Scrip).Msg("NSE announcement API request")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			c.logger.Warn().Err(err).Dur("elapsed", elapsed).Msg("NSE announcement API timeout")
			return &models.PageResult{
				Status:  models.FetchError,
				Page:    req.Page,
				Message: fmt.Sprintf("request timeout: %v", err),
				URL:     reqURL,
			}, nil
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.PageResult{
			Status:     models.FetchError,
			Page:       req.Page,
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			URL:        reqURL,
			HTTPStatus: resp.StatusCode,
		}, nil
	}

	result := reducePage(req.Page, body, resp.StatusCode, reqURL)

	c.logger.Debug().
		Str("symbol", req.Scrip).
		Int("status", resp.StatusCode).
		Int("rows", len(result.Rows)).
		Dur("elapsed", elapsed).
		Str("result", string(result.Status)).
		Msg("NSE announcement API call")

	return result, nil
}

// reducePage extracts rows from one raw payload. Success requires the body
// to be a JSON array.
func reducePage(page int, body []byte, httpStatus int, reqURL string) *models.PageResult {
	result := &models.PageResult{
		Page:       page,
		URL:        reqURL,
		HTTPStatus: httpStatus,
	}

	var tbl []any
	if err := json.Unmarshal(body, &tbl); err != nil {
		result.Status = models.FetchError
		result.Message = fmt.Sprintf("%d %s: payload not a JSON list: %v", httpStatus, http.StatusText(httpStatus), err)
		return result
	}

	rows := make([]map[string]any, 0, len(tbl))
	malformed := 0
	for _, el := range tbl {
		if m, ok := el.(map[string]any); ok {
			rows = append(rows, m)
		} else {
			malformed++
		}
	}

	result.Rows = rows
	result.TotalRows = len(rows)
	if len(rows) > 0 {
		result.TotalPages = 1
	}

	if malformed > 0 {
		result.Status = models.FetchError
		result.Message = fmt.Sprintf("%d %s: %d malformed rows in payload", httpStatus, http.StatusText(httpStatus), malformed)
		return result
	}

	result.Status = models.FetchSuccess
	result.Message = fmt.Sprintf("%d %s from %s", httpStatus, http.StatusText(httpStatus), reqURL)
	return result
}

// setHeaders applies the browser-imitation header block the endpoint expects.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", userAgent)
}

// FieldMap maps canonical announcement fields to NSE row keys.
func (c *Client) FieldMap() map[string]string {
	return map[string]string{
		"symbol":          "symbol",
		"company_name":    "sm_name",
		"subject":         "desc",
		"details":         "attchmntText",
		"attachment_link": "attchmntFile",
		"broadcast_date":  "an_dt",
	}
}

// DocumentURL passes NSE attachment links through: the feed already carries
// fully-qualified archive URLs.
func (c *Client) DocumentURL(attachment, _ string, _ time.Time) string {
	return attachment
}

// Ensure Client implements AnnouncementSource
var _ interfaces.AnnouncementSource = (*Client)(nil)
