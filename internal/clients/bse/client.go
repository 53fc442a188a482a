// Package bse provides the BSE India announcement API binding
package bse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/models"
)

const (
	DefaultBaseURL   = "https://api.bseindia.com/BseIndiaAPI/api"
	DefaultSiteURL   = "https://www.bseindia.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 3 // requests per second

	announcePath = "/AnnGetData/w"

	// Attachment archive paths. Filings broadcast within the last two days
	// are served from the live path, older ones from the historical archive.
	attachLivePath = "/xml-data/corpfiling/AttachLive/"
	attachHisPath  = "/xml-data/corpfiling/AttachHis/"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Client implements the AnnouncementSource interface for BSE India.
type Client struct {
	baseURL    string
	siteURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithSiteURL sets the public site URL used for origin/referer headers and
// attachment links
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

// NewClient creates a new BSE announcement client.
// No API key is required; this is a public endpoint.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		siteURL: DefaultSiteURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
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
	return "bse"
}

// buildQuery assembles the announcement query for one page attempt. Defaults
// mirror the endpoint's documented parameters; caller overrides win, except
// pageno, which always carries the request's own page counter.
func (c *Client) buildQuery(req models.PageRequest) url.Values {
	defaults := [][2]string{
		{"strCat", "-1"},
		{"strPrevDate", req.FromDate},
		{"strScrip", req.Scrip},
		{"strSearch", "P"},
		{"strToDate", req.ToDate},
		{"strType", "C"},
	}

	q := url.Values{}
	q.Set("pageno", strconv.Itoa(req.Page))
	for _, kv := range defaults {
		q.Set(kv[0], req.Override(kv[0], kv[1]))
	}
	return q
}

// announcePayload is the raw BSE response shape. Table carries the result
// rows, Table1 an exchange-specific summary block.
type announcePayload struct {
	Table  any `json:"Table"`
	Table1 any `json:"Table1"`
}

// FetchPage performs one page attempt against the announcement endpoint.
func (c *Client) FetchPage(ctx context.Context, req models.PageRequest) (*models.PageResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, announcePath, c.buildQuery(req).Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)

	c.logger.Debug().Int("page", req.Page).Str("scrip", req.Scrip).Msg("BSE announcement API request")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			// Timeout with the stack reachable: a transport error, not a fault.
			c.logger.Warn().Err(err).Int("page", req.Page).Dur("elapsed", elapsed).Msg("BSE announcement API timeout")
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
		Int("page", req.Page).
		Int("status", resp.StatusCode).
		Int("rows", len(result.Rows)).
		Int("total_pages", result.TotalPages).
		Dur("elapsed", elapsed).
		Str("result", string(result.Status)).
		Msg("BSE announcement API call")

	return result, nil
}

// reducePage extracts rows and pagination metadata from one raw payload.
// A page is a success only when the Table field is present and list-shaped.
func reducePage(page int, body []byte, httpStatus int, reqURL string) *models.PageResult {
	result := &models.PageResult{
		Page:       page,
		URL:        reqURL,
		HTTPStatus: httpStatus,
	}

	var payload announcePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		result.Status = models.FetchError
		result.Message = fmt.Sprintf("%d %s: payload not JSON: %v", httpStatus, http.StatusText(httpStatus), err)
		return result
	}

	tbl, ok := payload.Table.([]any)
	if !ok {
		result.Status = models.FetchError
		result.Message = fmt.Sprintf("%d %s: expected tabular field missing or not a list", httpStatus, http.StatusText(httpStatus))
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
	result.Meta = payload.Table1
	result.TotalRows = len(rows)
	if len(rows) > 0 {
		result.TotalPages = intField(rows[0], "TotalPageCnt")
	}

	if malformed > 0 {
		// Partial payload: keep what parsed, report the trailing failure.
		result.Status = models.FetchError
		result.Message = fmt.Sprintf("%d %s: %d malformed rows in tabular field", httpStatus, http.StatusText(httpStatus), malformed)
		return result
	}

	result.Status = models.FetchSuccess
	result.Message = fmt.Sprintf("%d %s from %s", httpStatus, http.StatusText(httpStatus), reqURL)
	return result
}

// intField reads a numeric field from a decoded JSON row.
func intField(row map[string]any, key string) int {
	switch v := row[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// setHeaders applies the browser-imitation header block the endpoint expects.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Origin", c.siteURL)
	req.Header.Set("Referer", c.siteURL+"/")
	req.Header.Set("User-Agent", userAgent)
}

// FieldMap maps canonical announcement fields to BSE row keys.
func (c *Client) FieldMap() map[string]string {
	return map[string]string{
		"symbol":          "SCRIP_CD",
		"company_name":    "SLONGNAME",
		"subject":         "HEADLINE",
		"details":         "NEWSSUB",
		"attachment_link": "ATTACHMENTNAME",
		"broadcast_date":  "News_submission_dt",
	}
}

// DocumentURL derives the filing view URL from an attachment filename.
// Filings broadcast within the last two days (inclusive) are still on the
// live path; older ones have moved to the historical archive.
func (c *Client) DocumentURL(attachment, broadcastDate string, now time.Time) string {
	if attachment == "" {
		return ""
	}

	t := now.AddDate(0, 0, -2)
	threshold := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if dt, ok := parseBroadcastDate(broadcastDate); ok {
		day := time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC)
		if !day.Before(threshold) {
			return c.siteURL + attachLivePath + attachment
		}
	}
	return c.siteURL + attachHisPath + attachment
}

// parseBroadcastDate parses the News_submission_dt formats BSE emits.
func parseBroadcastDate(s string) (time.Time, bool) {
	for _, layout := range []string{
		"2006-01-02T15:04:05.99",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if dt, err := time.Parse(layout, s); err == nil {
			return dt, true
		}
	}
	return time.Time{}, false
}

// Ensure Client implements AnnouncementSource
var _ interfaces.AnnouncementSource = (*Client)(nil)
