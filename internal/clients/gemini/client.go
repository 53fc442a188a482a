// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/models"
)

const (
	DefaultModel          = "gemini-3-flash-preview"
	DefaultMaxURLs        = 20
	DefaultMaxContentSize = 34 * 1024 * 1024 // 34MB
)

// Client implements the GeminiClient interface
type Client struct {
	client         *genai.Client
	model          string
	maxURLs        int
	maxContentSize int64
	logger         *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithMaxURLs sets the maximum URLs for URL context
func WithMaxURLs(maxURLs int) ClientOption {
	return func(c *Client) {
		c.maxURLs = maxURLs
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:         genaiClient,
		model:          DefaultModel,
		maxURLs:        DefaultMaxURLs,
		maxContentSize: DefaultMaxContentSize,
		logger:         common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Close closes the client
func (c *Client) Close() error {
	// The genai client doesn't have a Close method
	return nil
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// GenerateWithURLContext generates content using Gemini's URL context tool.
// If urls are provided, they are prepended to the prompt as reference URLs.
func (c *Client) GenerateWithURLContext(ctx context.Context, prompt string, urls ...string) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("urls", len(urls)).Msg("Generating content with URL context")

	if len(urls) > c.maxURLs {
		urls = urls[:c.maxURLs]
	}

	if len(urls) > 0 {
		var sb strings.Builder
		sb.WriteString("Reference URLs:\n")
		for _, u := range urls {
			sb.WriteString("- ")
			sb.WriteString(u)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(prompt)
		prompt = sb.String()
	}

	contents := genai.Text(prompt)
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{URLContext: &genai.URLContext{}}},
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with URL context: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// SummarizeAnnouncements generates a digest of a fetched announcement table.
func (c *Client) SummarizeAnnouncements(ctx context.Context, table *models.AnnouncementTable) (string, error) {
	prompt := buildDigestPrompt(table)
	return c.GenerateContent(ctx, prompt)
}

// buildDigestPrompt creates a prompt summarizing the fetched disclosures.
// Details are truncated so a large run still fits a single request.
func buildDigestPrompt(table *models.AnnouncementTable) string {
	var sb strings.Builder
	sb.WriteString(`Summarize the following corporate announcements for an investor briefing:
1. Group related disclosures by company
2. Call out board meetings, results, dividends, and material events
3. Flag anything unusual or time-sensitive

Announcements:
`)

	for i, a := range table.Rows {
		sb.WriteString(fmt.Sprintf("%d. %s (%s) [%s]: %s", i+1, a.CompanyName, a.Symbol, a.BroadcastDate, a.Subject))
		if a.Details != "" {
			detail := a.Details
			if len(detail) > 300 {
				detail = detail[:300] + "..."
			}
			sb.WriteString(" | ")
			sb.WriteString(detail)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nKeep the briefing concise and factual.")
	return sb.String()
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
