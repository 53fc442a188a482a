// Package interfaces defines service contracts for Scripwatch
package interfaces

import (
	"context"
	"time"

	"github.com/ksiddharth/scripwatch/internal/models"
)

// AnnouncementSource is one exchange binding of the announcement retrieval
// protocol. Both bindings (BSE, NSE) expose the same capability so the
// pagination controller and batch orchestrator never depend on endpoint
// shape. Any alternative transport for the same logical operation (for
// example a headless-browser strategy) would sit behind this interface too.
type AnnouncementSource interface {
	// Exchange returns the short exchange identifier ("bse" or "nse").
	Exchange() string

	// FetchPage performs one page attempt. Transport failures that still
	// produced an HTTP response, non-2xx statuses, and malformed bodies are
	// reported inside the PageResult with Status == FetchError. The error
	// return is reserved for the network stack being unreachable, which is
	// fatal for this logical fetch only.
	FetchPage(ctx context.Context, req models.PageRequest) (*models.PageResult, error)

	// FieldMap maps canonical announcement fields to exchange-native row keys.
	FieldMap() map[string]string

	// DocumentURL derives the document-view URL for a normalized row, or ""
	// when the row carries no attachment.
	DocumentURL(attachment, broadcastDate string, now time.Time) string
}

// GeminiClient provides access to the Gemini API
type GeminiClient interface {
	// GenerateContent generates AI content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// SummarizeAnnouncements generates a digest of a fetched announcement table
	SummarizeAnnouncements(ctx context.Context, table *models.AnnouncementTable) (string, error)

	// Close releases client resources
	Close() error
}
