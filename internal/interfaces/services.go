package interfaces

import (
	"context"
	"io"
	"time"

	"github.com/ksiddharth/scripwatch/internal/models"
)

// ProgressFunc reports batch progress after each completed unit.
type ProgressFunc func(done, total int, unit string)

// AnnounceService retrieves and normalizes corporate announcements.
type AnnounceService interface {
	// FetchByScrips runs one fetch per instrument identifier over a fixed
	// lookback window and concatenates the results in list order.
	FetchByScrips(ctx context.Context, exchange string, scrips []string, daysBack int, progress ProgressFunc) (*models.AnnouncementTable, error)

	// FetchByDateRange runs one fetch per calendar day in [start, end],
	// optionally filtered to a single instrument, concatenated chronologically.
	FetchByDateRange(ctx context.Context, exchange string, start, end time.Time, scrip string, progress ProgressFunc) (*models.AnnouncementTable, error)

	// FetchSymbol retrieves announcements for one NSE symbol over the
	// lookback window.
	FetchSymbol(ctx context.Context, symbol string, daysBack int, progress ProgressFunc) (*models.AnnouncementTable, error)

	// AttachmentText downloads an announcement attachment and extracts its
	// text content (PDF only).
	AttachmentText(ctx context.Context, documentURL string, maxChars int) (string, error)

	// Digest produces an AI summary of a fetched announcement table.
	Digest(ctx context.Context, table *models.AnnouncementTable) (string, error)
}

// BhavService computes comparative analytics over bhavcopy snapshots.
type BhavService interface {
	// ParseEquityCSV reads an equity bhavcopy, keeping EQ and BE series rows.
	ParseEquityCSV(r io.Reader) ([]models.EquityBar, error)

	// ParseDerivativesZip reads a zipped derivatives bhavcopy.
	ParseDerivativesZip(r io.ReaderAt, size int64) ([]models.DerivativeBar, error)

	// ComparePrices computes close-price percentage change between two
	// snapshots, sorted descending by change.
	ComparePrices(first, second []models.EquityBar) []models.PriceChange

	// OptionChain merges CE and PE legs by strike for one ticker and expiry.
	OptionChain(bars []models.DerivativeBar, ticker, expiry string) []models.OptionStrikeRow

	// OpenInterestShifts ranks contracts by absolute open-interest change.
	OpenInterestShifts(bars []models.DerivativeBar, top int) []models.DerivativeBar

	// PutCallRatios computes put/call open-interest ratios per ticker+expiry.
	PutCallRatios(bars []models.DerivativeBar) []models.PutCallRatio
}
