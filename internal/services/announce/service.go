// Package announce provides the corporate announcement retrieval service
package announce

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/models"
	"github.com/ksiddharth/scripwatch/internal/scrape"
)

// Service implements AnnounceService across the configured exchange sources.
type Service struct {
	storage    interfaces.StorageManager
	sources    map[string]interfaces.AnnouncementSource
	gemini     interfaces.GeminiClient
	logger     *common.Logger
	scrapeOpts scrape.Options
	httpClient *http.Client
}

// NewService creates a new announcement service.
func NewService(
	storage interfaces.StorageManager,
	sources []interfaces.AnnouncementSource,
	gemini interfaces.GeminiClient,
	logger *common.Logger,
	scrapeOpts scrape.Options,
) *Service {
	byExchange := make(map[string]interfaces.AnnouncementSource, len(sources))
	for _, src := range sources {
		byExchange[src.Exchange()] = src
	}
	scrapeOpts.Logger = logger

	return &Service{
		storage:    storage,
		sources:    byExchange,
		gemini:     gemini,
		logger:     logger,
		scrapeOpts: scrapeOpts,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *Service) source(exchange string) (interfaces.AnnouncementSource, error) {
	src, ok := s.sources[exchange]
	if !ok {
		return nil, fmt.Errorf("unknown exchange: %s", exchange)
	}
	return src, nil
}

// FetchByScrips runs one fetch per instrument over the lookback window and
// concatenates the results in list order.
func (s *Service) FetchByScrips(ctx context.Context, exchange string, scrips []string, daysBack int, progress interfaces.ProgressFunc) (*models.AnnouncementTable, error) {
	src, err := s.source(exchange)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("exchange", exchange).
		Int("scrips", len(scrips)).
		Int("days_back", daysBack).
		Msg("Fetching announcements by scrip")

	table, err := scrape.EntityWise(ctx, src, scrips, scrape.DaysTarget(daysBack), nil, s.scrapeOpts, progress)
	if err != nil {
		return nil, err
	}

	s.saveReport(ctx, &table.Report)
	return table, nil
}

// FetchByDateRange runs one fetch per calendar day in [start, end] and
// concatenates the results chronologically.
func (s *Service) FetchByDateRange(ctx context.Context, exchange string, start, end time.Time, scrip string, progress interfaces.ProgressFunc) (*models.AnnouncementTable, error) {
	src, err := s.source(exchange)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("exchange", exchange).
		Str("start", start.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Str("scrip", scrip).
		Msg("Fetching announcements by date range")

	table, err := scrape.DayWise(ctx, src, start, end, scrip, nil, s.scrapeOpts, progress)
	if err != nil {
		return nil, err
	}

	s.saveReport(ctx, &table.Report)
	return table, nil
}

// FetchSymbol retrieves announcements for a single NSE symbol over the
// lookback window.
func (s *Service) FetchSymbol(ctx context.Context, symbol string, daysBack int, progress interfaces.ProgressFunc) (*models.AnnouncementTable, error) {
	return s.FetchByScrips(ctx, "nse", []string{symbol}, daysBack, progress)
}

// Digest produces an AI summary of a fetched announcement table.
func (s *Service) Digest(ctx context.Context, table *models.AnnouncementTable) (string, error) {
	if s.gemini == nil {
		return "", fmt.Errorf("digest unavailable: no Gemini API key configured")
	}
	if table == nil || len(table.Rows) == 0 {
		return "", fmt.Errorf("digest unavailable: no announcements to summarize")
	}
	return s.gemini.SummarizeAnnouncements(ctx, table)
}

// saveReport persists the run summary. Failures are logged, not fatal: the
// fetched table is still good.
func (s *Service) saveReport(ctx context.Context, report *models.BatchReport) {
	if s.storage == nil {
		return
	}
	if err := s.storage.RunStorage().SaveReport(ctx, report); err != nil {
		s.logger.Warn().Err(err).Str("run_id", report.RunID).Msg("Failed to persist run report")
	}
}

// Ensure Service implements AnnounceService
var _ interfaces.AnnounceService = (*Service)(nil)
