package app

import (
	"context"
	"time"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
)

// startAnnouncementScheduler refreshes the current day's announcements for
// both exchanges on a fixed interval. Each refresh is a normal batch run, so
// its report lands in run storage like any API-triggered fetch.
func startAnnouncementScheduler(ctx context.Context, svc interfaces.AnnounceService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Announcement scheduler: stopped")
			return
		case <-ticker.C:
			refreshAnnouncements(ctx, svc, logger)
		}
	}
}

func refreshAnnouncements(ctx context.Context, svc interfaces.AnnounceService, logger *common.Logger) {
	start := time.Now()
	today := time.Now()

	for _, exchange := range []string{"bse", "nse"} {
		table, err := svc.FetchByDateRange(ctx, exchange, today, today, "", nil)
		if err != nil {
			logger.Warn().Err(err).Str("exchange", exchange).Msg("Announcement refresh failed")
			continue
		}
		logger.Info().
			Str("exchange", exchange).
			Int("rows", len(table.Rows)).
			Int("failures", len(table.Report.Failures)).
			Msg("Announcement refresh complete")
	}

	logger.Debug().Dur("elapsed", time.Since(start)).Msg("Announcement refresh cycle finished")
}
