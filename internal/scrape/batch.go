package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/models"
)

// EntityWise fetches the same date window once per scrip and concatenates the
// normalized results in the order the scrips were given. A unit that fails,
// whether by unreachable transport or by an error-status outcome, is recorded
// in the report and the run moves on to the next scrip.
func EntityWise(ctx context.Context, src interfaces.AnnouncementSource, scrips []string, target Target, params map[string]string, opts Options, progress interfaces.ProgressFunc) (*models.AnnouncementTable, error) {
	opts = opts.withDefaults()

	table := &models.AnnouncementTable{
		Rows: []models.Announcement{},
		Report: models.BatchReport{
			RunID:     uuid.New().String(),
			Exchange:  src.Exchange(),
			Mode:      "entity",
			Units:     len(scrips),
			StartedAt: opts.Now(),
		},
	}

	from, to := ResolveWindow(target, opts.Now())

	for i, scrip := range scrips {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome, err := Collect(ctx, src, target, scrip, params, opts)
		if err != nil {
			recordFailure(table, scrip, err.Error(), opts)
		} else if outcome.Status == models.FetchError {
			recordFailure(table, scrip, outcome.Message, opts)
		} else {
			anns := Normalize(src, outcome.Rows, fmt.Sprintf("%s..%s", from, to), scrip)
			anns = FilterBySymbol(anns, filterSymbol(src, scrip), opts.Logger)
			table.Rows = append(table.Rows, anns...)
		}

		if progress != nil {
			progress(i+1, len(scrips), scrip)
		}
	}

	finishTable(src, table, opts)
	return table, nil
}

// DayWise fetches one calendar day at a time across the inclusive [start,end]
// range, oldest first, and concatenates the normalized results. Failed days
// are recorded and skipped.
func DayWise(ctx context.Context, src interfaces.AnnouncementSource, start, end time.Time, scrip string, params map[string]string, opts Options, progress interfaces.ProgressFunc) (*models.AnnouncementTable, error) {
	opts = opts.withDefaults()

	days := enumerateDays(start, end)

	table := &models.AnnouncementTable{
		Rows: []models.Announcement{},
		Report: models.BatchReport{
			RunID:     uuid.New().String(),
			Exchange:  src.Exchange(),
			Mode:      "day",
			Units:     len(days),
			StartedAt: opts.Now(),
		},
	}

	for i, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		unit := day.Format("20060102")

		outcome, err := Collect(ctx, src, DateTarget(day), scrip, params, opts)
		if err != nil {
			recordFailure(table, unit, err.Error(), opts)
		} else if outcome.Status == models.FetchError {
			recordFailure(table, unit, outcome.Message, opts)
		} else {
			anns := Normalize(src, outcome.Rows, unit, scrip)
			anns = FilterBySymbol(anns, filterSymbol(src, scrip), opts.Logger)
			table.Rows = append(table.Rows, anns...)
		}

		if progress != nil {
			progress(i+1, len(days), unit)
		}
	}

	finishTable(src, table, opts)
	return table, nil
}

// filterSymbol decides the post-fetch symbol filter. BSE queries by numeric
// scrip code, so its rows are already scoped server-side; NSE's symbol
// parameter is advisory and the rows need a client-side pass.
func filterSymbol(src interfaces.AnnouncementSource, scrip string) string {
	if src.Exchange() == "bse" {
		return ""
	}
	return scrip
}

func recordFailure(table *models.AnnouncementTable, unit, message string, opts Options) {
	opts.Logger.Warn().
		Str("exchange", table.Report.Exchange).
		Str("unit", unit).
		Str("detail", message).
		Msg("Batch unit failed")
	table.Report.Failures = append(table.Report.Failures, models.UnitFailure{
		Unit:    unit,
		Message: message,
	})
}

func finishTable(src interfaces.AnnouncementSource, table *models.AnnouncementTable, opts Options) {
	now := opts.Now()
	AttachDocumentURLs(src, table.Rows, now)
	table.Report.Rows = len(table.Rows)
	table.Report.FinishedAt = now
	if len(table.Rows) == 0 {
		table.Notice = "No announcements found for the requested window."
	}
}

// enumerateDays lists calendar days from start through end inclusive.
// A reversed range yields just the start day.
func enumerateDays(start, end time.Time) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)

	days := []time.Time{start}
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
