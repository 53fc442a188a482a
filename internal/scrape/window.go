// Package scrape implements the announcement retrieval core: window
// resolution, the pagination/retry controller, row normalization, and the
// batch orchestrator. It is exchange-agnostic: endpoint shape lives behind
// interfaces.AnnouncementSource.
package scrape

import "time"

// Target selects the date bounds of one logical fetch. Exactly one of the
// fields is meaningful; the zero value means "today".
type Target struct {
	Window string    // symbolic token: "day", "week", "month", "year"
	Days   int       // positive N: N days before today through today
	Date   time.Time // concrete date: itself for both bounds
}

// WindowTarget returns a Target for a symbolic window token.
func WindowTarget(token string) Target {
	return Target{Window: token}
}

// DaysTarget returns a Target covering the last n days through today.
func DaysTarget(n int) Target {
	return Target{Days: n}
}

// DateTarget returns a Target for a single concrete date.
func DateTarget(d time.Time) Target {
	return Target{Date: d}
}

// windowDays maps symbolic tokens to fixed day counts.
var windowDays = map[string]int{
	"day":   1,
	"week":  7,
	"month": 30,
	"year":  365,
}

// ResolveWindow resolves a Target into concrete from/to bounds, both in the
// fixed 8-digit yyyymmdd form the exchange endpoints take.
func ResolveWindow(target Target, now time.Time) (from, to string) {
	if n, ok := windowDays[target.Window]; ok {
		target = Target{Days: n}
	}

	switch {
	case target.Days > 0:
		return cleanDate(now.AddDate(0, 0, -target.Days)), cleanDate(now)
	case !target.Date.IsZero():
		d := cleanDate(target.Date)
		return d, d
	default:
		d := cleanDate(now)
		return d, d
	}
}

// cleanDate normalizes a date to 8-digit yyyymmdd form.
func cleanDate(t time.Time) string {
	return t.Format("20060102")
}
