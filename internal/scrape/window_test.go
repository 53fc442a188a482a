package scrape

import (
	"testing"
	"time"
)

func TestResolveWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		target   Target
		wantFrom string
		wantTo   string
	}{
		{"zero value is today", Target{}, "20260315", "20260315"},
		{"day token", WindowTarget("day"), "20260314", "20260315"},
		{"week token", WindowTarget("week"), "20260308", "20260315"},
		{"month token", WindowTarget("month"), "20260213", "20260315"},
		{"year token", WindowTarget("year"), "20250315", "20260315"},
		{"unknown token falls back to today", WindowTarget("fortnight"), "20260315", "20260315"},
		{"explicit day count", DaysTarget(10), "20260305", "20260315"},
		{"concrete date", DateTarget(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)), "20251201", "20251201"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := ResolveWindow(tt.target, now)
			if from != tt.wantFrom || to != tt.wantTo {
				t.Errorf("ResolveWindow() = (%s, %s), want (%s, %s)", from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}
