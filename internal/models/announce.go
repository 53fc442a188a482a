// Package models defines the data types shared across Scripwatch.
package models

import "time"

// FetchStatus classifies the terminal state of one logical fetch.
type FetchStatus string

const (
	FetchSuccess FetchStatus = "success"
	FetchError   FetchStatus = "error"
)

// Announcement is the canonical corporate disclosure record. Every field is
// always present; exchanges that omit a value contribute an empty string, so
// consumers never need existence checks.
type Announcement struct {
	Symbol         string `json:"symbol"`
	CompanyName    string `json:"company_name"`
	Subject        string `json:"subject"`
	Details        string `json:"details"`
	AttachmentLink string `json:"attachment_link"`
	BroadcastDate  string `json:"broadcast_date"`
	SearchDate     string `json:"search_date"`
	SearchScrip    string `json:"search_scrip"`
	DocumentURL    string `json:"document_url"`
}

// PageResult is the outcome of a single page attempt. Produced fresh per
// attempt and never mutated afterwards.
type PageResult struct {
	Status     FetchStatus      `json:"status"`
	Rows       []map[string]any `json:"rows"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	TotalRows  int              `json:"total_rows"`
	Meta       any              `json:"meta,omitempty"` // exchange-specific summary block, passed through
	Message    string           `json:"message"`
	URL        string           `json:"url"`
	HTTPStatus int              `json:"http_status"` // 0 when no response was received
}

// FetchOutcome is the terminal result of one logical fetch: all rows
// accumulated across the pages actually visited, plus the attempt ledger.
type FetchOutcome struct {
	Rows       []map[string]any `json:"rows"`
	Meta       any              `json:"meta,omitempty"`
	Status     FetchStatus      `json:"status"`
	Message    string           `json:"message"`
	LastURL    string           `json:"last_url"`
	LastStatus int              `json:"last_status"`
	Depth      int              `json:"depth"`
	MaxDepth   int              `json:"max_depth"`
}

// UnitFailure records one failed unit of a batch (a day or a scrip) without
// aborting the rest of the run.
type UnitFailure struct {
	Unit    string `json:"unit"`
	Message string `json:"message"`
}

// BatchReport summarizes one orchestrator run.
type BatchReport struct {
	RunID      string        `json:"run_id"`
	Exchange   string        `json:"exchange"`
	Mode       string        `json:"mode"` // "entity" or "day"
	Units      int           `json:"units"`
	Rows       int           `json:"rows"`
	Failures   []UnitFailure `json:"failures,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// AnnouncementTable is what the presentation layer receives: the normalized
// rows plus a status line it surfaces verbatim.
type AnnouncementTable struct {
	Rows   []Announcement `json:"rows"`
	Report BatchReport    `json:"report"`
	Notice string         `json:"notice,omitempty"`
}
