package scrape

import (
	"strconv"
	"strings"
	"time"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/models"
)

// Normalize maps raw exchange rows into canonical announcements using the
// source's field map. Every canonical field is always present; fields the
// raw row lacks come out as empty strings.
func Normalize(src interfaces.AnnouncementSource, rows []map[string]any, searchDate, searchScrip string) []models.Announcement {
	fm := src.FieldMap()

	out := make([]models.Announcement, 0, len(rows))
	for _, row := range rows {
		a := models.Announcement{
			Symbol:         stringField(row, fm["symbol"]),
			CompanyName:    stringField(row, fm["company_name"]),
			Subject:        stringField(row, fm["subject"]),
			Details:        stringField(row, fm["details"]),
			AttachmentLink: stringField(row, fm["attachment_link"]),
			BroadcastDate:  stringField(row, fm["broadcast_date"]),
			SearchDate:     searchDate,
			SearchScrip:    searchScrip,
		}
		out = append(out, a)
	}
	return out
}

// AttachDocumentURLs fills the resolvable document URL for each announcement
// from its attachment and broadcast date. Rows without an attachment keep an
// empty URL.
func AttachDocumentURLs(src interfaces.AnnouncementSource, anns []models.Announcement, now time.Time) {
	for i := range anns {
		anns[i].DocumentURL = src.DocumentURL(anns[i].AttachmentLink, anns[i].BroadcastDate, now)
	}
}

// FilterBySymbol keeps only announcements whose symbol matches the wanted
// value, compared case-insensitively after trimming. An empty filter keeps
// everything. A filter that matches nothing is reported so callers can see
// the mismatch rather than a silent empty table.
func FilterBySymbol(anns []models.Announcement, symbol string, logger *common.Logger) []models.Announcement {
	want := strings.TrimSpace(symbol)
	if want == "" {
		return anns
	}

	kept := anns[:0:0]
	for _, a := range anns {
		if strings.EqualFold(strings.TrimSpace(a.Symbol), want) {
			kept = append(kept, a)
		}
	}

	if len(kept) == 0 && len(anns) > 0 && logger != nil {
		logger.Warn().
			Str("symbol", want).
			Int("rows", len(anns)).
			Msg("Symbol filter matched no rows")
	}
	return kept
}

// stringField reads a raw value by key and renders it as a string. Exchange
// payloads carry scrip codes as JSON numbers, which decode as float64; those
// print without a fractional part when integral.
func stringField(row map[string]any, key string) string {
	if key == "" {
		return ""
	}
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
