package server

import (
	"encoding/csv"
	"net/http"

	"github.com/ksiddharth/scripwatch/internal/models"
)

var announcementCSVHeader = []string{
	"symbol", "company_name", "subject", "details",
	"attachment_link", "broadcast_date", "search_date", "search_scrip", "document_url",
}

// writeAnnouncementCSV streams an announcement table as a CSV download.
func writeAnnouncementCSV(w http.ResponseWriter, table *models.AnnouncementTable) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="announcements_`+table.Report.RunID+`.csv"`)

	cw := csv.NewWriter(w)
	cw.Write(announcementCSVHeader)
	for _, a := range table.Rows {
		cw.Write([]string{
			a.Symbol, a.CompanyName, a.Subject, a.Details,
			a.AttachmentLink, a.BroadcastDate, a.SearchDate, a.SearchScrip, a.DocumentURL,
		})
	}
	cw.Flush()
}
