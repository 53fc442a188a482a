package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ksiddharth/scripwatch/internal/models"
)

const dateLayout = "20060102"

// routeAnnouncements dispatches /api/announcements/{exchange} and
// /api/announcements/{exchange}/digest.
func (s *Server) routeAnnouncements(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/digest") {
		s.handleAnnouncementDigest(w, r)
		return
	}
	s.handleAnnouncementFetch(w, r)
}

// handleAnnouncementFetch handles GET /api/announcements/{exchange}.
//
// Two request shapes:
//   - scrips=500325,532540&days=7   one fetch per scrip over the lookback
//   - from=20260310&to=20260315&scrip=TCS   one fetch per calendar day
//
// format=csv streams the table as CSV instead of JSON.
func (s *Server) handleAnnouncementFetch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	exchange := PathParam(r, "/api/announcements/", "")
	if exchange == "" {
		WriteError(w, http.StatusBadRequest, "Exchange is required")
		return
	}

	q := r.URL.Query()

	table, err := s.fetchAnnouncements(r, exchange)
	if err != nil {
		status := http.StatusBadGateway
		if strings.Contains(err.Error(), "unknown exchange") || strings.Contains(err.Error(), "invalid") {
			status = http.StatusBadRequest
		}
		WriteError(w, status, err.Error())
		return
	}

	if q.Get("format") == "csv" {
		writeAnnouncementCSV(w, table)
		return
	}
	WriteJSON(w, http.StatusOK, table)
}

// fetchAnnouncements runs the fetch described by the request's query.
func (s *Server) fetchAnnouncements(r *http.Request, exchange string) (*models.AnnouncementTable, error) {
	q := r.URL.Query()

	if from := q.Get("from"); from != "" {
		start, err := time.Parse(dateLayout, from)
		if err != nil {
			return nil, errInvalidParam("from", from)
		}
		end := start
		if to := q.Get("to"); to != "" {
			end, err = time.Parse(dateLayout, to)
			if err != nil {
				return nil, errInvalidParam("to", to)
			}
		}
		return s.app.AnnounceService.FetchByDateRange(r.Context(), exchange, start, end, q.Get("scrip"), nil)
	}

	var scrips []string
	for _, sc := range strings.Split(q.Get("scrips"), ",") {
		if sc = strings.TrimSpace(sc); sc != "" {
			scrips = append(scrips, sc)
		}
	}
	if len(scrips) == 0 {
		// No scrips means one unscoped fetch over the window.
		scrips = []string{""}
	}

	days := 7
	if d := q.Get("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			return nil, errInvalidParam("days", d)
		}
		days = n
	}

	return s.app.AnnounceService.FetchByScrips(r.Context(), exchange, scrips, days, nil)
}

type invalidParamError struct{ param, value string }

func (e invalidParamError) Error() string {
	return "invalid value for '" + e.param + "': " + e.value
}

func errInvalidParam(param, value string) error {
	return invalidParamError{param: param, value: value}
}

// handleAnnouncementDigest handles POST /api/announcements/{exchange}/digest:
// it runs the described fetch, then returns an AI summary of the result.
func (s *Server) handleAnnouncementDigest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	exchange := PathParam(r, "/api/announcements/", "/digest")
	if exchange == "" {
		WriteError(w, http.StatusBadRequest, "Exchange is required")
		return
	}

	table, err := s.fetchAnnouncements(r, exchange)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	digest, err := s.app.AnnounceService.Digest(r.Context(), table)
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"digest": digest,
		"report": table.Report,
	})
}

// handleAttachmentText handles GET /api/announcements/attachment?url=...
func (s *Server) handleAttachmentText(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	docURL := r.URL.Query().Get("url")
	if docURL == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter 'url' is required")
		return
	}

	maxChars := 0
	if mc := r.URL.Query().Get("max_chars"); mc != "" {
		if n, err := strconv.Atoi(mc); err == nil && n > 0 {
			maxChars = n
		}
	}

	text, err := s.app.AnnounceService.AttachmentText(r.Context(), docURL, maxChars)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"url":   docURL,
		"chars": len(text),
		"text":  text,
	})
}
