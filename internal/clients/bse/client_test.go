package bse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ksiddharth/scripwatch/internal/models"
)

func newTestClient(srvURL string) *Client {
	return NewClient(
		WithBaseURL(srvURL),
		WithRateLimit(1000),
	)
}

func TestFetchPage(t *testing.T) {
	var gotQuery map[string]string
	var gotUA string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gotUA = r.Header.Get("User-Agent")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Table": [
				{"SCRIP_CD": 500325, "SLONGNAME": "Reliance Industries Ltd", "HEADLINE": "Board Meeting", "TotalPageCnt": 4},
				{"SCRIP_CD": 500325, "SLONGNAME": "Reliance Industries Ltd", "HEADLINE": "Outcome", "TotalPageCnt": 4}
			],
			"Table1": [{"ROWCNT": 76}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.FetchPage(context.Background(), models.PageRequest{
		FromDate: "20260301",
		ToDate:   "20260315",
		Scrip:    "500325",
		Page:     2,
	})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	if result.Status != models.FetchSuccess {
		t.Errorf("Status = %s, want success", result.Status)
	}
	if len(result.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(result.Rows))
	}
	if result.TotalPages != 4 {
		t.Errorf("TotalPages = %d, want 4", result.TotalPages)
	}
	if result.HTTPStatus != 200 {
		t.Errorf("HTTPStatus = %d", result.HTTPStatus)
	}
	if result.Meta == nil {
		t.Error("summary block must pass through")
	}

	wantQuery := map[string]string{
		"pageno":      "2",
		"strCat":      "-1",
		"strPrevDate": "20260301",
		"strScrip":    "500325",
		"strSearch":   "P",
		"strToDate":   "20260315",
		"strType":     "C",
	}
	for k, v := range wantQuery {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
	if gotUA == "" || gotUA == "Go-http-client/1.1" {
		t.Errorf("User-Agent = %q, want browser imitation", gotUA)
	}
}

func TestFetchPageOverridesWin(t *testing.T) {
	var gotCat, gotPage string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCat = r.URL.Query().Get("strCat")
		gotPage = r.URL.Query().Get("pageno")
		w.Write([]byte(`{"Table": [], "Table1": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchPage(context.Background(), models.PageRequest{
		Page:      1,
		Overrides: map[string]string{"strCat": "Board Meeting", "pageno": "7"},
	})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if gotCat != "Board Meeting" {
		t.Errorf("strCat = %q, override must win", gotCat)
	}
	if gotPage != "1" {
		t.Errorf("pageno = %q, the request's own page must win", gotPage)
	}
}

func TestFetchPageNon200WithValidTableIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"Table": [{"HEADLINE": "still here", "TotalPageCnt": 1}], "Table1": null}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.FetchPage(context.Background(), models.PageRequest{Page: 1})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if result.Status != models.FetchSuccess {
		t.Errorf("Status = %s; a list-shaped payload is a success regardless of HTTP status", result.Status)
	}
	if result.HTTPStatus != 503 {
		t.Errorf("HTTPStatus = %d", result.HTTPStatus)
	}
}

func TestFetchPageTableNotAList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Table": "no data", "Table1": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.FetchPage(context.Background(), models.PageRequest{Page: 1})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if result.Status != models.FetchError {
		t.Errorf("Status = %s, want error", result.Status)
	}
	if len(result.Rows) != 0 {
		t.Errorf("got %d rows", len(result.Rows))
	}
}

func TestFetchPageNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>502 Bad Gateway</html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.FetchPage(context.Background(), models.PageRequest{Page: 1})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if result.Status != models.FetchError {
		t.Errorf("Status = %s, want error", result.Status)
	}
	if result.HTTPStatus != 502 {
		t.Errorf("HTTPStatus = %d", result.HTTPStatus)
	}
}

func TestFetchPagePartialPayloadKeepsParsedRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"Table": [{"HEADLINE": "ok", "TotalPageCnt": 3}, "truncated"], "Table1": null}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.FetchPage(context.Background(), models.PageRequest{Page: 1})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if result.Status != models.FetchError {
		t.Errorf("Status = %s, want error", result.Status)
	}
	if len(result.Rows) != 1 {
		t.Errorf("parsed rows must be retained, got %d", len(result.Rows))
	}
}

func TestFetchPageTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(server.URL)

	_, err := client.FetchPage(context.Background(), models.PageRequest{Page: 1})
	if err == nil {
		t.Fatal("FetchPage() error = nil, want transport failure")
	}
}

func TestDocumentURL(t *testing.T) {
	client := NewClient()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		attachment    string
		broadcastDate string
		want          string
	}{
		{
			"recent filing on live path",
			"recent.pdf", "2026-03-14T09:15:00",
			"https://www.bseindia.com/xml-data/corpfiling/AttachLive/recent.pdf",
		},
		{
			"two days old still live",
			"edge.pdf", "2026-03-13T23:59:00",
			"https://www.bseindia.com/xml-data/corpfiling/AttachLive/edge.pdf",
		},
		{
			"older filing on historical path",
			"old.pdf", "2026-03-12T10:00:00",
			"https://www.bseindia.com/xml-data/corpfiling/AttachHis/old.pdf",
		},
		{
			"unparseable date goes historical",
			"odd.pdf", "yesterday",
			"https://www.bseindia.com/xml-data/corpfiling/AttachHis/odd.pdf",
		},
		{
			"no attachment no URL",
			"", "2026-03-14T09:15:00",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.DocumentURL(tt.attachment, tt.broadcastDate, now); got != tt.want {
				t.Errorf("DocumentURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
