package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/models"
)

// step scripts one FetchPage response.
type step struct {
	res *models.PageResult
	err error
}

// fakeSource replays scripted page results and records the requests it saw.
type fakeSource struct {
	exchange string
	steps    []step
	requests []models.PageRequest
	fields   map[string]string
	docURL   func(attachment, broadcastDate string, now time.Time) string
}

func (f *fakeSource) Exchange() string {
	if f.exchange == "" {
		return "fake"
	}
	return f.exchange
}

func (f *fakeSource) FetchPage(_ context.Context, req models.PageRequest) (*models.PageResult, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i >= len(f.steps) {
		return nil, fmt.Errorf("unexpected fetch for page %d", req.Page)
	}
	return f.steps[i].res, f.steps[i].err
}

func (f *fakeSource) FieldMap() map[string]string {
	if f.fields != nil {
		return f.fields
	}
	return map[string]string{
		"symbol":          "symbol",
		"company_name":    "name",
		"subject":         "subject",
		"details":         "details",
		"attachment_link": "attachment",
		"broadcast_date":  "date",
	}
}

func (f *fakeSource) DocumentURL(attachment, broadcastDate string, now time.Time) string {
	if f.docURL != nil {
		return f.docURL(attachment, broadcastDate, now)
	}
	return attachment
}

func row(id int) map[string]any {
	return map[string]any{"symbol": fmt.Sprintf("S%d", id), "id": float64(id)}
}

func successPage(page, totalPages int, rows ...map[string]any) *models.PageResult {
	return &models.PageResult{
		Status:     models.FetchSuccess,
		Rows:       rows,
		Page:       page,
		TotalPages: totalPages,
		TotalRows:  len(rows),
		HTTPStatus: 200,
	}
}

func errorPage(httpStatus int, message string, rows ...map[string]any) *models.PageResult {
	return &models.PageResult{
		Status:     models.FetchError,
		Rows:       rows,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func TestCollectWalksAllPages(t *testing.T) {
	src := &fakeSource{steps: []step{
		{res: successPage(1, 3, row(1), row(2))},
		{res: successPage(2, 3, row(3), row(4))},
		{res: successPage(3, 3, row(5))},
	}}

	out, err := Collect(context.Background(), src, Target{}, "", nil, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(out.Rows) != 5 {
		t.Fatalf("accumulated %d rows, want 5", len(out.Rows))
	}
	for i, r := range out.Rows {
		if got := r["symbol"]; got != fmt.Sprintf("S%d", i+1) {
			t.Errorf("row %d out of order: symbol = %v", i, got)
		}
	}
	if out.Status != models.FetchSuccess {
		t.Errorf("Status = %s, want success", out.Status)
	}
	if out.Depth != 2 {
		t.Errorf("Depth = %d, want 2", out.Depth)
	}
	want := "[page 3 of 3] collected [4+]1 rows of data"
	if out.Message != want {
		t.Errorf("Message = %q, want %q", out.Message, want)
	}

	for i, req := range src.requests {
		if req.Page != i+1 {
			t.Errorf("request %d asked for page %d", i, req.Page)
		}
	}
}

func TestCollectStopsOnFinalPage(t *testing.T) {
	src := &fakeSource{steps: []step{
		{res: successPage(1, 1, row(1))},
	}}

	out, err := Collect(context.Background(), src, Target{}, "", nil, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(src.requests) != 1 {
		t.Errorf("made %d requests, want 1", len(src.requests))
	}
	if len(out.Rows) != 1 {
		t.Errorf("accumulated %d rows, want 1", len(out.Rows))
	}
}

func TestCollectAdvancesPastPartialFailure(t *testing.T) {
	// A non-200 answer that still yielded rows looks like a truncated
	// payload; the next page may well exist.
	src := &fakeSource{steps: []step{
		{res: errorPage(502, "bad gateway", row(1), row(2))},
		{res: successPage(2, 2, row(3))},
	}}

	out, err := Collect(context.Background(), src, Target{}, "", nil, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(src.requests) != 2 {
		t.Fatalf("made %d requests, want 2", len(src.requests))
	}
	if src.requests[1].Page != 2 {
		t.Errorf("second request asked for page %d, want 2", src.requests[1].Page)
	}
	if len(out.Rows) != 3 {
		t.Errorf("accumulated %d rows, want 3", len(out.Rows))
	}
	if out.Status != models.FetchSuccess {
		t.Errorf("terminal Status = %s, want success", out.Status)
	}
}

func TestCollectStopsOnFailureWithoutRows(t *testing.T) {
	src := &fakeSource{steps: []step{
		{res: errorPage(500, "server error")},
	}}

	out, err := Collect(context.Background(), src, Target{}, "", nil, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(src.requests) != 1 {
		t.Errorf("made %d requests, want 1", len(src.requests))
	}
	if out.Status != models.FetchError {
		t.Errorf("Status = %s, want error", out.Status)
	}
	if out.Message != "server error" {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestCollectStopsOnCleanStatusFailure(t *testing.T) {
	// A 200 answer that failed classification is a shape problem, not a
	// truncation; retrying the next page would fetch more of the same.
	src := &fakeSource{steps: []step{
		{res: errorPage(200, "response body is not a list", row(1))},
	}}

	out, err := Collect(context.Background(), src, Target{}, "", nil, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(src.requests) != 1 {
		t.Errorf("made %d requests, want 1", len(src.requests))
	}
	if out.Status != models.FetchError {
		t.Errorf("Status = %s, want error", out.Status)
	}
	if len(out.Rows) != 1 {
		t.Errorf("rows from the failed attempt should still be kept, got %d", len(out.Rows))
	}
}

func TestCollectHonorsMaxDepth(t *testing.T) {
	var steps []step
	for i := 1; i <= 10; i++ {
		steps = append(steps, step{res: successPage(i, 100, row(i))})
	}
	src := &fakeSource{steps: steps}

	out, err := Collect(context.Background(), src, Target{}, "", nil, Options{MaxDepth: 3})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(src.requests) != 4 {
		t.Errorf("made %d requests, want 4 (depths 0 through 3)", len(src.requests))
	}
	if out.Depth != 3 {
		t.Errorf("Depth = %d, want 3", out.Depth)
	}
	if out.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", out.MaxDepth)
	}
}

func TestCollectPropagatesTransportFailure(t *testing.T) {
	src := &fakeSource{steps: []step{
		{err: errors.New("dial tcp: no route to host")},
	}}

	_, err := Collect(context.Background(), src, Target{}, "", nil, Options{})
	if err == nil {
		t.Fatal("Collect() error = nil, want transport failure")
	}
}

func TestCollectUnwrapsSingleElementMeta(t *testing.T) {
	meta := []any{map[string]any{"TotalRows": float64(42)}}
	src := &fakeSource{steps: []step{
		{res: &models.PageResult{
			Status:     models.FetchSuccess,
			Rows:       []map[string]any{row(1)},
			Page:       1,
			TotalPages: 1,
			Meta:       meta,
			HTTPStatus: 200,
		}},
	}}

	out, err := Collect(context.Background(), src, Target{}, "", nil, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	m, ok := out.Meta.(map[string]any)
	if !ok {
		t.Fatalf("Meta = %T, want unwrapped map", out.Meta)
	}
	if m["TotalRows"] != float64(42) {
		t.Errorf("Meta content = %v", m)
	}
}

func TestCollectStartsFromOverridePage(t *testing.T) {
	src := &fakeSource{steps: []step{
		{res: successPage(3, 3, row(1))},
	}}

	_, err := Collect(context.Background(), src, Target{}, "", map[string]string{"pageno": "3"}, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if src.requests[0].Page != 3 {
		t.Errorf("first request asked for page %d, want 3", src.requests[0].Page)
	}
}

func TestCollectAdvancesPastOverridePage(t *testing.T) {
	src := &fakeSource{steps: []step{
		{res: successPage(1, 2, row(1))},
		{res: successPage(2, 2, row(2))},
	}}

	params := map[string]string{"pageno": "1", "strCat": "4"}
	out, err := Collect(context.Background(), src, Target{}, "", params, Options{})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	// the caller's map must never be aliased into a request
	params["strCat"] = "changed"

	if len(src.requests) != 2 {
		t.Fatalf("made %d requests, want 2", len(src.requests))
	}
	for i, want := range []int{1, 2} {
		if src.requests[i].Page != want {
			t.Errorf("request %d asked for page %d, want %d", i, src.requests[i].Page, want)
		}
		if _, ok := src.requests[i].Overrides["pageno"]; ok {
			t.Errorf("request %d still carries a pageno override", i)
		}
		if got := src.requests[i].Overrides["strCat"]; got != "4" {
			t.Errorf("request %d strCat override = %q, want 4", i, got)
		}
	}

	if len(out.Rows) != 2 || out.Rows[0]["id"] != float64(1) || out.Rows[1]["id"] != float64(2) {
		t.Errorf("accumulated rows = %v, want pages 1 and 2 once each", out.Rows)
	}
}

func TestCollectStopsWhenContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{steps: []step{
		{res: successPage(1, 2, row(1))},
		{res: successPage(2, 2, row(2))},
	}}

	_, err := Collect(ctx, src, Target{}, "", nil, Options{PageDelay: time.Second})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Collect() error = %v, want context.Canceled", err)
	}
}

var _ interfaces.AnnouncementSource = (*fakeSource)(nil)
