package scrape

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/models"
)

// DefaultMaxDepth bounds the total page attempts of one logical fetch.
const DefaultMaxDepth = 998

// Options tunes the pagination controller.
type Options struct {
	MaxDepth  int           // attempt bound; DefaultMaxDepth when <= 0
	PageDelay time.Duration // polite delay between consecutive page calls
	Logger    *common.Logger
	Now       func() time.Time // test hook; time.Now when nil
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Logger == nil {
		o.Logger = common.NewSilentLogger()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Collect drives one logical fetch: it resolves the target window, then walks
// the result pages sequentially, accumulating rows until the advance rules
// say stop or the depth bound is hit.
//
// Advance rules, applied after every page attempt:
//   - success and current page < total pages: fetch the next page;
//   - error where the transport status was not a clean 200 AND the attempt
//     still yielded at least one row: a partial payload with a trailing
//     failure, so try the next page anyway;
//   - anything else: stop.
//
// Failures that produced a response are folded into the returned outcome as
// status/message data. Only an unreachable network stack surfaces as an
// error, and it voids this fetch alone.
func Collect(ctx context.Context, src interfaces.AnnouncementSource, target Target, scrip string, params map[string]string, opts Options) (*models.FetchOutcome, error) {
	opts = opts.withDefaults()

	from, to := ResolveWindow(target, opts.Now())

	page := 1
	if v, ok := params["pageno"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	// The starting page is consumed above; on the wire the loop's own page
	// counter always wins, so the override must not survive into requests.
	var overrides map[string]string
	if len(params) > 0 {
		overrides = make(map[string]string, len(params))
		for k, v := range params {
			if k == "pageno" {
				continue
			}
			overrides[k] = v
		}
	}

	base := models.PageRequest{
		FromDate:  from,
		ToDate:    to,
		Scrip:     scrip,
		Overrides: overrides,
	}

	var (
		acc   []map[string]any
		meta  any
		depth int
	)

	for {
		req := base.WithPage(page)

		result, err := src.FetchPage(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		if result.Meta != nil {
			meta = result.Meta
		}

		message := result.Message
		if result.Status == models.FetchSuccess {
			message = fmt.Sprintf("[page %d of %d] collected [%d+]%d rows of data",
				page, result.TotalPages, len(acc), len(result.Rows))
		}

		opts.Logger.Debug().
			Str("exchange", src.Exchange()).
			Int("depth", depth).
			Str("status", string(result.Status)).
			Str("detail", message).
			Msg("Fetch attempt")

		next := 0
		if depth < opts.MaxDepth {
			if result.Status == models.FetchSuccess && page < result.TotalPages {
				next = page + 1
			}
			if result.Status == models.FetchError && result.HTTPStatus != 200 && len(result.Rows) > 0 {
				next = page + 1
			}
		}

		acc = append(acc, result.Rows...)

		if next == 0 {
			return &models.FetchOutcome{
				Rows:       acc,
				Meta:       unwrapMeta(meta),
				Status:     result.Status,
				Message:    message,
				LastURL:    result.URL,
				LastStatus: result.HTTPStatus,
				Depth:      depth,
				MaxDepth:   opts.MaxDepth,
			}, nil
		}

		page = next
		depth++

		if opts.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.PageDelay):
			}
		}
	}
}

// unwrapMeta collapses a one-element metadata sequence to its scalar;
// anything else passes through untouched.
func unwrapMeta(meta any) any {
	if list, ok := meta.([]any); ok && len(list) == 1 {
		return list[0]
	}
	return meta
}
