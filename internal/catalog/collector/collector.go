// Package collector drains paginated identifier sources into one ordered, deduplicated list.
package collector

import (
	"context"
	"errors"
	"fmt"

	"catalog-search/internal/models"
)

const (
	// PageSize is the number of ids requested per page.
	PageSize = 250

	// DefaultMaxPages bounds a source that keeps reporting full pages.
	DefaultMaxPages = 400
)

var ErrTooManyPages = errors.New("TOO_MANY_PAGES")

// FetchPage returns one page of ids starting at offset.
type FetchPage func(ctx context.Context, offset, limit int) (models.PageResult, error)

type options struct {
	pageSize int
	maxPages int
}

type Option func(*options)

// WithPageSize overrides PageSize. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithMaxPages overrides DefaultMaxPages. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPages = n
		}
	}
}

// CollectIDs calls fetch with an advancing offset until a page is empty or the
// offset reaches the total. A source without a total is treated as exhausted on
// its first short page. Ids keep first-seen order; duplicates are dropped.
func CollectIDs(ctx context.Context, fetch FetchPage, opts ...Option) ([]string, error) {
	o := options{pageSize: PageSize, maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(&o)
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0)

	offset := 0
	for page := 0; ; page++ {
		if page >= o.maxPages {
			return nil, fmt.Errorf("%w: stopped after %d pages at offset %d", ErrTooManyPages, page, offset)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := fetch(ctx, offset, o.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}

		for _, id := range res.IDs {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}

		if res.ItemCount <= 0 {
			break
		}
		offset += res.ItemCount

		total := offset
		if res.TotalCount != nil {
			total = *res.TotalCount
		} else if res.ItemCount >= o.pageSize {
			// full page and no total: assume there is at least one more
			total = offset + 1
		}
		if offset >= total {
			break
		}
	}

	return ids, nil
}
