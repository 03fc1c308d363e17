package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-search/internal/models"
)

func intPtr(v int) *int { return &v }

// pagedSource serves ids from a fixed slice and records the offsets it was asked for.
type pagedSource struct {
	ids         []string
	reportTotal bool
	offsets     []int
}

func (s *pagedSource) fetch(_ context.Context, offset, limit int) (models.PageResult, error) {
	s.offsets = append(s.offsets, offset)
	if offset >= len(s.ids) {
		res := models.PageResult{}
		if s.reportTotal {
			res.TotalCount = intPtr(len(s.ids))
		}
		return res, nil
	}
	end := offset + limit
	if end > len(s.ids) {
		end = len(s.ids)
	}
	page := s.ids[offset:end]
	res := models.PageResult{IDs: page, ItemCount: len(page)}
	if s.reportTotal {
		res.TotalCount = intPtr(len(s.ids))
	}
	return res, nil
}

func makeIDs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("prod_%04d", i)
	}
	return out
}

func TestCollectIDs_Termination(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		reportTotal bool
		wantOffsets []int
	}{
		{name: "known total, single short page", count: 10, reportTotal: true, wantOffsets: []int{0}},
		{name: "known total, exact multiple", count: 500, reportTotal: true, wantOffsets: []int{0, 250}},
		{name: "known total, three pages", count: 600, reportTotal: true, wantOffsets: []int{0, 250, 500}},
		{name: "unknown total, short first page", count: 10, reportTotal: false, wantOffsets: []int{0}},
		{name: "unknown total, short last page", count: 600, reportTotal: false, wantOffsets: []int{0, 250, 500}},
		{name: "unknown total, exact multiple ends on empty page", count: 500, reportTotal: false, wantOffsets: []int{0, 250, 500}},
		{name: "empty source", count: 0, reportTotal: true, wantOffsets: []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &pagedSource{ids: makeIDs(tt.count), reportTotal: tt.reportTotal}

			ids, err := CollectIDs(context.Background(), src.fetch)

			require.NoError(t, err)
			assert.Equal(t, src.ids, ids)
			assert.Equal(t, tt.wantOffsets, src.offsets)
		})
	}
}

func TestCollectIDs_DeduplicatesInFirstSeenOrder(t *testing.T) {
	pages := []models.PageResult{
		{IDs: []string{"a", "b", "a"}, ItemCount: 3},
		{IDs: []string{"c", "b", ""}, ItemCount: 3},
		{IDs: []string{"d"}, ItemCount: 1},
	}
	calls := 0
	fetch := func(_ context.Context, offset, limit int) (models.PageResult, error) {
		res := pages[calls]
		calls++
		return res, nil
	}

	ids, err := CollectIDs(context.Background(), fetch, WithPageSize(3))

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
	assert.Equal(t, 3, calls)
}

func TestCollectIDs_AdvancesByItemCount(t *testing.T) {
	// the source returns fewer ids than it counted; offsets still follow ItemCount
	var offsets []int
	fetch := func(_ context.Context, offset, limit int) (models.PageResult, error) {
		offsets = append(offsets, offset)
		if offset == 0 {
			return models.PageResult{IDs: []string{"x"}, ItemCount: 2, TotalCount: intPtr(4)}, nil
		}
		return models.PageResult{IDs: []string{"y", "z"}, ItemCount: 2, TotalCount: intPtr(4)}, nil
	}

	ids, err := CollectIDs(context.Background(), fetch, WithPageSize(2))

	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, ids)
	assert.Equal(t, []int{0, 2}, offsets)
}

func TestCollectIDs_PropagatesFetchError(t *testing.T) {
	boom := errors.New("index unavailable")
	fetch := func(_ context.Context, offset, limit int) (models.PageResult, error) {
		if offset > 0 {
			return models.PageResult{}, boom
		}
		return models.PageResult{IDs: makeIDs(PageSize), ItemCount: PageSize}, nil
	}

	ids, err := CollectIDs(context.Background(), fetch)

	require.ErrorIs(t, err, boom)
	assert.Nil(t, ids)
}

func TestCollectIDs_MaxPagesGuard(t *testing.T) {
	fetch := func(_ context.Context, offset, limit int) (models.PageResult, error) {
		return models.PageResult{IDs: []string{fmt.Sprint(offset)}, ItemCount: limit}, nil
	}

	_, err := CollectIDs(context.Background(), fetch, WithPageSize(1), WithMaxPages(5))

	require.ErrorIs(t, err, ErrTooManyPages)
}

func TestCollectIDs_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	fetch := func(context.Context, int, int) (models.PageResult, error) {
		called = true
		return models.PageResult{}, nil
	}

	_, err := CollectIDs(ctx, fetch)

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
