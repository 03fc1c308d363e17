package sizes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "catalog-search/internal/common/errors"
	commonhttp "catalog-search/internal/common/http"
	"catalog-search/internal/common/logger"
)

func TestLookup_ProductsByAttributeValue(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"product_ids":["prod_1","prod_2"],"count":7}`))
	}))
	defer srv.Close()

	client := commonhttp.NewClient(time.Second).WithHeader("X-Api-Key", "secret")
	l := NewLookup(srv.URL+"/", client, logger.NewTestLogger(t))

	page, err := l.ProductsByAttributeValue(context.Background(), "XL / 2", " whey ", 250, 250)

	require.NoError(t, err)
	assert.Equal(t, []string{"prod_1", "prod_2"}, page.IDs)
	assert.Equal(t, 2, page.ItemCount)
	require.NotNil(t, page.TotalCount)
	assert.Equal(t, 7, *page.TotalCount)

	assert.Equal(t, "/attribute-values/XL%20%2F%202/products", gotPath)
	assert.Equal(t, "limit=250&offset=250&q=whey", gotQuery)
	assert.Equal(t, "secret", gotKey)
}

func TestLookup_WithoutCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotContains(t, r.URL.RawQuery, "q=")
		_, _ = w.Write([]byte(`{"product_ids":[]}`))
	}))
	defer srv.Close()

	l := NewLookup(srv.URL, commonhttp.NewClient(time.Second), logger.NewTestLogger(t))

	page, err := l.ProductsByAttributeValue(context.Background(), "M", "", 0, 250)

	require.NoError(t, err)
	assert.Zero(t, page.ItemCount)
	assert.Nil(t, page.TotalCount)
}

func TestLookup_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	l := NewLookup(srv.URL, commonhttp.NewClient(time.Second), logger.NewTestLogger(t))

	_, err := l.ProductsByAttributeValue(context.Background(), "M", "", 0, 250)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeAttributeLookupFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "502")
}
