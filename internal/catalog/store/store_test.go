package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "catalog-search/internal/common/errors"
	"catalog-search/internal/common/logger"
	"catalog-search/internal/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, logger.NewTestLogger(t)), mock
}

func TestRecordsByIDs(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("LEFT JOIN producer pr").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "handle", "metadata", "handle", "title"}).
			AddRow("prod_1", "Zinek 25 mg", "zinek-25", []byte(`{"stock_quantity": 4, "active_flags": ["tip"]}`), "orling", "Orling").
			AddRow("prod_2", "Hořčík", "horcik", nil, nil, nil).
			AddRow("prod_3", "Broken", "broken", []byte(`{not json`), nil, nil))

	mock.ExpectQuery("JOIN product_category c").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "id", "handle", "name"}).
			AddRow("prod_1", "pcat_zinc", "active-ingredients-zinc", "Zinek").
			AddRow("prod_1", "pcat_min", "minerals", "Minerály").
			AddRow("prod_2", "pcat_min", "minerals", "Minerály"))

	mock.ExpectQuery("FROM product_variant v").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "id", "amount", "currency_code"}).
			AddRow("prod_1", "variant_1", 19900.0, "czk").
			AddRow("prod_1", "variant_1", 800.0, "eur").
			AddRow("prod_1", "variant_2", 24900.0, "czk").
			AddRow("prod_2", "variant_3", nil, nil))

	records, err := s.RecordsByIDs(context.Background(), []string{"prod_1", "prod_2", "prod_3", "prod_404"})

	require.NoError(t, err)
	require.Len(t, records, 3)

	zinc := records[0]
	assert.Equal(t, "prod_1", zinc.ID)
	assert.Equal(t, &models.Producer{Handle: "orling", Title: "Orling"}, zinc.Producer)
	assert.Equal(t, float64(4), zinc.Metadata["stock_quantity"])
	assert.Len(t, zinc.Categories, 2)
	require.Len(t, zinc.Variants, 2)
	assert.Equal(t, []models.Price{{Amount: 19900, CurrencyCode: "czk"}, {Amount: 800, CurrencyCode: "eur"}}, zinc.Variants[0].Prices)
	assert.Equal(t, "variant_2", zinc.Variants[1].ID)

	assert.Nil(t, records[1].Producer)
	assert.Nil(t, records[1].Metadata)
	require.Len(t, records[1].Variants, 1)
	assert.Empty(t, records[1].Variants[0].Prices)

	assert.Nil(t, records[2].Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordsByIDs_EmptyInputSkipsQueries(t *testing.T) {
	s, mock := newMockStore(t)

	records, err := s.RecordsByIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordsByIDs_QueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("LEFT JOIN producer pr").WillReturnError(errors.New("connection reset"))

	_, err := s.RecordsByIDs(context.Background(), []string{"prod_1"})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeStoreQueryFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestRecordsByIDs_Timeout(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("LEFT JOIN producer pr").
		WillDelayFor(100 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.RecordsByIDs(ctx, []string{"prod_1"})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeStoreTimeout, stdErr.Code)
}

func TestNamesByHandles(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM producer").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"handle", "title"}).
			AddRow("orling", "Orling").
			AddRow("nature-s-way", "Nature's Way"))
	mock.ExpectQuery("FROM product_category").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"handle", "name"}).
			AddRow("active-ingredients-zinc", "Zinek"))

	producers, err := s.ProducerTitlesByHandles(context.Background(), []string{"orling", "nature-s-way", "acme"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"orling": "Orling", "nature-s-way": "Nature's Way"}, producers)

	categories, err := s.CategoryNamesByHandles(context.Background(), []string{"active-ingredients-zinc"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"active-ingredients-zinc": "Zinek"}, categories)

	empty, err := s.ProducerTitlesByHandles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegionByID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM region").
		WithArgs("reg_cz").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "currency_code"}).AddRow("reg_cz", "Česko", "czk"))
	mock.ExpectQuery("FROM region").
		WithArgs("reg_missing").
		WillReturnError(sql.ErrNoRows)

	region, err := s.RegionByID(context.Background(), "reg_cz")
	require.NoError(t, err)
	assert.Equal(t, &models.Region{ID: "reg_cz", Name: "Česko", CurrencyCode: "czk"}, region)

	region, err = s.RegionByID(context.Background(), "reg_missing")
	require.NoError(t, err)
	assert.Nil(t, region)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductIDsPage(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, COUNT").
		WithArgs(250, 250).
		WillReturnRows(sqlmock.NewRows([]string{"id", "count"}).
			AddRow("prod_251", 252).
			AddRow("prod_252", 252))

	page, err := s.ProductIDsPage(context.Background(), 250, 250)

	require.NoError(t, err)
	assert.Equal(t, []string{"prod_251", "prod_252"}, page.IDs)
	assert.Equal(t, 2, page.ItemCount)
	require.NotNil(t, page.TotalCount)
	assert.Equal(t, 252, *page.TotalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefaultListing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`p\.title ILIKE \$1 AND EXISTS .+ ANY\(\$2\)\)\s+ORDER BY p\.title ASC, p\.id\s+OFFSET \$3 LIMIT \$4`).
		WithArgs("%50\\% off%", sqlmock.AnyArg(), 12, 12).
		WillReturnRows(sqlmock.NewRows([]string{"id", "count"}).
			AddRow("prod_b", 14).
			AddRow("prod_a", 14))
	mock.ExpectQuery("LEFT JOIN producer pr").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "handle", "metadata", "handle", "title"}).
			AddRow("prod_a", "A", "a", nil, nil, nil).
			AddRow("prod_b", "B", "b", nil, nil, nil))
	mock.ExpectQuery("JOIN product_category c").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "id", "handle", "name"}))
	mock.ExpectQuery("FROM product_variant v").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "id", "amount", "currency_code"}))

	records, total, err := s.DefaultListing(context.Background(), ListingQuery{
		Text:        "50% off",
		Sort:        "title_asc",
		CategoryIDs: []string{"pcat_1"},
		Offset:      12,
		Limit:       12,
	})

	require.NoError(t, err)
	assert.Equal(t, 14, total)
	require.Len(t, records, 2)
	assert.Equal(t, "prod_b", records[0].ID)
	assert.Equal(t, "prod_a", records[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefaultListing_UnknownSortUsesNewest(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`ORDER BY p\.created_at DESC, p\.id\s+OFFSET \$1 LIMIT \$2`).
		WithArgs(0, 12).
		WillReturnRows(sqlmock.NewRows([]string{"id", "count"}))

	records, total, err := s.DefaultListing(context.Background(), ListingQuery{Sort: "random", Limit: 12})

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
