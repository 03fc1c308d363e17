package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"catalog-search/internal/models"
)

// ListingQuery is the request the default listing answers.
type ListingQuery struct {
	Text        string
	Sort        string
	CategoryIDs []string
	Offset      int
	Limit       int
}

var listingOrder = map[string]string{
	"":           "p.created_at DESC, p.id",
	"newest":     "p.created_at DESC, p.id",
	"oldest":     "p.created_at ASC, p.id",
	"title_asc":  "p.title ASC, p.id",
	"title_desc": "p.title DESC, p.id",
}

// DefaultListing answers any catalog query from the store alone: an optional
// title match, a category filter and one of the listing sort orders.
func (s *Store) DefaultListing(ctx context.Context, q ListingQuery) ([]models.CatalogRecord, int, error) {
	order, ok := listingOrder[strings.ToLower(strings.TrimSpace(q.Sort))]
	if !ok {
		order = listingOrder[""]
	}

	where := []string{"p.deleted_at IS NULL", "p.status = 'published'"}
	args := []interface{}{}
	if text := strings.TrimSpace(q.Text); text != "" {
		args = append(args, "%"+escapeLike(text)+"%")
		where = append(where, fmt.Sprintf("p.title ILIKE $%d", len(args)))
	}
	if len(q.CategoryIDs) > 0 {
		args = append(args, pq.Array(q.CategoryIDs))
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_category_product pcp WHERE pcp.product_id = p.id AND pcp.product_category_id = ANY($%d))",
			len(args)))
	}
	args = append(args, q.Offset, q.Limit)

	query := fmt.Sprintf(`
		SELECT p.id, COUNT(*) OVER ()
		FROM product p
		WHERE %s
		ORDER BY %s
		OFFSET $%d LIMIT $%d`,
		strings.Join(where, " AND "), order, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, s.queryError(ctx, "product", err)
	}
	var ids []string
	total := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id, &total); err != nil {
			rows.Close()
			return nil, 0, s.queryError(ctx, "product", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, 0, s.queryError(ctx, "product", err)
	}
	rows.Close()

	records, err := s.RecordsByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[string]models.CatalogRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	ordered := make([]models.CatalogRecord, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
