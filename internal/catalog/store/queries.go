package store

const (
	queryProductsByIDs = `
		SELECT p.id, p.title, COALESCE(p.handle, ''), p.metadata,
		       pr.handle, pr.title
		FROM product p
		LEFT JOIN producer pr ON pr.id = p.producer_id AND pr.deleted_at IS NULL
		WHERE p.id = ANY($1) AND p.deleted_at IS NULL`

	queryCategoriesByProductIDs = `
		SELECT pcp.product_id, c.id, c.handle, c.name
		FROM product_category_product pcp
		JOIN product_category c ON c.id = pcp.product_category_id
		WHERE pcp.product_id = ANY($1) AND c.deleted_at IS NULL
		ORDER BY pcp.product_id, c.rank, c.id`

	queryPricesByProductIDs = `
		SELECT v.product_id, v.id, pr.amount, pr.currency_code
		FROM product_variant v
		LEFT JOIN product_variant_price pr ON pr.variant_id = v.id AND pr.deleted_at IS NULL
		WHERE v.product_id = ANY($1) AND v.deleted_at IS NULL
		ORDER BY v.product_id, v.variant_rank, v.id`

	queryProducersByHandles = `
		SELECT handle, title
		FROM producer
		WHERE handle = ANY($1) AND deleted_at IS NULL`

	queryCategoriesByHandles = `
		SELECT handle, name
		FROM product_category
		WHERE handle = ANY($1) AND deleted_at IS NULL`

	queryRegionByID = `
		SELECT id, name, currency_code
		FROM region
		WHERE id = $1 AND deleted_at IS NULL`

	queryProductIDsPage = `
		SELECT id, COUNT(*) OVER ()
		FROM product
		WHERE deleted_at IS NULL AND status = 'published'
		ORDER BY id
		OFFSET $1 LIMIT $2`
)
