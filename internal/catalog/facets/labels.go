package facets

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"catalog-search/internal/models"
)

// LabelSource resolves display names for dynamic facet handles in batch.
type LabelSource interface {
	ProducerTitlesByHandles(ctx context.Context, handles []string) (map[string]string, error)
	CategoryNamesByHandles(ctx context.Context, handles []string) (map[string]string, error)
}

// ResolveLabels looks up brand and ingredient labels for the ids in dist.
// Both lookups run concurrently; either failing fails the whole resolution.
func ResolveLabels(ctx context.Context, src LabelSource, dist map[string]map[string]int, ingredientTaxonomy string) (Labels, error) {
	ingredientTaxonomy = normalizeTaxonomy(ingredientTaxonomy)
	brandHandles := handlesOf(dist[models.FacetFieldBrand], BrandPrefix)
	ingredientSlugs := handlesOf(dist[models.FacetFieldIngredient], IngredientPrefix)

	labels := Labels{Brands: map[string]string{}, Ingredients: map[string]string{}}
	g, gctx := errgroup.WithContext(ctx)

	if len(brandHandles) > 0 {
		g.Go(func() error {
			titles, err := src.ProducerTitlesByHandles(gctx, brandHandles)
			if err != nil {
				return fmt.Errorf("resolve brand labels: %w", err)
			}
			labels.Brands = titles
			return nil
		})
	}

	if len(ingredientSlugs) > 0 {
		g.Go(func() error {
			categoryHandles := make([]string, len(ingredientSlugs))
			for i, slug := range ingredientSlugs {
				categoryHandles[i] = ingredientTaxonomy + "-" + slug
			}
			names, err := src.CategoryNamesByHandles(gctx, categoryHandles)
			if err != nil {
				return fmt.Errorf("resolve ingredient labels: %w", err)
			}
			byHandle := make(map[string]string, len(names))
			for i, h := range categoryHandles {
				if name, ok := names[h]; ok {
					byHandle[ingredientSlugs[i]] = name
				}
			}
			labels.Ingredients = byHandle
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Labels{}, err
	}
	return labels, nil
}

func handlesOf(raw map[string]int, namespace string) []string {
	out := make([]string, 0, len(raw))
	for id := range raw {
		if h := trimNamespace(id, namespace); h != "" && h != id {
			out = append(out, h)
		}
	}
	sort.Strings(out)
	return out
}
