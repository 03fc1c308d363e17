package facets

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"catalog-search/internal/models"
)

// Facets is the UI-ready facet block of a search response.
type Facets struct {
	Status     []models.FacetOption `json:"status"`
	Form       []models.FacetOption `json:"form"`
	Brand      []models.FacetOption `json:"brand"`
	Ingredient []models.FacetOption `json:"ingredient"`
	Price      *models.FacetStats   `json:"price"`
}

// Labels holds batch-resolved display names for dynamic facets, keyed by the
// handle without its namespace.
type Labels struct {
	Brands      map[string]string
	Ingredients map[string]string
}

// Mapper converts raw facet counts into sorted option lists. Ties on count are
// ordered by the collation rules of its language.
type Mapper struct {
	lang language.Tag
}

func NewMapper(lang string) *Mapper {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	return &Mapper{lang: tag}
}

var defaultMapper = NewMapper("cs")

// MapFacetDistribution maps all facet dimensions with the default collation language.
func MapFacetDistribution(dist map[string]map[string]int, stats map[string]models.FacetStats, labels Labels) Facets {
	return defaultMapper.Map(dist, stats, labels)
}

func (m *Mapper) Map(dist map[string]map[string]int, stats map[string]models.FacetStats, labels Labels) Facets {
	out := Facets{
		Status:     m.MapStatic(dist[models.FacetFieldStatus], StatusDefinitions),
		Form:       m.MapStatic(dist[models.FacetFieldForm], FormDefinitions),
		Brand:      m.MapDynamic(dist[models.FacetFieldBrand], BrandPrefix, labels.Brands),
		Ingredient: m.MapDynamic(dist[models.FacetFieldIngredient], IngredientPrefix, labels.Ingredients),
	}
	if s, ok := stats[models.FacetFieldPrice]; ok {
		out.Price = &models.FacetStats{Min: s.Min, Max: s.Max}
	}
	return out
}

// MapStatic emits every definition, with count 0 when the index returned none,
// followed by any ids the definitions do not know.
func (m *Mapper) MapStatic(raw map[string]int, defs []Definition) []models.FacetOption {
	out := make([]models.FacetOption, 0, len(defs)+len(raw))
	known := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		known[def.ID] = struct{}{}
		out = append(out, models.FacetOption{ID: def.ID, Label: def.Label, Count: raw[def.ID]})
	}
	for id, count := range raw {
		if _, ok := known[id]; ok || id == "" {
			continue
		}
		label, ok := fallbackLabels[id]
		if !ok {
			label = Humanize(id, "")
		}
		out = append(out, models.FacetOption{ID: id, Label: label, Count: count})
	}
	m.sort(out)
	return out
}

// MapDynamic emits one option per id in raw, labeled from labels or the humanized handle.
func (m *Mapper) MapDynamic(raw map[string]int, namespace string, labels map[string]string) []models.FacetOption {
	out := make([]models.FacetOption, 0, len(raw))
	for id, count := range raw {
		if id == "" {
			continue
		}
		handle := trimNamespace(id, namespace)
		label := labels[handle]
		if label == "" {
			label = Humanize(id, namespace)
		}
		out = append(out, models.FacetOption{ID: id, Label: label, Count: count})
	}
	m.sort(out)
	return out
}

func (m *Mapper) sort(opts []models.FacetOption) {
	// collators keep internal buffers, so each call gets its own
	c := collate.New(m.lang, collate.IgnoreCase)
	sort.SliceStable(opts, func(i, j int) bool {
		if opts[i].Count != opts[j].Count {
			return opts[i].Count > opts[j].Count
		}
		if cmp := c.CompareString(opts[i].Label, opts[j].Label); cmp != 0 {
			return cmp < 0
		}
		return opts[i].ID < opts[j].ID
	})
}

func trimNamespace(id, namespace string) string {
	if namespace != "" && len(id) > len(namespace) && id[:len(namespace)] == namespace {
		return id[len(namespace):]
	}
	return id
}
