package processing

import "github.com/spacesedan/newscard/internal/models"

// MAX_CANDIDATES is the most articles ever offered to the selection step.
const MAX_CANDIDATES = 10

// Categories is the fixed, ordered list processed by every batch run. The
// first entry is synthetic and aggregates the other four.
var Categories = []models.Category{
	{Name: "Trending", SourceKey: models.AggregateSourceKey},
	{Name: "Politics", SourceKey: "politics"},
	{Name: "Business", SourceKey: "business"},
	{Name: "Sports", SourceKey: "sports"},
	{Name: "Technology", SourceKey: "technology"},
}

// SourceCategories returns every non-aggregate category, in order.
func SourceCategories() []models.Category {
	out := make([]models.Category, 0, len(Categories)-1)
	for _, c := range Categories {
		if !c.IsAggregate() {
			out = append(out, c)
		}
	}
	return out
}
