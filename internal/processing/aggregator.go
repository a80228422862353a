package processing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/spacesedan/newscard/internal/models"
)

// NewsSource fetches the latest articles for one upstream category key.
type NewsSource interface {
	FetchLatest(ctx context.Context, category string) ([]models.Article, error)
}

// LinkSet answers whether an article was already chosen earlier in the run.
type LinkSet interface {
	Contains(link string) bool
}

type Aggregator struct {
	source NewsSource
}

func NewAggregator(source NewsSource) *Aggregator {
	return &Aggregator{source: source}
}

// Candidates returns at most MAX_CANDIDATES eligible articles for category
// that are not in used. An empty result is not an error.
func (a *Aggregator) Candidates(ctx context.Context, category models.Category, used LinkSet) ([]models.Article, error) {
	var (
		articles []models.Article
		err      error
	)
	if category.IsAggregate() {
		articles, err = a.fetchAggregate(ctx)
	} else {
		articles, err = a.source.FetchLatest(ctx, category.SourceKey)
	}
	if err != nil {
		return nil, fmt.Errorf("[Aggregator] fetch %s: %w", category.Name, err)
	}

	fetched := len(articles)
	articles = filterUsed(filterEligible(articles), used)
	if len(articles) > MAX_CANDIDATES {
		articles = articles[:MAX_CANDIDATES]
	}

	slog.Info("[Aggregator] Built candidate set",
		slog.String("category", category.Name),
		slog.Int("fetched", fetched),
		slog.Int("candidates", len(articles)))
	return articles, nil
}

// fetchAggregate fans out one fetch per source category. Any failure fails the
// whole step; partial results are never merged.
func (a *Aggregator) fetchAggregate(ctx context.Context) ([]models.Article, error) {
	sources := SourceCategories()
	results := make([][]models.Article, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range sources {
		g.Go(func() error {
			articles, err := a.source.FetchLatest(gctx, c.SourceKey)
			if err != nil {
				return fmt.Errorf("%s: %w", c.SourceKey, err)
			}
			results[i] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []models.Article
	for _, r := range results {
		merged = append(merged, r...)
	}

	merged = removeDuplicateLinks(merged)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	if len(merged) > MAX_CANDIDATES {
		merged = merged[:MAX_CANDIDATES]
	}
	return merged, nil
}

// removeDuplicateLinks keeps the first article seen for every link.
func removeDuplicateLinks(articles []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if _, exists := seen[a.Link]; exists {
			continue
		}
		seen[a.Link] = struct{}{}
		unique = append(unique, a)
	}
	return unique
}

// filterEligible drops articles that cannot be rendered: no image, or no
// body and no description.
func filterEligible(articles []models.Article) []models.Article {
	var out []models.Article
	for _, a := range articles {
		if a.ImageURL == "" || a.Text() == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

func filterUsed(articles []models.Article, used LinkSet) []models.Article {
	if used == nil {
		return articles
	}
	var out []models.Article
	for _, a := range articles {
		if used.Contains(a.Link) {
			slog.Debug("[Aggregator] Skipping article already used this run", slog.String("link", a.Link))
			continue
		}
		out = append(out, a)
	}
	return out
}
