package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spacesedan/newscard/internal/imagery"
	"github.com/spacesedan/newscard/internal/models"
	"github.com/spacesedan/newscard/internal/processing"
	"github.com/spacesedan/newscard/internal/publish"
	"github.com/spacesedan/newscard/internal/selection"
)

// ErrNoCandidates means the aggregator found no eligible article.
var ErrNoCandidates = errors.New("no candidates")

type Aggregator interface {
	Candidates(ctx context.Context, category models.Category, used processing.LinkSet) ([]models.Article, error)
}

type Selector interface {
	Select(ctx context.Context, candidates []models.Article) (selection.Decision, error)
}

type ImageResolver interface {
	Resolve(ctx context.Context, article models.Article, prompt string) (models.ImagePayload, error)
}

type Composer interface {
	Compose(ctx context.Context, headline string, phrases []string, photo models.ImagePayload) (models.ImagePayload, error)
}

type Publisher interface {
	Publish(ctx context.Context, post publish.Post) (models.PublishedPost, error)
}

// Stages are the per-category steps, in the order they run.
type Stages struct {
	Aggregator Aggregator
	Selector   Selector
	Resolver   ImageResolver
	Composer   Composer
	Publisher  Publisher
}

type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

type CategoryResult struct {
	Category string
	Outcome  Outcome
	Link     string
	ImageURL string
	Err      error
}

// Summary reports what happened to every category in one run.
type Summary struct {
	StartedAt time.Time
	Duration  time.Duration
	Results   []CategoryResult
}

func (s Summary) Count(outcome Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

type Orchestrator struct {
	categories []models.Category
	stages     Stages
	metrics    *Metrics
}

func NewOrchestrator(categories []models.Category, stages Stages, metrics *Metrics) *Orchestrator {
	return &Orchestrator{categories: categories, stages: stages, metrics: metrics}
}

// Run processes every category once, strictly in order. A category that is
// skipped or fails never stops the ones after it.
func (o *Orchestrator) Run(ctx context.Context) Summary {
	summary := Summary{StartedAt: time.Now()}
	used := NewUsedLinkSet()

	slog.Info("[Orchestrator] Batch started", slog.Int("categories", len(o.categories)))
	for _, category := range o.categories {
		result := o.runCategory(ctx, category, used)
		summary.Results = append(summary.Results, result)
		o.metrics.observeOutcome(category.Name, result.Outcome)

		switch result.Outcome {
		case OutcomeSkipped:
			slog.Warn("[Orchestrator] Category skipped",
				slog.String("category", category.Name),
				slog.String("reason", result.Err.Error()))
		case OutcomeFailed:
			slog.Error("[Orchestrator] Category failed",
				slog.String("category", category.Name),
				slog.String("link", result.Link),
				slog.String("error", result.Err.Error()))
		default:
			slog.Info("[Orchestrator] Category published",
				slog.String("category", category.Name),
				slog.String("link", result.Link),
				slog.String("image_url", result.ImageURL))
		}
	}
	summary.Duration = time.Since(summary.StartedAt)

	slog.Info("[Orchestrator] Batch finished",
		slog.Int("published", summary.Count(OutcomePublished)),
		slog.Int("skipped", summary.Count(OutcomeSkipped)),
		slog.Int("failed", summary.Count(OutcomeFailed)),
		slog.Duration("elapsed", summary.Duration))
	return summary
}

func (o *Orchestrator) runCategory(ctx context.Context, category models.Category, used *UsedLinkSet) CategoryResult {
	result := CategoryResult{Category: category.Name}
	finish := func(err error) CategoryResult {
		result.Err = err
		result.Outcome = classify(err)
		return result
	}

	candidates, err := o.stages.Aggregator.Candidates(ctx, category, used)
	if err != nil {
		return finish(err)
	}
	if len(candidates) == 0 {
		return finish(ErrNoCandidates)
	}

	decision, err := o.stages.Selector.Select(ctx, candidates)
	if err != nil {
		return finish(err)
	}
	result.Link = decision.Article.Link
	used.Add(decision.Article.Link)

	photo, err := o.stages.Resolver.Resolve(ctx, decision.Article, decision.Result.ImagePrompt)
	if err != nil {
		return finish(err)
	}

	graphic, err := o.stages.Composer.Compose(ctx, decision.Result.Headline, decision.Result.HighlightPhrases, photo)
	if err != nil {
		return finish(err)
	}

	published, err := o.stages.Publisher.Publish(ctx, publish.Post{
		Category: category.Name,
		Article:  decision.Article,
		Result:   decision.Result,
		Graphic:  graphic,
	})
	if err != nil {
		return finish(err)
	}
	result.ImageURL = published.ImageURL
	return finish(nil)
}

func classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomePublished
	case errors.Is(err, ErrNoCandidates),
		errors.Is(err, selection.ErrNoRelevantArticle),
		errors.Is(err, imagery.ErrImageUnavailable):
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}
