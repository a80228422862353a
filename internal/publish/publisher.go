package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/newscard/internal/imagery"
	"github.com/spacesedan/newscard/internal/models"
)

type Uploader interface {
	Upload(ctx context.Context, dataURI string) (string, error)
}

type Webhook interface {
	Send(ctx context.Context, post models.WebhookPost) error
}

// EventSink receives a copy of every published post. Optional.
type EventSink interface {
	PublishPost(ctx context.Context, post models.PublishedPost) error
}

// Ledger keeps an audit record of every published post. Optional.
type Ledger interface {
	Record(ctx context.Context, post models.PublishedPost) error
}

// Post is everything needed to publish one category's graphic.
type Post struct {
	Category string
	Article  models.Article
	Result   models.SelectionResult
	Graphic  models.ImagePayload
}

type Publisher struct {
	uploader Uploader
	webhook  Webhook
	events   EventSink
	ledger   Ledger
	now      func() time.Time
}

// NewPublisher wires the required upload and webhook steps. events and ledger
// may be nil.
func NewPublisher(uploader Uploader, webhook Webhook, events EventSink, ledger Ledger) *Publisher {
	return &Publisher{
		uploader: uploader,
		webhook:  webhook,
		events:   events,
		ledger:   ledger,
		now:      time.Now,
	}
}

// Publish uploads the graphic, hands it to the webhook queue and then fans the
// result out to the optional sinks. The first failing step aborts the rest.
func (p *Publisher) Publish(ctx context.Context, post Post) (models.PublishedPost, error) {
	imageURL, err := p.uploader.Upload(ctx, imagery.DataURI(post.Graphic))
	if err != nil {
		return models.PublishedPost{}, fmt.Errorf("[Publisher] upload: %w", err)
	}

	err = p.webhook.Send(ctx, models.WebhookPost{
		Headline:   post.Result.Headline,
		ImageURL:   imageURL,
		Summary:    post.Result.Caption,
		SourceLink: post.Article.Link,
		Status:     models.PostStatusQueue,
	})
	if err != nil {
		return models.PublishedPost{}, fmt.Errorf("[Publisher] webhook: %w", err)
	}

	published := models.PublishedPost{
		Category:    post.Category,
		Link:        post.Article.Link,
		Headline:    post.Result.Headline,
		Caption:     post.Result.Caption,
		SourceName:  post.Result.SourceName,
		ImageURL:    imageURL,
		PublishedAt: p.now().UTC(),
	}

	if p.events != nil {
		if err := p.events.PublishPost(ctx, published); err != nil {
			return published, fmt.Errorf("[Publisher] post event: %w", err)
		}
	}
	if p.ledger != nil {
		if err := p.ledger.Record(ctx, published); err != nil {
			return published, fmt.Errorf("[Publisher] ledger: %w", err)
		}
	}

	slog.Info("[Publisher] Post queued",
		slog.String("category", post.Category),
		slog.String("headline", published.Headline),
		slog.String("image_url", imageURL))
	return published, nil
}
