package imagery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spacesedan/newscard/internal/models"
)

// ErrImageUnavailable means neither the article photo nor generation produced an image.
var ErrImageUnavailable = errors.New("image unavailable")

type MediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// ImageGenerator produces images from a text prompt. Implementations request a
// single 4:3 raster image. An empty result is not an error.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]models.ImagePayload, error)
}

type Resolver struct {
	fetcher   MediaFetcher
	generator ImageGenerator
}

func NewResolver(fetcher MediaFetcher, generator ImageGenerator) *Resolver {
	return &Resolver{fetcher: fetcher, generator: generator}
}

// Resolve prefers the article's own photo and falls back to generating one
// from prompt. Generation errors are returned as is; zero generated images
// yields ErrImageUnavailable.
func (r *Resolver) Resolve(ctx context.Context, article models.Article, prompt string) (models.ImagePayload, error) {
	if article.ImageURL != "" {
		payload, err := r.fetch(ctx, article.ImageURL)
		if err == nil {
			slog.Debug("[Resolver] Using article image",
				slog.String("url", article.ImageURL),
				slog.String("mime", payload.MIMEType))
			return payload, nil
		}
		slog.Warn("[Resolver] Article image fetch failed, generating instead",
			slog.String("url", article.ImageURL),
			slog.String("error", err.Error()))
	}

	images, err := r.generator.GenerateImage(ctx, prompt)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("[Resolver] image generation: %w", err)
	}
	if len(images) == 0 {
		return models.ImagePayload{}, ErrImageUnavailable
	}

	slog.Info("[Resolver] Using generated image", slog.String("mime", images[0].MIMEType))
	return images[0], nil
}

func (r *Resolver) fetch(ctx context.Context, url string) (models.ImagePayload, error) {
	data, contentType, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return models.ImagePayload{}, err
	}
	// Hotlink protection often answers 200 with an HTML page.
	if !strings.HasPrefix(contentType, "image/") {
		return models.ImagePayload{}, fmt.Errorf("unexpected content type %q", contentType)
	}
	return models.ImagePayload{MIMEType: contentType, Data: data}, nil
}
