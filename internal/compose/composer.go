package compose

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"time"

	"golang.org/x/image/font/opentype"
	"golang.org/x/sync/errgroup"

	"github.com/spacesedan/newscard/internal/imagery"
	"github.com/spacesedan/newscard/internal/models"
)

// AssetFetcher downloads fonts and overlay images.
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

type AssetURLs struct {
	FontRegular string
	FontBold    string
	Frame       string
	Logo        string
}

type Composer struct {
	fetcher AssetFetcher
	urls    AssetURLs
	brand   string
}

func NewComposer(fetcher AssetFetcher, urls AssetURLs, brand string) *Composer {
	return &Composer{fetcher: fetcher, urls: urls, brand: brand}
}

// Compose renders the 1080×1080 graphic for headline over photo and returns it
// as a PNG payload. Every asset must load; there is no degraded output.
func (c *Composer) Compose(ctx context.Context, headline string, phrases []string, photo models.ImagePayload) (models.ImagePayload, error) {
	start := time.Now()

	img, err := imagery.Decode(photo)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("[Compose] invalid photo: %w", err)
	}

	assets, err := LoadAssets(ctx, c.fetcher, c.urls)
	if err != nil {
		return models.ImagePayload{}, err
	}

	ops, err := Layout(assets, headline, phrases, img, c.brand)
	if err != nil {
		return models.ImagePayload{}, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Rasterize(ops)); err != nil {
		return models.ImagePayload{}, fmt.Errorf("[Compose] png encode: %w", err)
	}

	slog.Debug("[Compose] Graphic rendered",
		slog.Int("ops", len(ops)),
		slog.Int("bytes", buf.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return models.ImagePayload{MIMEType: "image/png", Data: buf.Bytes()}, nil
}

// LoadAssets fetches both fonts and both overlays concurrently. The first
// failure cancels the rest.
func LoadAssets(ctx context.Context, fetcher AssetFetcher, urls AssetURLs) (*Assets, error) {
	var a Assets
	g, ctx := errgroup.WithContext(ctx)

	loadFont := func(url string, dst **opentype.Font) func() error {
		return func() error {
			data, _, err := fetcher.Fetch(ctx, url)
			if err != nil {
				return fmt.Errorf("[Compose] font %s: %w", url, err)
			}
			f, err := opentype.Parse(data)
			if err != nil {
				return fmt.Errorf("[Compose] parse font %s: %w", url, err)
			}
			*dst = f
			return nil
		}
	}
	loadImage := func(url string, dst *image.Image) func() error {
		return func() error {
			data, contentType, err := fetcher.Fetch(ctx, url)
			if err != nil {
				return fmt.Errorf("[Compose] overlay %s: %w", url, err)
			}
			img, err := imagery.Decode(models.ImagePayload{MIMEType: contentType, Data: data})
			if err != nil {
				return fmt.Errorf("[Compose] overlay %s: %w", url, err)
			}
			*dst = img
			return nil
		}
	}

	g.Go(loadFont(urls.FontRegular, &a.Regular))
	g.Go(loadFont(urls.FontBold, &a.Bold))
	g.Go(loadImage(urls.Frame, &a.Frame))
	g.Go(loadImage(urls.Logo, &a.Logo))

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &a, nil
}
