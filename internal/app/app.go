package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/spacesedan/newscard/config"
	"github.com/spacesedan/newscard/internal/clients"
	"github.com/spacesedan/newscard/internal/compose"
	"github.com/spacesedan/newscard/internal/db"
	"github.com/spacesedan/newscard/internal/imagery"
	"github.com/spacesedan/newscard/internal/monitoring"
	"github.com/spacesedan/newscard/internal/pipeline"
	"github.com/spacesedan/newscard/internal/processing"
	"github.com/spacesedan/newscard/internal/publish"
	"github.com/spacesedan/newscard/internal/selection"
)

// App is a fully wired pipeline plus the resources that must be released on
// shutdown.
type App struct {
	Runner   *pipeline.Runner
	Registry *prometheus.Registry
	Health   *monitoring.Health

	checks  map[string]monitoring.Check
	closers []func()
}

// New builds every client from s and wires them into a Runner bound to ctx.
func New(ctx context.Context, s config.Settings) (*App, error) {
	a := &App{
		Registry: prometheus.NewRegistry(),
		Health:   monitoring.NewHealth(),
		checks:   make(map[string]monitoring.Check),
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var openAI *clients.OpenAIClient
	var gemini *clients.GeminiClient
	if s.LLMProvider == config.ProviderOpenAI || s.ImageProvider == config.ProviderOpenAI {
		openAI = clients.NewOpenAIClient(s.OpenAIKey, s.OpenAIModel)
	}
	if s.LLMProvider == config.ProviderGemini || s.ImageProvider == config.ProviderGemini {
		g, err := clients.NewGeminiClient(ctx, s.GeminiKey, s.GeminiText, s.GeminiImage)
		if err != nil {
			return nil, err
		}
		gemini = g
	}

	var model selection.TextModel = openAI
	if s.LLMProvider == config.ProviderGemini {
		model = gemini
	}
	var generator imagery.ImageGenerator = gemini
	if s.ImageProvider == config.ProviderOpenAI {
		generator = openAI
	}

	media := clients.NewMediaClient()
	var assets compose.AssetFetcher = media
	cached := false
	if s.ValkeyAddress != "" {
		vc, err := clients.NewValkeyClient(ctx, s.ValkeyAddress, s.ValkeyPassword, s.ValkeyTLS)
		if err != nil {
			slog.Warn("[App] Valkey unavailable, assets will not be cached", slog.String("error", err.Error()))
		} else {
			a.closers = append(a.closers, vc.Close)
			a.checks["valkey"] = vc.Ping
			assets = &clients.CachedMediaFetcher{Next: media, Cache: vc}
			cached = true
		}
	}

	var events publish.EventSink
	if s.KafkaBroker != "" {
		kc, err := clients.NewKafkaClient(s.KafkaBroker, s.PostsTopic)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, kc.Close)
		events = kc
	}

	ledger, err := a.newLedger(ctx, s)
	if err != nil {
		a.Close()
		return nil, err
	}

	metrics := pipeline.NewMetrics(a.Registry)
	orchestrator := pipeline.NewOrchestrator(processing.Categories, pipeline.Stages{
		Aggregator: processing.NewAggregator(clients.NewNewsDataClient(s.NewsAPIKey, s.NewsEndpoint, s.Country, s.Language)),
		Selector:   selection.NewSelector(model, s.RelevanceRule),
		Resolver:   imagery.NewResolver(media, generator),
		Composer: compose.NewComposer(assets, compose.AssetURLs{
			FontRegular: s.FontRegularURL,
			FontBold:    s.FontBoldURL,
			Frame:       s.FrameURL,
			Logo:        s.LogoURL,
		}, s.BrandName),
		Publisher: publish.NewPublisher(
			clients.NewUploadClient(s.UploadURL, s.UploadAPIKey, s.UploadPreset),
			clients.NewWebhookClient(s.WebhookURL, s.WebhookHeader, s.WebhookToken),
			events, ledger),
	}, metrics)

	a.Runner = pipeline.NewRunner(ctx, orchestrator, metrics)

	slog.Info("[App] Pipeline wired",
		slog.String("llm", s.LLMProvider),
		slog.String("image", s.ImageProvider),
		slog.Bool("asset_cache", cached),
		slog.Bool("kafka", events != nil),
		slog.String("ledger", s.LedgerBackend))
	return a, nil
}

func (a *App) newLedger(ctx context.Context, s config.Settings) (publish.Ledger, error) {
	switch s.LedgerBackend {
	case config.LedgerDynamoDB:
		cfg, err := clients.NewAWSConfig(ctx, s.AWSRegion)
		if err != nil {
			return nil, err
		}
		return db.NewDynamoDBLedger(clients.NewDynamoDBClient(cfg, s.AWSEndpoint), s.LedgerTable), nil
	case config.LedgerPostgres:
		pl, err := db.NewPostgresLedger(ctx, s.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pl.Close)
		a.checks["postgres"] = pl.Ping
		return pl, nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("[App] unknown ledger backend %q", s.LedgerBackend)
	}
}

// StartMonitors probes every optional backing store in the background until
// ctx is done.
func (a *App) StartMonitors(ctx context.Context) {
	for name, check := range a.checks {
		healthy := a.Health.Register(name)
		go monitoring.Monitor(ctx, name, monitoring.HEALTHCHECK_INTERVAL, check, healthy)
	}
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
