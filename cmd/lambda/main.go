package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/spacesedan/newscard/config"
	"github.com/spacesedan/newscard/internal/app"
	"github.com/spacesedan/newscard/internal/logging"
	"github.com/spacesedan/newscard/internal/pipeline"
)

var runner *pipeline.Runner

// init runs once per Lambda cold start.
func init() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	settings := config.FromEnv()
	logging.InitLogger(settings.LogLevel, settings.LogSink)
	slog.Info("[Lambda] Cold start", slog.String("environment", env))

	if err := settings.Validate(); err != nil {
		slog.Error("[Lambda] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Clients live for the whole container, not a single invocation.
	a, err := app.New(context.Background(), settings)
	if err != nil {
		slog.Error("[Lambda] Failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}
	runner = a.Runner
}

// HandleRequest runs one batch per scheduled event. Category outcomes are
// reported through logs only, so the invocation itself always succeeds.
func HandleRequest(ctx context.Context, event events.CloudWatchEvent) error {
	slog.Info("[Lambda] Scheduled event received",
		slog.String("id", event.ID),
		slog.String("source", event.Source),
		slog.Time("time", event.Time))

	summary, ok := runner.RunNow(ctx, "eventbridge")
	if !ok {
		return nil
	}

	slog.Info("[Lambda] Batch complete",
		slog.Int("published", summary.Count(pipeline.OutcomePublished)),
		slog.Int("skipped", summary.Count(pipeline.OutcomeSkipped)),
		slog.Int("failed", summary.Count(pipeline.OutcomeFailed)))
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
