package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/newscard/config"
	"github.com/spacesedan/newscard/internal/app"
	"github.com/spacesedan/newscard/internal/logging"
	"github.com/spacesedan/newscard/internal/server"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	settings := config.FromEnv()
	logging.InitLogger(settings.LogLevel, settings.LogSink)

	if err := settings.Validate(); err != nil {
		slog.Error("[Pipeline] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, settings)
	if err != nil {
		slog.Error("[Pipeline] Failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.Close()
	a.StartMonitors(ctx)

	srv := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           server.NewRouter(a.Runner, a.Registry, a.Health, settings.TriggerToken),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("[Pipeline] HTTP server listening", slog.String("addr", settings.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Pipeline] HTTP server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	ticker := time.NewTicker(settings.RunInterval)
	defer ticker.Stop()

	if settings.RunOnStart {
		a.Runner.Trigger("startup")
	}
	slog.Info("[Pipeline] Scheduler started", slog.Duration("interval", settings.RunInterval))

	for {
		select {
		case <-ticker.C:
			a.Runner.Trigger("timer")

		case <-ctx.Done():
			slog.Info("[Pipeline] Shutting down gracefully...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("[Pipeline] HTTP shutdown incomplete", slog.String("error", err.Error()))
			}
			cancel()
			a.Runner.Wait()
			return
		}
	}
}
